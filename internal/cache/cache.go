package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/config"
	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
)

// TTL curto: o retrato de disponibilidade pode ficar levemente
// defasado, e toda escrita (reserva/cancelamento) invalida a chave.
const availabilityTTL = 30 * time.Second

func NewRedis(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}

	return client
}

// Availability implementa o cache de disponibilidade por (salão, dia).
type Availability struct {
	client *redis.Client
}

func NewAvailability(client *redis.Client) *Availability {
	return &Availability{client: client}
}

func availabilityKey(salonID, day string) string {
	return fmt.Sprintf("availability:%s:%s", salonID, day)
}

func (a *Availability) Get(ctx context.Context, salonID, day string) ([]domain.SlotAvailability, bool) {
	raw, err := a.client.Get(ctx, availabilityKey(salonID, day)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []domain.SlotAvailability
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (a *Availability) Set(ctx context.Context, salonID, day string, slots []domain.SlotAvailability) {
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	a.client.Set(ctx, availabilityKey(salonID, day), raw, availabilityTTL)
}

func (a *Availability) Invalidate(ctx context.Context, salonID, day string) {
	a.client.Del(ctx, availabilityKey(salonID, day))
}
