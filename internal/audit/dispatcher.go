package audit

import "go.uber.org/zap"

type Event struct {
	SalonID  string
	UserID   *uint
	Action   string
	Entity   string
	EntityID *string
	Metadata any
}

// Dispatcher desacopla a trilha de auditoria do caminho da requisição:
// eventos entram em um canal com buffer e são gravados por um worker.
type Dispatcher struct {
	logger *Logger
	log    *zap.Logger
	queue  chan Event
}

func NewDispatcher(logger *Logger, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		log:    log,
		queue:  make(chan Event, 100),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		if err := d.logger.Log(
			ev.SalonID,
			ev.UserID,
			ev.Action,
			ev.Entity,
			ev.EntityID,
			ev.Metadata,
		); err != nil {
			d.log.Warn("audit: falha ao gravar evento", zap.Error(err))
		}
	}
}

// Dispatch aceita receptor nil: auditoria desligada (testes).
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	select {
	case d.queue <- ev:
	default:
		// fila cheia: auditoria é descartada, nunca derruba a API
		d.log.Warn("audit: fila cheia, evento descartado",
			zap.String("action", ev.Action))
	}
}
