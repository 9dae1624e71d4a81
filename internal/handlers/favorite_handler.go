package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	scheduling "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/httperr"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/httpresp"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/infra/repository"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/middleware"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

// FavoriteHandler cruza os dois bancos: o vínculo fica no Postgres, o
// documento do salão no Mongo.
type FavoriteHandler struct {
	db     *gorm.DB
	salons *repository.SalonMongoRepository
}

func NewFavoriteHandler(db *gorm.DB, salons *repository.SalonMongoRepository) *FavoriteHandler {
	return &FavoriteHandler{db: db, salons: salons}
}

// ======================================================
// TOGGLE
// ======================================================

// Toggle favorita ou desfavorita o salão, devolvendo o estado final.
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	salonID := c.Param("id")

	if _, err := h.salons.GetSalon(c.Request.Context(), salonID); err != nil {
		if err == scheduling.ErrNotFound {
			httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_load_salon", "Erro ao carregar salão.")
		return
	}

	var fav models.Favorite
	err := h.db.
		Where("user_id = ? AND salon_id = ?", userID, salonID).
		First(&fav).Error

	switch {
	case err == nil:
		if err := h.db.Delete(&fav).Error; err != nil {
			httperr.Internal(c, "failed_to_remove_favorite", "Erro ao remover favorito.")
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorited": false})

	case err == gorm.ErrRecordNotFound:
		fav = models.Favorite{UserID: userID, SalonID: salonID}
		if err := h.db.Create(&fav).Error; err != nil {
			httperr.Internal(c, "failed_to_add_favorite", "Erro ao favoritar.")
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorited": true})

	default:
		httperr.Internal(c, "internal_error", "Erro interno.")
	}
}

// ======================================================
// LIST
// ======================================================

func (h *FavoriteHandler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var favs []models.Favorite
	if err := h.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_favorites", "Erro ao listar favoritos.")
		return
	}

	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.SalonID)
	}

	salons, err := h.salons.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		httperr.Internal(c, "failed_to_load_salons", "Erro ao carregar salões.")
		return
	}

	httpresp.List(c, salons)
}
