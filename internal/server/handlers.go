package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgoncalves/fieldsync/internal/server/auth"
	"github.com/rgoncalves/fieldsync/internal/server/models"
)

func (h *handlers) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !auth.CheckPassword(user.HashedPassword, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(user.ID, []byte(h.cfg.SecretKey), h.cfg.TokenValidityDuration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (h *handlers) listClients(c *gin.Context) {
	var clients []models.Client
	if err := h.db.Order("id").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *handlers) listAreas(c *gin.Context) {
	var areas []models.WorkArea
	if err := h.db.Where("client_id = ?", c.Param("id")).Order("name").Find(&areas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, areas)
}

func (h *handlers) listPoints(c *gin.Context) {
	var points []models.CollectionPoint
	if err := h.db.Where("work_area_id = ?", c.Param("id")).Order("name").Find(&points).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, points)
}

// measurementTypeResponse is the catalog wire shape: constraints nested
// under range and validation_rules.
type measurementTypeResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"nome"`
	InputType     string          `json:"input_type"`
	Range         *typeRange      `json:"range,omitempty"`
	DecimalPlaces int             `json:"decimal_places,omitempty"`
	Unit          string          `json:"unit,omitempty"`
	Options       []string        `json:"options,omitempty"`
	Validation    *typeValidation `json:"validation_rules,omitempty"`
}

type typeRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type typeValidation struct {
	Required  bool `json:"required"`
	MaxLength int  `json:"max_length,omitempty"`
}

func (h *handlers) listMeasurementTypes(c *gin.Context) {
	var rows []models.MeasurementType
	if err := h.db.Order("name").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	out := make([]measurementTypeResponse, 0, len(rows))
	for _, row := range rows {
		resp := measurementTypeResponse{
			ID:            row.ID,
			Name:          row.Name,
			InputType:     row.InputType,
			DecimalPlaces: row.DecimalPlaces,
			Unit:          row.Unit,
			Options:       row.Options,
		}
		if row.RangeMin != nil || row.RangeMax != nil {
			resp.Range = &typeRange{Min: row.RangeMin, Max: row.RangeMax}
		}
		if row.Required || row.MaxLength > 0 {
			resp.Validation = &typeValidation{Required: row.Required, MaxLength: row.MaxLength}
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

// createBatch inserts the parent record of a submission. client_ref makes
// the operation idempotent: a retry with a ref that already exists returns
// the stored batch instead of creating a second one.
func (h *handlers) createBatch(c *gin.Context) {
	var req struct {
		ClientRef         string    `json:"client_ref" binding:"required"`
		CollectionPointID string    `json:"ponto_de_coleta_id" binding:"required"`
		ClientID          int64     `json:"cliente_id"`
		WorkAreaID        string    `json:"area_de_trabalho_id"`
		MeasuredAt        time.Time `json:"data_hora_medicao"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.MeasurementBatch
	err := h.db.Where("client_ref = ?", req.ClientRef).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"id": existing.ID})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	batch := models.MeasurementBatch{
		ID:                uuid.NewString(),
		ClientRef:         req.ClientRef,
		CollectionPointID: req.CollectionPointID,
		ClientID:          req.ClientID,
		WorkAreaID:        req.WorkAreaID,
		MeasuredAt:        req.MeasuredAt,
	}
	if err := h.db.Create(&batch).Error; err != nil {
		// Concurrent retry may have won the race on client_ref.
		if h.db.Where("client_ref = ?", req.ClientRef).First(&existing).Error == nil {
			c.JSON(http.StatusOK, gin.H{"id": existing.ID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": batch.ID})
}

type itemRequest struct {
	Label               string  `json:"parametro"`
	Value               float64 `json:"valor"`
	MeasurementTypeID   string  `json:"tipo_medicao_id"`
	MeasurementTypeName string  `json:"tipo_medicao_nome"`
	AttachmentURL       *string `json:"image"`
}

func (h *handlers) createItems(c *gin.Context) {
	batchID := c.Param("id")
	if h.db.Where("id = ?", batchID).First(&models.MeasurementBatch{}).Error != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}

	var reqs []itemRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]models.MeasurementItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, models.MeasurementItem{
			ID:                  uuid.NewString(),
			BatchID:             batchID,
			Label:               r.Label,
			Value:               r.Value,
			MeasurementTypeID:   r.MeasurementTypeID,
			MeasurementTypeName: r.MeasurementTypeName,
			AttachmentURL:       r.AttachmentURL,
		})
	}
	if len(items) > 0 {
		if err := h.db.Create(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"count": len(items)})
}

func (h *handlers) createItem(c *gin.Context) {
	var req struct {
		BatchID string `json:"medicao_id" binding:"required"`
		itemRequest
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.db.Where("id = ?", req.BatchID).First(&models.MeasurementBatch{}).Error != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}

	item := models.MeasurementItem{
		ID:                  uuid.NewString(),
		BatchID:             req.BatchID,
		Label:               req.Label,
		Value:               req.Value,
		MeasurementTypeID:   req.MeasurementTypeID,
		MeasurementTypeName: req.MeasurementTypeName,
		AttachmentURL:       req.AttachmentURL,
	}
	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": item.ID})
}

// updateItemAttachment is the second phase of a photo upload: the client
// uploaded the binary and now links the public URLs to the item row.
func (h *handlers) updateItemAttachment(c *gin.Context) {
	itemID := c.Param("id")

	var req struct {
		Image        string `json:"image" binding:"required"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item models.MeasurementItem
	if err := h.db.Where("id = ?", itemID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	updates := map[string]any{"attachment_url": req.Image}
	if req.ThumbnailURL != "" {
		updates["thumbnail_url"] = req.ThumbnailURL
	}
	if err := h.db.Model(&item).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	record := models.PhotoRecord{ItemID: itemID, URL: req.Image, ThumbnailURL: req.ThumbnailURL}
	if err := h.db.Create(&record).Error; err != nil {
		h.log.Warn(c.Request.Context(), "photo record insert failed", "item_id", itemID, "error", err)
	}

	c.Status(http.StatusNoContent)
}

func (h *handlers) activeVersion(c *gin.Context) {
	var v models.AppVersion
	if err := h.db.Where("active = ?", true).Order("id DESC").First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active version"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handlers) createAction(c *gin.Context) {
	var req models.ActionLog
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ActionType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action_type required"})
		return
	}

	if id, ok := c.Get("userID"); ok {
		if uid, ok := id.(uint); ok {
			req.UserID = uid
		}
	}

	if err := h.db.Create(&req).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.Status(http.StatusCreated)
}
