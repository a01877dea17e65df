// Package server exposes the backend REST API the field clients sync
// against: auth, the reference hierarchy, the measurement tables and the
// audit log.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rgoncalves/fieldsync/internal/logging"
	"github.com/rgoncalves/fieldsync/internal/server/auth"
	"github.com/rgoncalves/fieldsync/internal/server/config"
)

type handlers struct {
	db  *gorm.DB
	cfg *config.Config
	log logging.Logger
}

// NewRouter builds the gin engine with all routes registered. Everything
// under /api/v1 except login requires a bearer token.
func NewRouter(gdb *gorm.DB, cfg *config.Config, log logging.Logger) *gin.Engine {
	h := &handlers{db: gdb, cfg: cfg, log: log}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api/v1")
	api.POST("/auth/login", h.login)

	authed := api.Group("")
	authed.Use(h.jwtAuthMiddleware())
	{
		authed.GET("/clients", h.listClients)
		authed.GET("/clients/:id/areas", h.listAreas)
		authed.GET("/areas/:id/points", h.listPoints)
		authed.GET("/measurement-types", h.listMeasurementTypes)

		authed.POST("/batches", h.createBatch)
		authed.POST("/batches/:id/items", h.createItems)
		authed.POST("/items", h.createItem)
		authed.PATCH("/items/:id/attachment", h.updateItemAttachment)

		authed.GET("/version/active", h.activeVersion)
		authed.POST("/actions", h.createAction)
	}

	return r
}

// jwtAuthMiddleware validates the bearer token and stows the user id in
// the gin context under "userID".
func (h *handlers) jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimPrefix(header, "Bearer "), []byte(h.cfg.SecretKey))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
