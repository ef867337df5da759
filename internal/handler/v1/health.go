package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/glucotrack/glucotrack/internal/classifier"
)

type HealthHandler struct {
	db      *gorm.DB
	clf     *classifier.Classifier
	version string
}

func NewHealthHandler(db *gorm.DB, clf *classifier.Classifier, version string) *HealthHandler {
	return &HealthHandler{db: db, clf: clf, version: version}
}

// Health reports liveness. A down database degrades the status to 503; an
// unavailable classifier does not, since intake keeps working without it.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	dbState := "up"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbState = "down"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	clfState := "loaded"
	if !h.clf.Available() {
		clfState = "unavailable"
	}

	c.JSON(code, gin.H{
		"status":     status,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"version":    h.version,
		"database":   dbState,
		"classifier": clfState,
	})
}
