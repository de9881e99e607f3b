package prometheus

import (
	"github.com/gin-gonic/gin"

	"github.com/ayursutra/clinic-api/pkg/metrics"
)

// Handler serves the application registry in the Prometheus text format.
type Handler struct {
	metrics *metrics.Metrics
}

func NewHandler(m *metrics.Metrics) *Handler {
	return &Handler{metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/metrics", h.Handler())
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(h.metrics.Handler())
}
