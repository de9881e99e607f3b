package therapy

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ayursutra/clinic-api/internal/handler"
	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/internal/service/therapy"
)

type Service interface {
	CreateTherapy(ctx context.Context, req *model.CreateTherapyRequest) (*model.TherapySchedule, error)
	GetTherapy(ctx context.Context, id string) (*model.TherapySchedule, error)
	ListByPractitioner(ctx context.Context, practitionerID string, q therapy.ListQuery) ([]*model.TherapySchedule, error)
	ListByPatient(ctx context.Context, patientID, status string) ([]*model.TherapySchedule, error)
	UpdateTherapy(ctx context.Context, id string, req *model.UpdateTherapyRequest) (*model.TherapySchedule, error)
	AddFeedback(ctx context.Context, id string, req *model.FeedbackRequest) (*model.TherapySchedule, error)
	DeleteTherapy(ctx context.Context, id string) error
	Stats(ctx context.Context, practitionerID string) (*model.TherapyStats, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	therapies := r.Group("/therapy", middleware...)
	{
		therapies.POST("", h.CreateTherapy)
		therapies.GET("/practitioner/:practitionerId", h.ListByPractitioner)
		therapies.GET("/patient/:patientId", h.ListByPatient)
		therapies.GET("/stats/:practitionerId", h.Stats)
		therapies.GET("/:id", h.GetTherapy)
		therapies.PUT("/:id", h.UpdateTherapy)
		therapies.POST("/feedback/:id", h.AddFeedback)
		therapies.DELETE("/:id", h.DeleteTherapy)
	}
}

func (h *Handler) CreateTherapy(c *gin.Context) {
	var req model.CreateTherapyRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	t, err := h.service.CreateTherapy(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.Created(c, gin.H{
		"message": "Therapy schedule created successfully",
		"therapy": t,
	})
}

func (h *Handler) ListByPractitioner(c *gin.Context) {
	therapies, err := h.service.ListByPractitioner(c.Request.Context(), c.Param("practitionerId"), therapy.ListQuery{
		Status: c.Query("status"),
		Date:   c.Query("date"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	})
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.List(c, "therapies", therapies)
}

func (h *Handler) ListByPatient(c *gin.Context) {
	therapies, err := h.service.ListByPatient(c.Request.Context(), c.Param("patientId"), c.Query("status"))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.List(c, "therapies", therapies)
}

func (h *Handler) GetTherapy(c *gin.Context) {
	t, err := h.service.GetTherapy(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, gin.H{"therapy": t})
}

func (h *Handler) UpdateTherapy(c *gin.Context) {
	var req model.UpdateTherapyRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	t, err := h.service.UpdateTherapy(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, gin.H{
		"message": "Therapy schedule updated successfully",
		"therapy": t,
	})
}

func (h *Handler) AddFeedback(c *gin.Context) {
	var req model.FeedbackRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	t, err := h.service.AddFeedback(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, gin.H{
		"message": "Feedback added successfully",
		"therapy": t,
	})
}

func (h *Handler) DeleteTherapy(c *gin.Context) {
	if err := h.service.DeleteTherapy(c.Request.Context(), c.Param("id")); err != nil {
		handler.Fail(c, err)
		return
	}

	handler.Message(c, "Therapy schedule deleted successfully")
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("practitionerId"))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, gin.H{"stats": stats})
}
