package patient

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ayursutra/clinic-api/internal/handler"
	"github.com/ayursutra/clinic-api/internal/model"
)

type Service interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	ListPatients(ctx context.Context, practitionerID, query string) ([]*model.Patient, error)
	SearchPatients(ctx context.Context, practitionerID, query string) ([]*model.Patient, error)
	UpdatePatient(ctx context.Context, id string, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id string) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the patient routes under /patients, behind the
// given middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	patients := r.Group("/patients", middleware...)
	{
		patients.POST("", h.CreatePatient)
		patients.GET("/search/:practitionerId", h.SearchPatients)
		patients.GET("/single/:id", h.GetPatient)
		patients.GET("/:practitionerId", h.ListPatients)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.Created(c, gin.H{
		"message": "Patient created successfully",
		"patient": patient,
	})
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context(), c.Param("practitionerId"), c.Query("q"))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.List(c, "patients", patients)
}

func (h *Handler) SearchPatients(c *gin.Context) {
	patients, err := h.service.SearchPatients(c.Request.Context(), c.Param("practitionerId"), c.Query("q"))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.List(c, "patients", patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	patient, err := h.service.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, gin.H{"patient": patient})
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.UpdatePatient(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, gin.H{
		"message": "Patient updated successfully",
		"patient": patient,
	})
}

func (h *Handler) DeletePatient(c *gin.Context) {
	if err := h.service.DeletePatient(c.Request.Context(), c.Param("id")); err != nil {
		handler.Fail(c, err)
		return
	}

	handler.Message(c, "Patient deleted successfully")
}
