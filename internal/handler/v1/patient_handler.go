package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/service"
	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	svc      *service.PatientService
	dossiers *service.DossierService
}

func NewPatientHandler(svc *service.PatientService, dossiers *service.DossierService) *PatientHandler {
	return &PatientHandler{svc: svc, dossiers: dossiers}
}

func (h *PatientHandler) Register(rg *gin.RouterGroup) {
	patients := rg.Group("/patients")
	patients.GET("", h.List)
	patients.POST("", h.Create)
	patients.GET("/:id", h.Get)
	patients.PATCH("/:id", h.Update)
	patients.DELETE("/:id", h.Delete)
	patients.GET("/:id/dossier", h.Dossier)
}

type createPatientRequest struct {
	LastName               string `json:"nom"`
	FirstName              string `json:"prenom"`
	BirthDate              string `json:"date_naissance"`
	Phone                  string `json:"telephone"`
	Email                  string `json:"email"`
	Address                string `json:"adresse"`
	SocialSecurityNumber   string `json:"numero_secu"`
	MedicalHistory         string `json:"antecedents"`
	Allergies              string `json:"allergies"`
	CurrentTreatments      string `json:"traitements_actuels"`
	Insurance              string `json:"assurance"`
	SupplementaryInsurance string `json:"mutuelle"`
	Notes                  string `json:"notes"`
}

// updatePatientRequest distinguishes an absent key (nil, unchanged) from an
// empty string (clears the field).
type updatePatientRequest struct {
	LastName               *string `json:"nom"`
	FirstName              *string `json:"prenom"`
	BirthDate              *string `json:"date_naissance"`
	Phone                  *string `json:"telephone"`
	Email                  *string `json:"email"`
	Address                *string `json:"adresse"`
	SocialSecurityNumber   *string `json:"numero_secu"`
	MedicalHistory         *string `json:"antecedents"`
	Allergies              *string `json:"allergies"`
	CurrentTreatments      *string `json:"traitements_actuels"`
	Insurance              *string `json:"assurance"`
	SupplementaryInsurance *string `json:"mutuelle"`
	Notes                  *string `json:"notes"`
}

// List godoc
// GET /api/v1/patients?search=
func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.svc.ListPatients(c.Request.Context(), &patient.ListPatientsQuery{Search: c.Query("search")})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patients)
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.CreatePatient(c.Request.Context(), &patient.CreatePatientCommand{
		LastName:               req.LastName,
		FirstName:              req.FirstName,
		BirthDate:              req.BirthDate,
		Phone:                  req.Phone,
		Email:                  req.Email,
		Address:                req.Address,
		SocialSecurityNumber:   req.SocialSecurityNumber,
		MedicalHistory:         req.MedicalHistory,
		Allergies:              req.Allergies,
		CurrentTreatments:      req.CurrentTreatments,
		Insurance:              req.Insurance,
		SupplementaryInsurance: req.SupplementaryInsurance,
		Notes:                  req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetPatient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.UpdatePatient(c.Request.Context(), id, &patient.UpdatePatientCommand{
		LastName:               req.LastName,
		FirstName:              req.FirstName,
		BirthDate:              req.BirthDate,
		Phone:                  req.Phone,
		Email:                  req.Email,
		Address:                req.Address,
		SocialSecurityNumber:   req.SocialSecurityNumber,
		MedicalHistory:         req.MedicalHistory,
		Allergies:              req.Allergies,
		CurrentTreatments:      req.CurrentTreatments,
		Insurance:              req.Insurance,
		SupplementaryInsurance: req.SupplementaryInsurance,
		Notes:                  req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePatient(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dossier godoc
// GET /api/v1/patients/:id/dossier
func (h *PatientHandler) Dossier(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	d, err := h.dossiers.GetDossier(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}
