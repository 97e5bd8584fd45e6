package v1

import (
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	svc *service.AppointmentService
}

func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func (h *AppointmentHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/agenda/window", h.Window)

	appts := rg.Group("/appointments")
	appts.GET("/events", h.ListEvents)
	appts.POST("", h.Create)
	appts.GET("/:id", h.Get)
	appts.PATCH("/:id/move", h.Move)
	appts.PATCH("/:id/resize", h.Resize)
	appts.PATCH("/:id/status", h.ChangeStatus)
	appts.DELETE("/:id", h.Delete)
}

type windowResponse struct {
	View  appointment.ViewKind `json:"view"`
	Days  int                  `json:"days"`
	Start time.Time            `json:"start"`
	End   time.Time            `json:"end"`
}

// resolveWindow reads ?view= and the optional ?date=YYYY-MM-DD anchor. With no
// view and no fallback it returns nil, meaning every appointment.
func (h *AppointmentHandler) resolveWindow(c *gin.Context, fallback appointment.ViewKind) (*appointment.Window, appointment.ViewKind, error) {
	raw := c.DefaultQuery("view", string(fallback))
	if raw == "" {
		return nil, "", nil
	}
	kind, err := appointment.ParseViewKind(raw)
	if err != nil {
		return nil, "", err
	}

	var w appointment.Window
	if date := c.Query("date"); date != "" {
		day, perr := time.ParseInLocation("2006-01-02", date, h.svc.Location())
		if perr != nil {
			return nil, "", &service.ValidationError{Fields: []string{"date must be YYYY-MM-DD"}}
		}
		w, err = h.svc.VisibleWindow(kind, day)
	} else {
		w, err = h.svc.CurrentWindow(kind)
	}
	if err != nil {
		return nil, "", err
	}
	return &w, kind, nil
}

// Window godoc
// GET /api/v1/agenda/window?view=day|3-day|week&date=YYYY-MM-DD
func (h *AppointmentHandler) Window(c *gin.Context) {
	w, kind, err := h.resolveWindow(c, appointment.ViewWeek)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, windowResponse{View: kind, Days: kind.Days(), Start: w.Start, End: w.End})
}

// ListEvents godoc
// GET /api/v1/appointments/events?view=...&date=...
func (h *AppointmentHandler) ListEvents(c *gin.Context) {
	w, _, err := h.resolveWindow(c, "")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	events, err := h.svc.ListEvents(c.Request.Context(), w)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, events)
}

type createAppointmentRequest struct {
	PatientID string `json:"patient_id"`
	StartsAt  string `json:"date_heure"`
	Duration  string `json:"duree"`
	Reason    string `json:"motif"`
	Notes     string `json:"notes"`
	Status    string `json:"statut"`
}

// Create godoc
// POST /api/v1/appointments
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	// An unparseable patient id is reported as a missing selection.
	patientID, _ := uuid.Parse(req.PatientID)

	a, err := h.svc.Create(c.Request.Context(), &appointment.CreateAppointmentCommand{
		PatientID: patientID,
		StartsAt:  req.StartsAt,
		Duration:  req.Duration,
		Reason:    req.Reason,
		Notes:     req.Notes,
		Status:    req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type moveRequest struct {
	Start string `json:"start" binding:"required"`
}

// Move godoc
// PATCH /api/v1/appointments/:id/move
func (h *AppointmentHandler) Move(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req moveRequest
	if !bindJSON(c, &req) {
		return
	}
	start, err := appointment.ParseStart(req.Start, h.svc.Location())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	res, err := h.svc.Move(c.Request.Context(), id, start)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, res)
}

type resizeRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// Resize godoc
// PATCH /api/v1/appointments/:id/resize
func (h *AppointmentHandler) Resize(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req resizeRequest
	if !bindJSON(c, &req) {
		return
	}
	start, err := appointment.ParseStart(req.Start, h.svc.Location())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	end, err := appointment.ParseStart(req.End, h.svc.Location())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	res, err := h.svc.Resize(c.Request.Context(), id, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, res)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus godoc
// PATCH /api/v1/appointments/:id/status
func (h *AppointmentHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	ev, err := h.svc.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, ev)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
