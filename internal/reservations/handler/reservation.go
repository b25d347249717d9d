package handler

import (
	"net/http"

	"slotbook/internal/reservations/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

type selectResponse struct {
	Action string `json:"action"`
}

func (h *ReservationHandler) Window(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.Window(r.Context())); err != nil {
		h.log.Error("failed to write success response", "handler", "Window", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Calendar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cal, err := h.service.Calendar(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, h.log, "Calendar", err)
		return
	}

	if err := httputil.WriteSuccess(w, cal); err != nil {
		h.log.Error("failed to write success response", "handler", "Calendar", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) DaySlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slots, err := h.service.DaySlots(r.Context(), ps.ByName("date"))
	if err != nil {
		writeError(w, r, h.log, "DaySlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "DaySlots", "operation", "WriteSuccess", "error", err)
	}
}

// Select is the click on a slot. It answers with the dialog to open.
func (h *ReservationHandler) Select(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	action, err := h.service.Select(r.Context(), ps.ByName("date"), ps.ByName("time"))
	if err != nil {
		writeError(w, r, h.log, "Select", err)
		return
	}

	if err := httputil.WriteSuccess(w, selectResponse{Action: string(action)}); err != nil {
		h.log.Error("failed to write success response", "handler", "Select", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, "Create", err)
		return
	}

	created, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CancelReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, "Cancel", err)
		return
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("date"), ps.ByName("time"), &req); err != nil {
		writeError(w, r, h.log, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) Week(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.Week(r.Context())); err != nil {
		h.log.Error("failed to write success response", "handler", "Week", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Colors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.Colors(r.Context())); err != nil {
		h.log.Error("failed to write success response", "handler", "Colors", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filename, body, err := h.service.Export(r.Context())
	if err != nil {
		writeError(w, r, h.log, "Export", err)
		return
	}

	if err := httputil.WriteAttachment(w, filename, body); err != nil {
		h.log.Error("failed to write attachment", "handler", "Export", "operation", "WriteAttachment", "error", err)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/window", h.Window)
	router.GET("/api/v1/calendar", h.Calendar)
	router.GET("/api/v1/days/:date/slots", h.DaySlots)
	router.GET("/api/v1/days/:date/slots/:time", h.Select)
	router.DELETE("/api/v1/days/:date/slots/:time", h.Cancel)
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/week", h.Week)
	router.GET("/api/v1/colors", h.Colors)
	router.GET("/api/v1/export", h.Export)
}
