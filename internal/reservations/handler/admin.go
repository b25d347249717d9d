package handler

import (
	"net/http"

	"slotbook/internal/reservations/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AdminHandler struct {
	service service.AdminService
	log     *logger.Logger
}

func NewAdminHandler(service service.AdminService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log,
	}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AdminLoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, "Login", err)
		return
	}

	token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, "Login", err)
		return
	}

	if err := httputil.WriteSuccess(w, token); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) Reservations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	dump, err := h.service.Dump(r.Context())
	if err != nil {
		writeError(w, r, h.log, "Reservations", err)
		return
	}

	if err := httputil.WriteSuccess(w, dump); err != nil {
		h.log.Error("failed to write success response", "handler", "Reservations", "operation", "WriteSuccess", "error", err)
	}
}

// requireAdmin rejects requests without a valid bearer token from Login.
func (h *AdminHandler) requireAdmin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if err := h.service.Authorize(httputil.BearerToken(r)); err != nil {
			writeError(w, r, h.log, "requireAdmin", err)
			return
		}
		next(w, r, ps)
	}
}

func (h *AdminHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/admin/login", h.Login)
	router.GET("/api/v1/admin/reservations", h.requireAdmin(h.Reservations))
}
