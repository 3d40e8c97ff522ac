package handlers

import (
	"net/http"

	"github.com/fraudshield/backend/internal/services"
)

// AdminHandler serves dashboard counts and the user directory.
type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Dashboard returns aggregate counts
// @Summary Dashboard statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardStats
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.DashboardStats(r.Context())
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListUsers returns the user directory
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
