package handler

import (
	"log/slog"
	"net/http"

	"github.com/vellt/eduinfo-api/internal/service"
)

// AdminHandler serves the moderation endpoints plus the public
// institution page that lives under the admin prefix.
type AdminHandler struct {
	admin        *service.AdminService
	institutions *service.InstitutionService
	logger       *slog.Logger
}

func NewAdminHandler(admin *service.AdminService, institutions *service.InstitutionService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, institutions: institutions, logger: logger}
}

// Users handles GET /admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	view, err := h.admin.Users(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres adatlekérés", view)
}

// DisableInstitution handles PUT /admin/disable_institution/{institution_id}.
func (h *AdminHandler) DisableInstitution(w http.ResponseWriter, r *http.Request) {
	h.switchInstitution(w, r, false, "Az intézmény sikeresen le lett tiltva")
}

// EnableInstitution handles PUT /admin/enable_institution/{institution_id}.
func (h *AdminHandler) EnableInstitution(w http.ResponseWriter, r *http.Request) {
	h.switchInstitution(w, r, true, "Az intézménynek tiltása sikeresen feololdva")
}

func (h *AdminHandler) switchInstitution(w http.ResponseWriter, r *http.Request, enabled bool, message string) {
	id, err := pathID(r, "institution_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.admin.SetInstitutionEnabled(r.Context(), id, enabled); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, message, nil)
}

// AcceptInstitution handles PUT /admin/accept_institution/{institution_id}.
func (h *AdminHandler) AcceptInstitution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "institution_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.admin.AcceptInstitution(r.Context(), id); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Az intézményi regisztráció jóváhagyva", nil)
}

// DisablePerson handles PUT /admin/disable_person/{person_id}.
func (h *AdminHandler) DisablePerson(w http.ResponseWriter, r *http.Request) {
	h.switchPerson(w, r, false, "A fiók sikeresen le lett tiltva")
}

// EnablePerson handles PUT /admin/enable_person/{person_id}.
func (h *AdminHandler) EnablePerson(w http.ResponseWriter, r *http.Request) {
	h.switchPerson(w, r, true, "A fiók tiltása sikeresen feloldva")
}

func (h *AdminHandler) switchPerson(w http.ResponseWriter, r *http.Request, enabled bool, message string) {
	id, err := pathID(r, "person_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.admin.SetPersonEnabled(r.Context(), id, enabled); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, message, nil)
}

// Institution handles GET /admin/institution/{institution_id}, the
// tokenless public page: no email, no viewer flags.
func (h *AdminHandler) Institution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "institution_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	view, err := h.institutions.PublicProfile(r.Context(), id, nil)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres adatlekérés", view)
}
