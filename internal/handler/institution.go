package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/auth"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
	"github.com/vellt/eduinfo-api/internal/service"
	"github.com/vellt/eduinfo-api/internal/upload"
)

// InstitutionHandler serves everything under /institution: the profile
// aggregate, news and event publishing, contacts, categories, account
// settings and the institution side of messaging.
type InstitutionHandler struct {
	institutions *service.InstitutionService
	accounts     *service.AccountService
	messaging    *service.MessagingService
	uploads      *upload.Store
	logger       *slog.Logger
}

func NewInstitutionHandler(
	institutions *service.InstitutionService,
	accounts *service.AccountService,
	messaging *service.MessagingService,
	uploads *upload.Store,
	logger *slog.Logger,
) *InstitutionHandler {
	return &InstitutionHandler{
		institutions: institutions,
		accounts:     accounts,
		messaging:    messaging,
		uploads:      uploads,
		logger:       logger,
	}
}

// Profile handles GET /institution/profile.
func (h *InstitutionHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	view, err := h.institutions.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres adatlekérés", view)
}

// CreateNews handles POST /institution/news (multipart, optional
// banner_image). Responds with the refreshed post list.
func (h *InstitutionHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	banner, err := formImage(r, h.uploads, "banner_image")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	views, err := h.institutions.CreateNews(r.Context(), userID, r.FormValue("description"), banner)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "A bejegyzés sikeresen létrehozva", views)
}

// UpdateNews handles PUT /institution/news/{news_id}.
func (h *InstitutionHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	newsID, err := pathID(r, "news_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	banner, err := formImage(r, h.uploads, "banner_image")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	views, err := h.institutions.UpdateNews(r.Context(), userID, newsID, r.FormValue("description"), banner)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "A bejegyzés sikeresen módosítva", views)
}

// DeleteNews handles DELETE /institution/news/{news_id}.
func (h *InstitutionHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	newsID, err := pathID(r, "news_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	views, err := h.institutions.DeleteNews(r.Context(), userID, newsID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "A bejegyzés sikeresen törölve", views)
}

// eventInput parses the multipart event form shared by create and
// update: event_start, event_end, title, location, description, the
// repeated links field (each value a JSON object) and the banner image.
func (h *InstitutionHandler) eventInput(r *http.Request) (service.EventInput, error) {
	var input service.EventInput

	start, err := parseEventTime(r.FormValue("event_start"))
	if err != nil {
		return input, err
	}
	end, err := parseEventTime(r.FormValue("event_end"))
	if err != nil {
		return input, err
	}
	banner, err := formImage(r, h.uploads, "banner_image")
	if err != nil {
		return input, err
	}

	var links []model.EventLink
	for _, raw := range r.Form["links"] {
		var link model.EventLink
		if err := json.Unmarshal([]byte(raw), &link); err != nil {
			return input, apperror.BadInput()
		}
		links = append(links, link)
	}

	return service.EventInput{
		Start:       start,
		End:         end,
		Title:       r.FormValue("title"),
		Location:    r.FormValue("location"),
		Description: r.FormValue("description"),
		BannerImage: banner,
		Links:       links,
	}, nil
}

// CreateEvent handles POST /institution/event.
func (h *InstitutionHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	input, err := h.eventInput(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	views, err := h.institutions.CreateEvent(r.Context(), userID, input)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Az esemény sikeresen létrehozva", views)
}

// UpdateEvent handles PUT /institution/event/{event_id}.
func (h *InstitutionHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	input, err := h.eventInput(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	views, err := h.institutions.UpdateEvent(r.Context(), userID, eventID, input)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Az esemény sikeresen módosítva", views)
}

// DeleteEvent handles DELETE /institution/event/{event_id}.
func (h *InstitutionHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	views, err := h.institutions.DeleteEvent(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Az esemény sikeresen törölve", views)
}

// Categories handles GET /institution/categories. Public, no token.
func (h *InstitutionHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.institutions.Categories(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres adatlekérés", categories)
}

type categoriesRequest struct {
	Categories []struct {
		CategoryID int64 `json:"category_id"`
	} `json:"categories"`
}

// ReplaceCategories handles PUT /institution/institution_categories.
func (h *InstitutionHandler) ReplaceCategories(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req categoriesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	ids := make([]int64, 0, len(req.Categories))
	for _, c := range req.Categories {
		ids = append(ids, c.CategoryID)
	}
	categories, err := h.institutions.ReplaceCategories(r.Context(), userID, ids)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Az esemény sikeresen módosítva", categories)
}

// UpdateAvatar handles PUT /institution/avatar. The image is mandatory.
func (h *InstitutionHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	filename, err := requiredFormImage(r, h.uploads, "avatar_image")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.accounts.ReplaceAvatar(r.Context(), repository.ProfileInstitution, userID, filename); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres képfeltöltés", map[string]string{"avatar_image": filename})
}

// UpdateBanner handles PUT /institution/banner.
func (h *InstitutionHandler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	filename, err := requiredFormImage(r, h.uploads, "banner_image")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.accounts.ReplaceBanner(r.Context(), userID, filename); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres képfeltöltés", map[string]string{"banner_image": filename})
}

// UpdateName handles PUT /institution/name.
func (h *InstitutionHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	updateName(w, r, h.accounts, h.logger)
}

// UpdateEmail handles PUT /institution/email.
func (h *InstitutionHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	updateEmail(w, r, h.accounts, h.logger)
}

// UpdatePassword handles PUT /institution/password.
func (h *InstitutionHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	updatePassword(w, r, h.accounts, h.logger)
}

// DeleteProfile handles DELETE /institution/profile.
func (h *InstitutionHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.accounts.Delete(r.Context(), repository.ProfileInstitution, userID); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres fióktörlés", nil)
}

// contactRequest covers all three contact kinds; exactly one of the
// value fields is filled depending on the route.
type contactRequest struct {
	Title   string `json:"title"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

func (req contactRequest) value(kind repository.ContactKind) string {
	switch kind {
	case repository.ContactEmail:
		return req.Email
	case repository.ContactPhone:
		return req.Phone
	default:
		return req.Website
	}
}

var contactLabels = map[repository.ContactKind]string{
	repository.ContactEmail:   "Email",
	repository.ContactPhone:   "Telefon",
	repository.ContactWebsite: "Weboldal",
}

// AddContact handles POST /institution/public/{email,phone,website}.
func (h *InstitutionHandler) AddContact(kind repository.ContactKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFromContext(r.Context())
		var req contactRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		views, err := h.institutions.AddContact(r.Context(), userID, kind, req.Title, req.value(kind))
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeSuccess(w, http.StatusOK, contactLabels[kind]+" sikeresen hozzáadva", views)
	}
}

// UpdateContact handles PUT /institution/public/{kind}/{id}.
func (h *InstitutionHandler) UpdateContact(kind repository.ContactKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFromContext(r.Context())
		id, err := pathID(r, param)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		var req contactRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		views, err := h.institutions.UpdateContact(r.Context(), userID, kind, id, req.Title, req.value(kind))
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeSuccess(w, http.StatusOK, contactLabels[kind]+" sikeresen módosítva", views)
	}
}

// DeleteContact handles DELETE /institution/public/{kind}/{id}.
func (h *InstitutionHandler) DeleteContact(kind repository.ContactKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFromContext(r.Context())
		id, err := pathID(r, param)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		views, err := h.institutions.DeleteContact(r.Context(), userID, kind, id)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeSuccess(w, http.StatusOK, contactLabels[kind]+" sikeresen törölve", views)
	}
}

// MessagesVersion handles GET /institution/messages_version.
func (h *InstitutionHandler) MessagesVersion(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	view, err := h.messaging.Version(r.Context(), repository.ProfileInstitution, userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres adatlekérés", view)
}

// Rooms handles GET /institution/messaging_rooms.
func (h *InstitutionHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	rooms, err := h.messaging.Rooms(r.Context(), repository.ProfileInstitution, userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres adatlekérés", rooms)
}

// Room handles GET /institution/messaging_rooms/{messaging_room_id}.
func (h *InstitutionHandler) Room(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	roomID, err := pathID(r, "messaging_room_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	view, err := h.messaging.Room(r.Context(), repository.ProfileInstitution, userID, roomID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres adatlekérés", view)
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessage handles POST /institution/send_message/{person_id}.
// Institutions can only reply in rooms a person already opened.
func (h *InstitutionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	personID, err := pathID(r, "person_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	view, err := h.messaging.SendFromInstitution(r.Context(), userID, personID, req.Message)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Üzenet sikeresen elküldve", view)
}

// Shared account-settings handlers; the person routes reuse them.

type nameRequest struct {
	Name string `json:"name"`
}

func updateName(w http.ResponseWriter, r *http.Request, accounts *service.AccountService, logger *slog.Logger) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, logger, r, err)
		return
	}
	if err := accounts.UpdateName(r.Context(), userID, req.Name); err != nil {
		writeError(w, logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres adatmódosítás", map[string]string{"name": strings.TrimSpace(req.Name)})
}

type emailRequest struct {
	Email string `json:"email"`
}

func updateEmail(w http.ResponseWriter, r *http.Request, accounts *service.AccountService, logger *slog.Logger) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, logger, r, err)
		return
	}
	if err := accounts.UpdateEmail(r.Context(), userID, req.Email); err != nil {
		writeError(w, logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres adatmódosítás", map[string]string{"email": req.Email})
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func updatePassword(w http.ResponseWriter, r *http.Request, accounts *service.AccountService, logger *slog.Logger) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req passwordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, logger, r, err)
		return
	}
	if err := accounts.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "jelszó sikeresen módosítva", nil)
}
