package handler

import (
	"log/slog"
	"net/http"

	"github.com/vellt/eduinfo-api/internal/auth"
	"github.com/vellt/eduinfo-api/internal/repository"
	"github.com/vellt/eduinfo-api/internal/service"
	"github.com/vellt/eduinfo-api/internal/upload"
)

// PersonHandler serves everything under /person: the home feed, the
// follow/like graph, account settings and the person side of messaging.
type PersonHandler struct {
	persons      *service.PersonService
	institutions *service.InstitutionService
	accounts     *service.AccountService
	messaging    *service.MessagingService
	uploads      *upload.Store
	logger       *slog.Logger
}

func NewPersonHandler(
	persons *service.PersonService,
	institutions *service.InstitutionService,
	accounts *service.AccountService,
	messaging *service.MessagingService,
	uploads *upload.Store,
	logger *slog.Logger,
) *PersonHandler {
	return &PersonHandler{
		persons:      persons,
		institutions: institutions,
		accounts:     accounts,
		messaging:    messaging,
		uploads:      uploads,
		logger:       logger,
	}
}

// Home handles GET /person/home: followed institutions' posts plus the
// next few events.
func (h *PersonHandler) Home(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	view, err := h.persons.Home(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres adatlekérés", view)
}

// Events handles GET /person/events: every upcoming event of the
// followed institutions.
func (h *PersonHandler) Events(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	views, err := h.persons.Events(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres adatlekérés", views)
}

// Categories handles GET /person/categories. Public.
func (h *PersonHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.persons.Categories(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres adatlekérés", categories)
}

// InstitutionsByCategory handles GET /person/institutions_by_category/{category_id}. Public.
func (h *PersonHandler) InstitutionsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "category_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	refs, err := h.persons.InstitutionsByCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres adatlekérés", refs)
}

// Institution handles GET /person/institutions/{institution_id}: the
// public page with the viewer's followed and liked flags filled in.
func (h *PersonHandler) Institution(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	institutionID, err := pathID(r, "institution_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	personID, err := h.persons.PersonID(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	view, err := h.institutions.PublicProfile(r.Context(), institutionID, &personID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres adatlekérés", view)
}

// Follow handles POST /person/follow/{institution_id}.
func (h *PersonHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	institutionID, err := pathID(r, "institution_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	count, err := h.persons.Follow(r.Context(), userID, institutionID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Az intézmény sikeresen követve", service.FollowersView{FollowerCount: count})
}

// Unfollow handles DELETE /person/unfollow/{institution_id}.
func (h *PersonHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	institutionID, err := pathID(r, "institution_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	count, err := h.persons.Unfollow(r.Context(), userID, institutionID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Az intézmény sikeresen kikövetve", service.FollowersView{FollowerCount: count})
}

// Like handles POST /person/like/{news_id}.
func (h *PersonHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	newsID, err := pathID(r, "news_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	count, err := h.persons.Like(r.Context(), userID, newsID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeresen lájkolva a bejegyzés", service.LikesView{LikeCount: count})
}

// Unlike handles DELETE /person/unlike/{news_id}.
func (h *PersonHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	newsID, err := pathID(r, "news_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	count, err := h.persons.Unlike(r.Context(), userID, newsID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeresen unlájkolva a bejegyzés", service.LikesView{LikeCount: count})
}

// Profile handles GET /person/profile.
func (h *PersonHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	view, err := h.persons.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres adatlekérés", view)
}

// Enabled and Accepted are gate probes: the middleware already rejected
// anything that should not pass, so reaching the handler is the answer.
func (h *PersonHandler) Enabled(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "A fiók enedéléyezve van", nil)
}

func (h *PersonHandler) Accepted(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "A fiók jóváhagyásra került", nil)
}

// UpdateAvatar handles PUT /person/avatar.
func (h *PersonHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	filename, err := requiredFormImage(r, h.uploads, "avatar_image")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.accounts.ReplaceAvatar(r.Context(), repository.ProfilePerson, userID, filename); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres képfeltöltés", map[string]string{"avatar_image": filename})
}

// UpdateName handles PUT /person/name.
func (h *PersonHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	updateName(w, r, h.accounts, h.logger)
}

// UpdateEmail handles PUT /person/email.
func (h *PersonHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	updateEmail(w, r, h.accounts, h.logger)
}

// UpdatePassword handles PUT /person/password.
func (h *PersonHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	updatePassword(w, r, h.accounts, h.logger)
}

// DeleteProfile handles DELETE /person/profile.
func (h *PersonHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.accounts.Delete(r.Context(), repository.ProfilePerson, userID); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres fióktörlés", nil)
}

// MessagesVersion handles GET /person/messages_version.
func (h *PersonHandler) MessagesVersion(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	view, err := h.messaging.Version(r.Context(), repository.ProfilePerson, userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "sikeres adatlekérés", view)
}

// Rooms handles GET /person/messaging_rooms.
func (h *PersonHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	rooms, err := h.messaging.Rooms(r.Context(), repository.ProfilePerson, userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres adatlekérés", rooms)
}

// Room handles GET /person/messaging_rooms/{messaging_room_id}.
func (h *PersonHandler) Room(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	roomID, err := pathID(r, "messaging_room_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	view, err := h.messaging.Room(r.Context(), repository.ProfilePerson, userID, roomID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres adatlekérés", view)
}

// SendMessage handles POST /person/send_message/{institution_id}. A
// first message opens the room.
func (h *PersonHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	institutionID, err := pathID(r, "institution_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	view, err := h.messaging.SendFromPerson(r.Context(), userID, institutionID, req.Message)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Üzenet sikeresen elküldve", view)
}

// FindRoom handles GET /person/find_messaging_rooms/{institution_id}:
// opens the room with the institution if needed and returns its
// transcript.
func (h *PersonHandler) FindRoom(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	institutionID, err := pathID(r, "institution_id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	view, err := h.messaging.FindRoomWithInstitution(r.Context(), userID, institutionID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres adatlekérés", view)
}
