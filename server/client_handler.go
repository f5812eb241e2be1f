package server

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gorilla/mux"

	"dhammasound/logger"
	"dhammasound/model"
)

// homePayload is the landing-page aggregate served to the client app.
type homePayload struct {
	Quotes            []model.Quote `json:"quotes"`
	RecommendedAlbums []model.Album `json:"recommendedAlbums"`
	PriestAlbums      []model.Album `json:"priestAlbums"`
}

// HomeHandler serves the landing-page aggregate, cached in Redis.
func (h *APIHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.homeCache.Get(r.Context()); ok {
		writeJSON(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	quotes, err := h.quoteRepo.ListActive(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	recommended, err := h.albumRepo.ListRecommended(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Albums of the first active priest round out the landing page.
	var priestAlbums []model.Album
	priests, err := h.priestRepo.ListActive(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(priests) > 0 {
		priestAlbums, err = h.albumRepo.ListByPriest(r.Context(), priests[0].ID, false)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}

	payload := homePayload{
		Quotes:            quotes,
		RecommendedAlbums: recommended,
		PriestAlbums:      priestAlbums,
	}
	h.homeCache.Set(r.Context(), payload)
	writeJSON(w, http.StatusOK, payload)
}

// SearchAlbumsHandler searches active albums by name or description.
func (h *APIHandler) SearchAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	term := getSearch(r)
	albums, err := h.albumRepo.SearchActive(r.Context(), term)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"albums": albums})
}

// ListPriestsHandler returns every active priest.
func (h *APIHandler) ListPriestsHandler(w http.ResponseWriter, r *http.Request) {
	priests, err := h.priestRepo.ListActive(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"priests": priests})
}

// GetPriestHandler returns one active priest with their active albums.
func (h *APIHandler) GetPriestHandler(w http.ResponseWriter, r *http.Request) {
	priest, err := h.priestRepo.GetActiveBySlugWithAlbums(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	if priest == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"priest": priest})
}

// ListClientAlbumsHandler returns every active album.
func (h *APIHandler) ListClientAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	albums, err := h.albumRepo.ListActive(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"albums": albums})
}

// GetAlbumHandler returns one active album with its active audios.
func (h *APIHandler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	album, err := h.albumRepo.GetActiveBySlugWithAudios(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	if album == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"album": album})
}

type createContactRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// CreateContactHandler stores a contact message. When the request
// carries a valid token the account is linked to the message, but the
// endpoint works without one.
func (h *APIHandler) CreateContactHandler(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}

	var fields []FieldError
	if strings.TrimSpace(req.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: "กรุณากรอกหัวข้อ"})
	}
	if strings.TrimSpace(req.Description) == "" {
		fields = append(fields, FieldError{Field: "description", Message: "กรุณากรอกรายละเอียด"})
	}
	if strings.TrimSpace(req.FullName) == "" {
		fields = append(fields, FieldError{Field: "fullName", Message: "กรุณากรอกชื่อ-นามสกุล"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields = append(fields, FieldError{Field: "email", Message: "กรุณากรอกอีเมลให้ถูกต้อง"})
	}
	if len(fields) > 0 {
		h.writeError(w, ValidationFailed(fields))
		return
	}

	contact := &model.Contact{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		FullName:    strings.TrimSpace(req.FullName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		IsActive:    true,
	}
	if userID := h.optionalUserID(r); userID != 0 {
		contact.UserID = &userID
	}

	if err := h.contactRepo.Create(r.Context(), contact); err != nil {
		h.writeError(w, err)
		return
	}
	logger.Info("contact received", logger.Int64("contactId", contact.ID))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "ส่งข้อความสำเร็จ",
		"contact": contact,
	})
}

// optionalUserID resolves the bearer token when present; anonymous
// requests get zero.
func (h *APIHandler) optionalUserID(r *http.Request) int64 {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0
	}
	userID, err := h.tokens.ParseToken(parts[1])
	if err != nil {
		return 0
	}
	return userID
}
