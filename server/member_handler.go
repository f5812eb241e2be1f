package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"dhammasound/core/playlist"
	"dhammasound/logger"
)

// ListPlaylistsHandler returns every playlist of the caller.
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := UserFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	playlists, err := h.workflow.ListPlaylists(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}

// ListPlaylistsWithCountHandler returns the caller's playlists together
// with the number of active audios in each.
func (h *APIHandler) ListPlaylistsWithCountHandler(w http.ResponseWriter, r *http.Request) {
	user, err := UserFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	playlists, err := h.workflow.ListPlaylistsWithCounts(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}

// GetPlaylistHandler resolves a selector (DEFAULT, HISTORY or a slug)
// and returns the playlist with its entries.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	user, err := UserFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	sel := playlist.ParseSelector(mux.Vars(r)["selector"])
	pl, entries, err := h.workflow.Detail(r.Context(), user.ID, sel)
	if err != nil {
		if errors.Is(err, playlist.ErrPlaylistNotFound) {
			h.writeError(w, BadRequest("ไม่พบรายการนี้"))
			return
		}
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"playlist": pl,
		"audios":   entries,
	})
}

type createPlaylistResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
	Slug        string `json:"slug"`
}

// CreatePlaylistHandler creates a CREATE playlist for the caller. The
// request is multipart so a cover image can ride along.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	user, err := UserFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	isPrivateRaw := r.FormValue("isPrivate")

	var fields []FieldError
	if name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "กรุณาเพิ่มชื่อรายการ"})
	}
	if description == "" {
		fields = append(fields, FieldError{Field: "description", Message: "กรุณาเพิ่มคำอธิบายรายการ"})
	}
	isPrivate, perr := strconv.ParseBool(isPrivateRaw)
	if isPrivateRaw == "" || perr != nil {
		fields = append(fields, FieldError{Field: "isPrivate", Message: "กรุณาเลือกสถานะรายการ"})
	}
	if len(fields) > 0 {
		h.writeError(w, ValidationFailed(fields))
		return
	}

	coverImage := ""
	localPath, err := h.saveUpload(r, "coverImage")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if localPath != "" {
		url, err := h.storage.UploadLocalFile(r.Context(), localPath, "playlists")
		if err != nil {
			h.writeError(w, err)
			return
		}
		coverImage = url
	}

	pl, err := h.workflow.Create(r.Context(), user.ID, name, description, isPrivate, coverImage)
	if err != nil {
		h.writeError(w, err)
		return
	}

	logger.Info("playlist created",
		logger.Int64("userId", user.ID),
		logger.String("slug", pl.Slug))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "สร้างรายการเสร็จสิ้น",
		"playlist": createPlaylistResponse{
			Name:        pl.Name,
			Description: pl.Description,
			CoverImage:  pl.CoverImage,
			Slug:        pl.Slug,
		},
	})
}

type addAudioRequest struct {
	Slug    string `json:"slug"`
	AudioID int64  `json:"audioId"`
}

// AddPlaylistAudioHandler places an audio in one of the caller's
// playlists. Non-HISTORY playlists reject duplicates; HISTORY appends
// with a throttle and reports success either way.
func (h *APIHandler) AddPlaylistAudioHandler(w http.ResponseWriter, r *http.Request) {
	user, err := UserFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req addAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}

	var fields []FieldError
	if strings.TrimSpace(req.Slug) == "" {
		fields = append(fields, FieldError{Field: "slug", Message: "กรุณาเลือกรายการ"})
	}
	if req.AudioID <= 0 {
		fields = append(fields, FieldError{Field: "audioId", Message: "กรุณาเลือกเสียง"})
	}
	if len(fields) > 0 {
		h.writeError(w, ValidationFailed(fields))
		return
	}

	sel := playlist.ParseSelector(req.Slug)
	added, err := h.workflow.AddAudio(r.Context(), user.ID, sel, req.AudioID)
	if err != nil {
		switch {
		case errors.Is(err, playlist.ErrPlaylistNotFound):
			h.writeError(w, BadRequest("ไม่พบรายการนี้"))
		case errors.Is(err, playlist.ErrAlreadyInPlaylist):
			h.writeError(w, BadRequest("มีเสียงนี้อยู่ในรายการแล้ว"))
		case errors.Is(err, playlist.ErrAudioNotFound):
			h.writeError(w, NotFound("ไม่พบเสียงนี้"))
		default:
			h.writeError(w, err)
		}
		return
	}

	message := "เพิ่มเสียงลงรายการสำเร็จ"
	if !added {
		message = "เสียงไม่ถูกเพิ่ม"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": message})
}

// DeletePlaylistHandler removes one of the caller's CREATE playlists.
// System playlists are not addressable here.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	user, err := UserFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	slug := mux.Vars(r)["slug"]
	if err := h.workflow.Delete(r.Context(), user.ID, slug); err != nil {
		if errors.Is(err, playlist.ErrPlaylistNotFound) {
			h.writeError(w, NotFound("ไม่พบข้อมูล"))
			return
		}
		h.writeError(w, err)
		return
	}

	logger.Info("playlist deleted",
		logger.Int64("userId", user.ID),
		logger.String("slug", slug))
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "ลบรายการเสร็จสิ้น"})
}
