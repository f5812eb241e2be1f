package server

import (
	"net/http"
	"strconv"
	"strings"

	"dhammasound/core/slug"
	"dhammasound/logger"
	"dhammasound/model"
)

// --- priests ---

func (h *APIHandler) AdminListPriestsHandler(w http.ResponseWriter, r *http.Request) {
	p := getPagination(r)
	priests, total, err := h.priestRepo.List(r.Context(), p.Offset, p.Limit, getSearch(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(priests, total, p))
}

func (h *APIHandler) CreatePriestHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	description := strings.TrimSpace(r.FormValue("description"))

	var fields []FieldError
	if fullName == "" {
		fields = append(fields, FieldError{Field: "fullName", Message: "กรุณากรอกชื่อพระอาจารย์"})
	}
	if description == "" {
		fields = append(fields, FieldError{Field: "description", Message: "กรุณากรอกประวัติพระอาจารย์"})
	}
	if len(fields) > 0 {
		h.writeError(w, ValidationFailed(fields))
		return
	}

	priest := &model.Priest{
		FullName:    fullName,
		Description: description,
		Avatar:      model.DefaultPriestAvatar,
		Slug:        slug.Normalize(fullName),
		IsActive:    true,
	}
	if v := r.FormValue("isActive"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			priest.IsActive = b
		}
	}

	localPath, err := h.saveUpload(r, "avatar")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if localPath != "" {
		url, err := h.storage.UploadLocalFile(r.Context(), localPath, "priests")
		if err != nil {
			h.writeError(w, err)
			return
		}
		priest.Avatar = url
	}

	if err := h.priestRepo.Create(r.Context(), priest); err != nil {
		h.writeError(w, err)
		return
	}
	logger.Info("priest created", logger.Int64("priestId", priest.ID))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "สร้างข้อมูลสำเร็จ",
		"priest":  priest,
	})
}

func (h *APIHandler) AdminGetPriestHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	priest, err := h.priestRepo.GetByID(r.Context(), id)
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

func (h *APIHandler) UpdatePriestHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	priest, err := h.priestRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if priest == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}
	if v := strings.TrimSpace(r.FormValue("fullName")); v != "" {
		priest.FullName = v
		priest.Slug = slug.Normalize(v)
	}
	if v := strings.TrimSpace(r.FormValue("description")); v != "" {
		priest.Description = v
	}
	if v := r.FormValue("isActive"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			priest.IsActive = b
		}
	}

	localPath, err := h.saveUpload(r, "avatar")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if localPath != "" {
		url, err := h.storage.UploadLocalFile(r.Context(), localPath, "priests")
		if err != nil {
			h.writeError(w, err)
			return
		}
		priest.Avatar = url
	}

	if err := h.priestRepo.Update(r.Context(), priest); err != nil {
		h.writeError(w, err)
		return
	}
	h.homeCache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "แก้ไขข้อมูลสำเร็จ",
		"priest":  priest,
	})
}

func (h *APIHandler) DeletePriestHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	priest, err := h.priestRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if priest == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	if err := h.priestRepo.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.homeCache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "ลบข้อมูลสำเร็จ"})
}

// --- albums ---

func (h *APIHandler) AdminListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	p := getPagination(r)
	albums, total, err := h.albumRepo.List(r.Context(), p.Offset, p.Limit, getSearch(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(albums, total, p))
}

func (h *APIHandler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	priestID, _ := strconv.ParseInt(r.FormValue("priestId"), 10, 64)

	var fields []FieldError
	if name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "กรุณากรอกชื่ออัลบั้ม"})
	}
	if description == "" {
		fields = append(fields, FieldError{Field: "description", Message: "กรุณากรอกคำอธิบายอัลบั้ม"})
	}
	if priestID <= 0 {
		fields = append(fields, FieldError{Field: "priestId", Message: "กรุณาเลือกพระอาจารย์"})
	}
	if len(fields) > 0 {
		h.writeError(w, ValidationFailed(fields))
		return
	}

	priest, err := h.priestRepo.GetByID(r.Context(), priestID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if priest == nil || !priest.IsActive {
		h.writeError(w, BadRequest("ไม่มีพระอาจารย์"))
		return
	}

	existing, err := h.albumRepo.GetByName(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if existing != nil {
		h.writeError(w, Conflict("มีชื่ออัลบั้มนี้อยู่แล้ว"))
		return
	}

	album := &model.Album{
		Name:        name,
		Description: description,
		CoverImage:  model.DefaultAlbumCover,
		Slug:        slug.Normalize(name),
		PriestID:    priest.ID,
		IsActive:    true,
	}
	if v := r.FormValue("isRecommend"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			album.IsRecommend = b
		}
	}

	localPath, err := h.saveUpload(r, "coverImage")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if localPath != "" {
		url, err := h.storage.UploadLocalFile(r.Context(), localPath, "albums")
		if err != nil {
			h.writeError(w, err)
			return
		}
		album.CoverImage = url
	}

	if err := h.albumRepo.Create(r.Context(), album); err != nil {
		h.writeError(w, err)
		return
	}
	h.homeCache.Invalidate(r.Context())
	logger.Info("album created", logger.Int64("albumId", album.ID))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "สร้างข้อมูลสำเร็จ",
		"album":   album,
	})
}

func (h *APIHandler) AdminGetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	album, err := h.albumRepo.GetByID(r.Context(), id)
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

func (h *APIHandler) UpdateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	album, err := h.albumRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if album == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}
	if v := strings.TrimSpace(r.FormValue("name")); v != "" && v != album.Name {
		existing, err := h.albumRepo.GetByName(r.Context(), v)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if existing != nil {
			h.writeError(w, Conflict("มีชื่ออัลบั้มนี้อยู่แล้ว"))
			return
		}
		album.Name = v
		album.Slug = slug.Normalize(v)
	}
	if v := strings.TrimSpace(r.FormValue("description")); v != "" {
		album.Description = v
	}
	if v := r.FormValue("priestId"); v != "" {
		priestID, _ := strconv.ParseInt(v, 10, 64)
		priest, err := h.priestRepo.GetByID(r.Context(), priestID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if priest == nil || !priest.IsActive {
			h.writeError(w, BadRequest("ไม่มีพระอาจารย์"))
			return
		}
		album.PriestID = priest.ID
	}
	if v := r.FormValue("isRecommend"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			album.IsRecommend = b
		}
	}
	if v := r.FormValue("isActive"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			album.IsActive = b
		}
	}

	localPath, err := h.saveUpload(r, "coverImage")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if localPath != "" {
		url, err := h.storage.UploadLocalFile(r.Context(), localPath, "albums")
		if err != nil {
			h.writeError(w, err)
			return
		}
		album.CoverImage = url
	}

	if err := h.albumRepo.Update(r.Context(), album); err != nil {
		h.writeError(w, err)
		return
	}
	h.homeCache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "แก้ไขข้อมูลสำเร็จ",
		"album":   album,
	})
}

func (h *APIHandler) DeleteAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	album, err := h.albumRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if album == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	if err := h.albumRepo.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.homeCache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "ลบข้อมูลสำเร็จ"})
}

// --- audios ---

func (h *APIHandler) AdminListAudiosHandler(w http.ResponseWriter, r *http.Request) {
	p := getPagination(r)
	audios, total, err := h.audioRepo.List(r.Context(), p.Offset, p.Limit, getSearch(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(audios, total, p))
}

func (h *APIHandler) CreateAudioHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	albumID, _ := strconv.ParseInt(r.FormValue("albumId"), 10, 64)

	var fields []FieldError
	if name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "กรุณากรอกชื่อเสียง"})
	}
	if albumID <= 0 {
		fields = append(fields, FieldError{Field: "albumId", Message: "กรุณาเลือกอัลบั้ม"})
	}
	if len(fields) > 0 {
		h.writeError(w, ValidationFailed(fields))
		return
	}

	album, err := h.albumRepo.GetByID(r.Context(), albumID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if album == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}

	localPath, err := h.saveUpload(r, "source")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if localPath == "" {
		h.writeError(w, ValidationFailed([]FieldError{{Field: "source", Message: "กรุณาเพิ่มไฟล์เสียง"}}))
		return
	}
	source, err := h.storage.UploadLocalFile(r.Context(), localPath, h.cfg.MediaFolder)
	if err != nil {
		h.writeError(w, err)
		return
	}

	audio := &model.Audio{
		Name:     name,
		Source:   source,
		AlbumID:  album.ID,
		IsActive: true,
	}
	if v := r.FormValue("orderNumber"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			audio.OrderNumber = n
		}
	}

	if err := h.audioRepo.Create(r.Context(), audio); err != nil {
		h.writeError(w, err)
		return
	}
	logger.Info("audio created",
		logger.Int64("audioId", audio.ID),
		logger.Int64("albumId", album.ID))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "สร้างข้อมูลสำเร็จ",
		"audio":   audio,
	})
}

func (h *APIHandler) AdminGetAudioHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	audio, err := h.audioRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if audio == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"audio": audio})
}

func (h *APIHandler) UpdateAudioHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	audio, err := h.audioRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if audio == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}
	if v := strings.TrimSpace(r.FormValue("name")); v != "" {
		audio.Name = v
	}
	if v := r.FormValue("orderNumber"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			audio.OrderNumber = n
		}
	}
	if v := r.FormValue("albumId"); v != "" {
		albumID, _ := strconv.ParseInt(v, 10, 64)
		album, err := h.albumRepo.GetByID(r.Context(), albumID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if album == nil {
			h.writeError(w, NotFound("ไม่พบข้อมูล"))
			return
		}
		audio.AlbumID = album.ID
	}
	if v := r.FormValue("isActive"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			audio.IsActive = b
		}
	}

	localPath, err := h.saveUpload(r, "source")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if localPath != "" {
		source, err := h.storage.UploadLocalFile(r.Context(), localPath, h.cfg.MediaFolder)
		if err != nil {
			h.writeError(w, err)
			return
		}
		audio.Source = source
	}

	if err := h.audioRepo.Update(r.Context(), audio); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "แก้ไขข้อมูลสำเร็จ",
		"audio":   audio,
	})
}

// DeleteAudioHandler removes an audio together with its playlist joins.
func (h *APIHandler) DeleteAudioHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	audio, err := h.audioRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if audio == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	if err := h.audioRepo.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "ลบข้อมูลสำเร็จ"})
}
