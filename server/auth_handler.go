package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"dhammasound/core/auth"
	"dhammasound/logger"
	"dhammasound/model"
	"dhammasound/repository"
)

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (req *registerRequest) validate() []FieldError {
	var fields []FieldError
	if strings.TrimSpace(req.FirstName) == "" {
		fields = append(fields, FieldError{Field: "firstName", Message: "กรุณากรอกชื่อ"})
	}
	if strings.TrimSpace(req.LastName) == "" {
		fields = append(fields, FieldError{Field: "lastName", Message: "กรุณากรอกนามสกุล"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields = append(fields, FieldError{Field: "email", Message: "กรุณากรอกอีเมลให้ถูกต้อง"})
	}
	if len(req.Password) < 8 {
		fields = append(fields, FieldError{Field: "password", Message: "รหัสผ่านต้องมีอย่างน้อย 8 ตัวอักษร"})
	}
	return fields
}

// RegisterHandler creates an account together with its DEFAULT and
// HISTORY playlists and hands back a token.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		h.writeError(w, ValidationFailed(fields))
		return
	}

	role, err := h.roleRepo.GetByName(r.Context(), "user")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if role == nil {
		h.writeError(w, NotFound("ไม่พบสิทธิ์การใช้งาน"))
		return
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.BcryptCost)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user := &model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hash,
		Avatar:    model.DefaultUserAvatar,
		RoleID:    role.ID,
		IsActive:  true,
	}
	if err := h.userRepo.CreateWithPlaylists(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			h.writeError(w, Conflict("อีเมลนี้ถูกลงทะเบียนโดยผู้ใช้รายอื่นแล้ว กรุณาเปลี่ยนอีเมลใหม่"))
			return
		}
		h.writeError(w, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	logger.Info("user registered", logger.Int64("userId", user.ID))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "ลงทะเบียนสำเร็จ",
		"token":   token,
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler checks credentials and issues a token.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if user == nil || !user.IsActive || !auth.CheckPasswordHash(req.Password, user.Password) {
		h.writeError(w, Unauthorized("อีเมลหรือรหัสผ่านไม่ถูกต้อง กรุณาตรวจสอบข้อมูลอีกครั้ง"))
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "เข้าสู่ระบบสำเร็จ",
		"token":   token,
		"user":    user,
	})
}

// MeHandler returns the authenticated account.
func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := UserFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateMeHandler updates the authenticated account's profile. The
// request is multipart so the avatar can ride along.
func (h *APIHandler) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := UserFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}

	if v := r.FormValue("firstName"); v != "" {
		user.FirstName = strings.TrimSpace(v)
	}
	if v := r.FormValue("lastName"); v != "" {
		user.LastName = strings.TrimSpace(v)
	}
	if v := r.FormValue("email"); v != "" {
		email := strings.ToLower(strings.TrimSpace(v))
		if _, err := mail.ParseAddress(email); err != nil {
			h.writeError(w, ValidationFailed([]FieldError{{Field: "email", Message: "กรุณากรอกอีเมลให้ถูกต้อง"}}))
			return
		}
		taken, err := h.userRepo.EmailTakenByOther(r.Context(), email, user.ID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if taken {
			h.writeError(w, Conflict("อีเมลนี้ถูกลงทะเบียนโดยผู้ใช้รายอื่นแล้ว กรุณาเปลี่ยนอีเมลใหม่"))
			return
		}
		user.Email = email
	}

	localPath, err := h.saveUpload(r, "avatar")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if localPath != "" {
		url, err := h.storage.UploadLocalFile(r.Context(), localPath, "avatars")
		if err != nil {
			h.writeError(w, err)
			return
		}
		user.Avatar = url
	}

	if err := h.userRepo.Update(r.Context(), user); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "อัพเดทข้อมูลสำเร็จ",
		"user":    user,
	})
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdatePasswordHandler rotates the account password after checking
// the current one.
func (h *APIHandler) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	user, err := UserFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}
	if len(req.NewPassword) < 8 {
		h.writeError(w, ValidationFailed([]FieldError{{Field: "newPassword", Message: "รหัสผ่านต้องมีอย่างน้อย 8 ตัวอักษร"}}))
		return
	}
	if !auth.CheckPasswordHash(req.OldPassword, user.Password) {
		h.writeError(w, BadRequest("รหัสผ่านเดิมไม่ถูกต้อง กรุณาตรวจสอบข้อมูลอีกครั้ง"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword, h.cfg.BcryptCost)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.userRepo.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "อัพเดทรหัสผ่านสำเร็จ"})
}
