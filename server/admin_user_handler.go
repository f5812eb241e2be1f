package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"dhammasound/core/auth"
	"dhammasound/logger"
	"dhammasound/model"
	"dhammasound/repository"
)

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, BadRequest("Invalid id")
	}
	return id, nil
}

// listResponse is the common paginated envelope of admin list endpoints.
func listResponse(data interface{}, total int64, p Pagination) map[string]interface{} {
	return map[string]interface{}{
		"data":  data,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}
}

// --- roles ---

func (h *APIHandler) ListRolesHandler(w http.ResponseWriter, r *http.Request) {
	p := getPagination(r)
	roles, total, err := h.roleRepo.List(r.Context(), p.Offset, p.Limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(roles, total, p))
}

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (h *APIHandler) CreateRoleHandler(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.writeError(w, ValidationFailed([]FieldError{{Field: "name", Message: "กรุณากรอกชื่อสิทธิ์"}}))
		return
	}

	role := &model.Role{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if req.IsActive != nil {
		role.IsActive = *req.IsActive
	}
	if err := h.roleRepo.Create(r.Context(), role); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "สร้างข้อมูลสำเร็จ",
		"role":    role,
	})
}

func (h *APIHandler) GetRoleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	role, err := h.roleRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if role == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"role": role})
}

func (h *APIHandler) UpdateRoleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	role, err := h.roleRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if role == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}
	if req.Name != "" {
		role.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		role.Description = strings.TrimSpace(req.Description)
	}
	if req.IsActive != nil {
		role.IsActive = *req.IsActive
	}
	if err := h.roleRepo.Update(r.Context(), role); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "แก้ไขข้อมูลสำเร็จ",
		"role":    role,
	})
}

func (h *APIHandler) DeleteRoleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.roleRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrRoleInUse) {
			h.writeError(w, Conflict("สิทธิ์นี้ถูกใช้งานอยู่ ไม่สามารถลบได้"))
			return
		}
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "ลบข้อมูลสำเร็จ"})
}

// --- users ---

func (h *APIHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	p := getPagination(r)
	users, total, err := h.userRepo.List(r.Context(), p.Offset, p.Limit, getSearch(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(users, total, p))
}

type adminUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	RoleID    int64  `json:"roleId"`
	IsActive  *bool  `json:"isActive"`
}

// CreateUserHandler creates an account from the admin console. The
// system playlists are provisioned exactly as with self registration.
func (h *APIHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req adminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}

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
	if len(fields) > 0 {
		h.writeError(w, ValidationFailed(fields))
		return
	}

	role, err := h.roleRepo.GetByID(r.Context(), req.RoleID)
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
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := h.userRepo.CreateWithPlaylists(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			h.writeError(w, Conflict("อีเมลนี้ถูกลงทะเบียนโดยผู้ใช้รายอื่นแล้ว กรุณาเปลี่ยนอีเมลใหม่"))
			return
		}
		h.writeError(w, err)
		return
	}

	logger.Info("user created by admin", logger.Int64("userId", user.ID))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "สร้างผู้ใช้สำเร็จ",
		"user":    user,
	})
}

func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	user, err := h.userRepo.GetByIDWithRole(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if user == nil {
		h.writeError(w, NotFound("ไม่พบผู้ใช้ที่ต้องการ"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *APIHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if user == nil {
		h.writeError(w, NotFound("ไม่พบผู้ใช้ที่ต้องการ"))
		return
	}

	var req adminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}
	if req.FirstName != "" {
		user.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		user.LastName = strings.TrimSpace(req.LastName)
	}
	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
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
	if req.RoleID != 0 {
		role, err := h.roleRepo.GetByID(r.Context(), req.RoleID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if role == nil {
			h.writeError(w, NotFound("ไม่พบสิทธิ์การใช้งาน"))
			return
		}
		user.RoleID = role.ID
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			h.writeError(w, ValidationFailed([]FieldError{{Field: "password", Message: "รหัสผ่านต้องมีอย่างน้อย 8 ตัวอักษร"}}))
			return
		}
		hash, err := auth.HashPassword(req.Password, h.cfg.BcryptCost)
		if err != nil {
			h.writeError(w, err)
			return
		}
		user.Password = hash
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.userRepo.Update(r.Context(), user); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "แก้ไขผู้ใช้สำเร็จ",
		"user":    user,
	})
}

// DeleteUserHandler removes an account together with its playlists.
func (h *APIHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if user == nil {
		h.writeError(w, NotFound("ไม่พบผู้ใช้ที่ต้องการ"))
		return
	}
	if err := h.userRepo.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	logger.Info("user deleted", logger.Int64("userId", id))
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "ลบข้อมูลสำเร็จ"})
}
