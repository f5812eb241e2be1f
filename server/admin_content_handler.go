package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"dhammasound/model"
)

// --- quotes ---

func (h *APIHandler) AdminListQuotesHandler(w http.ResponseWriter, r *http.Request) {
	p := getPagination(r)
	quotes, total, err := h.quoteRepo.List(r.Context(), p.Offset, p.Limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(quotes, total, p))
}

type quoteRequest struct {
	OrderNumber int    `json:"orderNumber"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	IsActive    *bool  `json:"isActive"`
}

func (h *APIHandler) CreateQuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}

	var fields []FieldError
	if strings.TrimSpace(req.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: "กรุณากรอกคำคม"})
	}
	if strings.TrimSpace(req.Author) == "" {
		fields = append(fields, FieldError{Field: "author", Message: "กรุณากรอกชื่อเจ้าของคำคม"})
	}
	if len(fields) > 0 {
		h.writeError(w, ValidationFailed(fields))
		return
	}

	quote := &model.Quote{
		OrderNumber: req.OrderNumber,
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		IsActive:    true,
	}
	if req.IsActive != nil {
		quote.IsActive = *req.IsActive
	}
	if err := h.quoteRepo.Create(r.Context(), quote); err != nil {
		h.writeError(w, err)
		return
	}
	h.homeCache.Invalidate(r.Context())
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "สร้างข้อมูลสำเร็จ",
		"quote":   quote,
	})
}

func (h *APIHandler) AdminGetQuoteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	quote, err := h.quoteRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if quote == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quote": quote})
}

func (h *APIHandler) UpdateQuoteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	quote, err := h.quoteRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if quote == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}

	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}
	if req.Title != "" {
		quote.Title = strings.TrimSpace(req.Title)
	}
	if req.Author != "" {
		quote.Author = strings.TrimSpace(req.Author)
	}
	if req.OrderNumber != 0 {
		quote.OrderNumber = req.OrderNumber
	}
	if req.IsActive != nil {
		quote.IsActive = *req.IsActive
	}
	if err := h.quoteRepo.Update(r.Context(), quote); err != nil {
		h.writeError(w, err)
		return
	}
	h.homeCache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "แก้ไขข้อมูลสำเร็จ",
		"quote":   quote,
	})
}

func (h *APIHandler) DeleteQuoteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	quote, err := h.quoteRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if quote == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	if err := h.quoteRepo.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.homeCache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "ลบข้อมูลสำเร็จ"})
}

// --- contacts ---

func (h *APIHandler) AdminListContactsHandler(w http.ResponseWriter, r *http.Request) {
	p := getPagination(r)
	contacts, total, err := h.contactRepo.List(r.Context(), p.Offset, p.Limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(contacts, total, p))
}

func (h *APIHandler) AdminGetContactHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	contact, err := h.contactRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if contact == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"contact": contact})
}

type replyContactRequest struct {
	IsReply bool `json:"isReply"`
}

// ReplyContactHandler flips the replied flag of a contact message.
func (h *APIHandler) ReplyContactHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	contact, err := h.contactRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if contact == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}

	var req replyContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, BadRequest("Invalid request body"))
		return
	}
	if err := h.contactRepo.UpdateReply(r.Context(), id, req.IsReply); err != nil {
		h.writeError(w, err)
		return
	}
	contact.IsReply = req.IsReply
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "แก้ไขข้อมูลสำเร็จ",
		"contact": contact,
	})
}

func (h *APIHandler) DeleteContactHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	contact, err := h.contactRepo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if contact == nil {
		h.writeError(w, NotFound("ไม่พบข้อมูล"))
		return
	}
	if err := h.contactRepo.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "ลบข้อมูลสำเร็จ"})
}
