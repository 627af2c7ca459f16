package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

const (
	defaultNewsLimit = 20
	maxNewsLimit     = 100
	maxUploadBytes   = 10 << 20
)

// handleNews handles GET /api/news?limit=.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	news, err := s.app.ContentService.News(r.Context(), queryInt(r, "limit", defaultNewsLimit, maxNewsLimit))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"count": len(news),
		"items": news,
	})
}

// handleContentList handles GET /api/content?kind=, published items only.
func (s *Server) handleContentList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	items, err := s.app.ContentService.List(r.Context(), true)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		filtered := items[:0]
		for _, it := range items {
			if it.Kind == kind {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}

// handleContentGet handles GET /api/content/{id}. Drafts are not visible here.
func (s *Server) handleContentGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	item, err := s.app.ContentService.Get(r.Context(), r.PathValue("id"))
	if err == nil && !item.Published {
		err = interfaces.ErrNotFound
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, item)
}

// handleExplain handles GET /api/education/explain?concept=.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	exp, err := s.app.EducationService.Explain(r.Context(), r.URL.Query().Get("concept"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, exp)
}

// --- Admin content ---

// handleAdminContent handles GET (all items, drafts included) and POST /api/admin/content.
func (s *Server) handleAdminContent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		items, err := s.app.ContentService.List(ctx, false)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, map[string]interface{}{
			"count": len(items),
			"items": items,
		})
		return
	}

	var item models.ContentItem
	if !DecodeJSON(w, r, &item) {
		return
	}
	item.ContentID = ""
	saved, err := s.app.ContentService.Save(ctx, common.ResolveUserID(ctx), &item)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusCreated, saved)
}

// handleAdminContentItem handles GET, PUT and DELETE /api/admin/content/{id}.
func (s *Server) handleAdminContentItem(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	ctx := r.Context()
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		item, err := s.app.ContentService.Get(ctx, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, item)

	case http.MethodPut:
		if _, err := s.app.ContentService.Get(ctx, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		var item models.ContentItem
		if !DecodeJSON(w, r, &item) {
			return
		}
		item.ContentID = id
		saved, err := s.app.ContentService.Save(ctx, common.ResolveUserID(ctx), &item)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, saved)

	case http.MethodDelete:
		if err := s.app.ContentService.Delete(ctx, common.ResolveUserID(ctx), id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, map[string]string{"deleted": id})
	}
}

// handleAdminContentImport handles POST /api/admin/content/import, a multipart
// upload with a "file" PDF and optional "title" and "kind" fields.
func (s *Server) handleAdminContentImport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "Invalid multipart upload: "+err.Error(), "invalid_request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "file is required", "invalid_request")
		return
	}
	defer file.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	}

	ctx := r.Context()
	item, err := s.app.ContentService.ImportPDF(ctx, common.ResolveUserID(ctx), title, r.FormValue("kind"), file, header.Size)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusCreated, item)
}

// --- Support ---

// handleSupportContact handles POST /api/support/contact.
func (s *Server) handleSupportContact(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	body.Message = strings.TrimSpace(body.Message)
	if body.Message == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "message is required", "invalid_request")
		return
	}

	ctx := r.Context()
	ticket := &models.SupportTicket{
		Name:    strings.TrimSpace(body.Name),
		Email:   strings.TrimSpace(body.Email),
		Message: body.Message,
		Status:  models.SupportStatusPending,
	}
	if uc := common.UserContextFromContext(ctx); uc != nil {
		ticket.UserID = uc.UserID
		if ticket.Name == "" {
			ticket.Name = uc.Name
		}
		if ticket.Email == "" {
			ticket.Email = uc.Email
		}
	}

	if err := s.app.Storage.SupportStore().Create(ctx, ticket); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusCreated, map[string]string{
		"ticket_id": ticket.TicketID,
		"status":    ticket.Status,
	})
}

// handleAdminSupportList handles GET /api/admin/support/messages?status=.
func (s *Server) handleAdminSupportList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	tickets, err := s.app.Storage.SupportStore().List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := tickets[:0]
		for _, t := range tickets {
			if t.Status == status {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"count":    len(tickets),
		"messages": tickets,
	})
}

// handleAdminSupportItem handles GET, PATCH and DELETE /api/admin/support/messages/{id}.
func (s *Server) handleAdminSupportItem(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete) {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.SupportStore()
	id := r.PathValue("id")

	ticket, err := store.Get(ctx, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		WriteOK(w, http.StatusOK, ticket)

	case http.MethodPatch:
		var body struct {
			Status *string `json:"status"`
			Notes  *string `json:"notes"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		if body.Status != nil {
			if !models.ValidSupportStatus(*body.Status) {
				WriteErrorWithCode(w, http.StatusBadRequest, "status must be one of pending, in_progress, resolved", "invalid_request")
				return
			}
			ticket.Status = *body.Status
		}
		if body.Notes != nil {
			ticket.Notes = *body.Notes
		}
		if err := store.Save(ctx, ticket); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.app.Audit.Record(ctx, ticket.UserID, common.ResolveUserID(ctx), models.AuditSupportUpdate, ticket.TicketID+" "+ticket.Status)
		WriteOK(w, http.StatusOK, ticket)

	case http.MethodDelete:
		if err := store.Delete(ctx, id); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			s.writeServiceError(w, r, err)
			return
		}
		WriteOK(w, http.StatusOK, map[string]string{"deleted": id})
	}
}
