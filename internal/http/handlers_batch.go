package http

import (
	"fmt"
	"net/http"
	"sync/atomic"

	applog "batchdesk/internal/log"
)

// writeFailure answers a failed read or write in the caller's format.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := errorStatus(err)
	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.LogError(r.Context(), "Batch operation failed", err, op, applog.NewFields())
	} else {
		logger.WarnContext(r.Context(), "Batch operation rejected",
			applog.FieldOperation, op, applog.FieldStatusCode, status, applog.FieldError, err)
	}
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	ErrorResponse(status, msg).Write(w)
}

// writeSuccess finishes a successful write: HTMX gets triggers, JSON clients a
// document, plain form posts a redirect back to the dashboard.
func (s *Server) writeSuccess(w http.ResponseWriter, r *http.Request, status int, resp *HTMXResponse, payload any) {
	switch {
	case r.Header.Get("HX-Request") == "true":
		resp.Write(w)
	case wantsJSON(r):
		writeJSON(w, status, payload)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Parse body error", applog.FieldError, err)
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w)
		return
	}
	in, err := ParseNewBatch(p)
	if err != nil {
		s.writeFailure(w, r, applog.OpCreate, err)
		return
	}
	b, err := s.repo.Add(r.Context(), in)
	if err != nil {
		s.writeFailure(w, r, applog.OpCreate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.created, 1)

	msg := fmt.Sprintf("Batch added: %s (%s, %s)", b.Name, b.Category, b.Price.Format())
	resp := BatchChanged(http.StatusCreated, EventBatchCreated, b.ID, msg)
	s.writeSuccess(w, r, http.StatusCreated, resp, toBatchJSON(b))
}

// handleEditBatchForm renders the edit form partial for one batch.
func (s *Server) handleEditBatchForm(w http.ResponseWriter, r *http.Request) {
	b, err := s.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, applog.OpRead, err)
		return
	}
	if s.templates == nil {
		ErrorResponse(http.StatusInternalServerError, "templates not loaded").Write(w)
		return
	}
	view := struct {
		ID, Name, Category, Price, Date, Class string
	}{
		ID:       b.ID,
		Name:     b.Name,
		Category: b.Category,
		Price:    b.Price.Decimal(),
		Date:     b.Date.String(),
		Class:    b.ClassGrade,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "edit_form", view); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Edit form template execution failed",
			applog.FieldError, err, applog.FieldBatchID, b.ID)
	}
}

func (s *Server) handleUpdateBatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w)
		return
	}
	patch, err := ParseBatchPatch(p)
	if err != nil {
		s.writeFailure(w, r, applog.OpUpdate, err)
		return
	}
	if err := s.repo.Update(r.Context(), id, patch); err != nil {
		s.writeFailure(w, r, applog.OpUpdate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.updated, 1)

	resp := BatchChanged(http.StatusOK, EventBatchUpdated, id, "Batch updated")
	s.writeSuccess(w, r, http.StatusOK, resp, map[string]string{"id": id, "status": "updated"})
}

func (s *Server) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.writeFailure(w, r, applog.OpDelete, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.deleted, 1)

	resp := BatchChanged(http.StatusOK, EventBatchDeleted, id, "Batch deleted")
	s.writeSuccess(w, r, http.StatusOK, resp, map[string]string{"id": id, "status": "deleted"})
}
