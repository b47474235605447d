package http

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"batchdesk/internal/auth"
	"batchdesk/internal/core"
	"batchdesk/internal/export"
	applog "batchdesk/internal/log"
	"batchdesk/internal/query"
)

type batchRow struct {
	ID       string
	Name     string
	Category string
	Price    string
	Date     string
	Class    string
}

type dashboardView struct {
	Username        string
	Criteria        query.Criteria
	ExportURL       string
	CategoryOptions []string
	ClassOptions    []string
	Rows            []batchRow
	Count           int
	Total           string
	RevenueTitle    string
	RevenueBars     []bar
	ClassBars       []bar
	Categories      []string
	Today           string
	Error           string
}

// filtered runs the query pipeline over the current table. A failed load
// yields an empty list and the error, so the page can still render.
func (s *Server) filtered(ctx context.Context, c query.Criteria) ([]core.Batch, query.Criteria, []core.Batch, error) {
	batches, err := s.repo.List(ctx)
	if err != nil {
		batches = nil
	}
	searched := query.Search(batches, c.Search)
	c = query.Normalize(searched, c)
	out := query.FilterByClass(query.FilterByCategory(searched, c.Category), c.Class)
	return out, c, searched, err
}

func (s *Server) dashboard(r *http.Request) dashboardView {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	batches, c, searched, err := s.filtered(ctx, ParseCriteria(r.URL.Query()))
	view := dashboardView{
		Criteria:        c,
		ExportURL:       exportURL(c),
		CategoryOptions: query.CategoryOptions(searched),
		ClassOptions:    query.ClassOptions(searched, c.Category),
		Categories:      s.repo.Catalog().Names(),
		Today:           time.Now().Format(core.DateLayout),
		RevenueTitle:    "Revenue by category",
	}
	if sess, ok := auth.FromContext(ctx); ok {
		view.Username = sess.Username
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load batches", applog.FieldError, err, applog.FieldOperation, applog.OpList)
		_, view.Error = errorStatus(err)
	}

	summary := query.Summarize(batches)
	view.Count = summary.Count
	view.Total = summary.Total.Format()
	if c.Category != query.AllCategories {
		view.RevenueTitle = "Revenue by batch (" + c.Category + ")"
	}
	view.RevenueBars = bars(query.RevenueChart(batches, c.Category), summary.Total)
	view.ClassBars = bars(query.AggregateRevenueBy(batches, query.ByClass), summary.Total)

	view.Rows = make([]batchRow, 0, len(batches))
	for _, b := range batches {
		view.Rows = append(view.Rows, batchRow{
			ID:       b.ID,
			Name:     b.Name,
			Category: b.Category,
			Price:    b.Price.Format(),
			Date:     b.Date.String(),
			Class:    b.ClassGrade,
		})
	}
	return view
}

// handleIndex renders the dashboard. HTMX refreshes get only the dashboard fragment.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	name := "index.html"
	if r.Header.Get("HX-Request") == "true" {
		name = "dashboard"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, s.dashboard(r)); err != nil {
		logger.ErrorContext(r.Context(), "Dashboard template execution failed",
			applog.FieldError, err, "template", name, applog.FieldOperation, applog.OpRender)
	}
}

func exportURL(c query.Criteria) string {
	if q := CriteriaQuery(c); q != "" {
		return "/export?" + q
	}
	return "/export"
}

type batchJSON struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Price      float64 `json:"price"`
	PriceCents int64   `json:"price_cents"`
	Date       string  `json:"date"`
	Class      string  `json:"class"`
}

func toBatchJSON(b core.Batch) batchJSON {
	return batchJSON{
		ID:         b.ID,
		Name:       b.Name,
		Category:   b.Category,
		Price:      b.Price.Rupees(),
		PriceCents: b.Price.Cents,
		Date:       b.Date.String(),
		Class:      b.ClassGrade,
	}
}

type batchesResponse struct {
	Batches         []batchJSON `json:"batches"`
	Count           int         `json:"count"`
	TotalCents      int64       `json:"total_cents"`
	Total           string      `json:"total"`
	Category        string      `json:"category"`
	Class           string      `json:"class"`
	CategoryOptions []string    `json:"category_options"`
	ClassOptions    []string    `json:"class_options"`
}

// handleAPIBatches returns the filtered list with its summary and selector options.
func (s *Server) handleAPIBatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	batches, c, searched, err := s.filtered(ctx, ParseCriteria(r.URL.Query()))
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to load batches", applog.FieldError, err, applog.FieldOperation, applog.OpList)
		status, msg := errorStatus(err)
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	summary := query.Summarize(batches)
	resp := batchesResponse{
		Batches:         make([]batchJSON, 0, len(batches)),
		Count:           summary.Count,
		TotalCents:      summary.Total.Cents,
		Total:           summary.Total.Format(),
		Category:        c.Category,
		Class:           c.Class,
		CategoryOptions: query.CategoryOptions(searched),
		ClassOptions:    query.ClassOptions(searched, c.Category),
	}
	for _, b := range batches {
		resp.Batches = append(resp.Batches, toBatchJSON(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExport streams the filtered list as an xlsx download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	batches, _, _, err := s.filtered(ctx, ParseCriteria(r.URL.Query()))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load batches for export", applog.FieldError, err, applog.FieldOperation, applog.OpExport)
		status, msg := errorStatus(err)
		http.Error(w, msg, status)
		return
	}
	data, err := export.ToSpreadsheet(batches)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build spreadsheet", applog.FieldError, err, applog.FieldOperation, applog.OpExport)
		http.Error(w, "Could not build the export", http.StatusInternalServerError)
		return
	}

	atomic.AddInt64(&s.appMetrics.exports, 1)
	logger.InfoContext(ctx, "Batches exported", applog.FieldRows, len(batches), applog.FieldOperation, applog.OpExport)

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
