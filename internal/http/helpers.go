package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"batchdesk/internal/core"
	"batchdesk/internal/query"
)

// sanitizeInput removes control characters (except tab and newlines) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// errorStatus maps a repository error to a status code and a message safe to show users.
func errorStatus(err error) (int, string) {
	switch {
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity, "Invalid data: " + err.Error()
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "Batch not found. It may have been deleted already."
	case errors.Is(err, core.ErrConcurrentModification):
		return http.StatusConflict, "The batch sheet changed while saving. Reload and try again."
	case errors.Is(err, core.ErrPersistence), errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusBadGateway, "Could not reach the batch sheet. Please try again."
	default:
		return http.StatusInternalServerError, "Unexpected error"
	}
}

type bar struct {
	Label   string
	Amount  string
	Count   int
	Width   int
	Percent string
}

// bars scales groups against the largest total for the CSS bar charts and
// labels each with its share of total.
func bars(groups []query.Group, total core.Money) []bar {
	maxCents := query.Max(groups).Cents
	out := make([]bar, 0, len(groups))
	for _, g := range groups {
		width := 0
		if maxCents > 0 && g.Total.Cents > 0 {
			width = int((g.Total.Cents*100 + maxCents/2) / maxCents)
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		out = append(out, bar{
			Label:   g.Key,
			Amount:  g.Total.Format(),
			Count:   g.Count,
			Width:   width,
			Percent: strconv.FormatFloat(g.Share(total), 'f', 1, 64) + "%",
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
