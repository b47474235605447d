// Package http serves the batch dashboard, its JSON API and the xlsx export.
//
// HTMX clients learn about writes through the HX-Trigger header: one event
// naming the batch that changed, a page refresh for the dashboard fragment and
// a toast for the notification area.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HX-Trigger events.
const (
	EventBatchCreated = "batch:created"
	EventBatchUpdated = "batch:updated"
	EventBatchDeleted = "batch:deleted"
	EventPageRefresh  = "page:refresh"
	EventNotification = "show-notification"
)

// NotificationType selects the toast style in app.js.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// toast durations in milliseconds; errors stay up longer.
var toastDuration = map[NotificationType]int{
	NotificationSuccess: 3000,
	NotificationError:   5000,
}

// HTMXResponse collects status, triggers, headers and an HTML fragment and
// writes them in one go.
type HTMXResponse struct {
	status   int
	triggers map[string]any
	header   http.Header
	body     []byte
}

func NewHTMXResponse(status int) *HTMXResponse {
	return &HTMXResponse{
		status:   status,
		triggers: map[string]any{},
		header:   http.Header{},
	}
}

// Trigger adds an event to HX-Trigger. A nil detail is sent as an empty object.
func (r *HTMXResponse) Trigger(event string, detail any) *HTMXResponse {
	if detail == nil {
		detail = struct{}{}
	}
	r.triggers[event] = detail
	return r
}

// Notify raises a toast. Only one toast is carried per response.
func (r *HTMXResponse) Notify(kind NotificationType, message string) *HTMXResponse {
	return r.Trigger(EventNotification, map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": toastDuration[kind],
	})
}

// Redirect makes htmx load path as a full page.
func (r *HTMXResponse) Redirect(path string) *HTMXResponse {
	r.header.Set("HX-Redirect", path)
	return r
}

// Fragment sets an HTML body. text is escaped and wrapped in a div of class.
func (r *HTMXResponse) Fragment(class, text string) *HTMXResponse {
	r.header.Set("Content-Type", "text/html; charset=utf-8")
	role := ""
	if class == "error" {
		role = ` role="alert"`
	}
	r.body = []byte(`<div class="` + class + `"` + role + `>` + template.HTMLEscapeString(text) + `</div>`)
	return r
}

func (r *HTMXResponse) Write(w http.ResponseWriter) {
	for name, values := range r.header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	if len(r.triggers) > 0 {
		if b, err := json.Marshal(r.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(b))
		}
	}
	w.WriteHeader(r.status)
	if len(r.body) > 0 {
		_, _ = w.Write(r.body)
	}
}

// BatchChanged answers a committed write: the batch event with its id, a
// dashboard refresh and a success toast repeating message.
func BatchChanged(status int, event, id, message string) *HTMXResponse {
	return NewHTMXResponse(status).
		Trigger(event, map[string]string{"id": id}).
		Trigger(EventPageRefresh, nil).
		Notify(NotificationSuccess, message).
		Fragment("success", message)
}

// ErrorResponse shows message as an inline alert and an error toast.
func ErrorResponse(status int, message string) *HTMXResponse {
	return NewHTMXResponse(status).
		Notify(NotificationError, message).
		Fragment("error", message)
}
