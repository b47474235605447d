// Package web holds the dashboard templates and static assets, compiled into
// the binary so batchdesk runs from a single file.
package web

import "embed"

// TemplatesFS holds index.html, login.html and the dashboard/edit_form partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds app.js and app.css, served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
