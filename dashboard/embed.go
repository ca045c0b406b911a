// Package dashboard provides the embedded web UI assets for GradeBoard.
//
// The dashboard is a single HTML page that subscribes to "/api/sse" and
// charts every source snapshot it receives. Embedding it enables
// single-binary deployment without external asset files.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Dashboard page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
