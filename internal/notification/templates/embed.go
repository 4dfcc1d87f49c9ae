package templates

import "embed"

// EmbeddedFS holds one <id>.tmpl file per scenario.
//
//go:embed files/*.tmpl
var EmbeddedFS embed.FS
