// Package assets embeds the static files used at runtime.
package assets

import "embed"

// FS holds email templates and the common passwords list.
//
//go:embed all:templates common-passwords.txt
var FS embed.FS

const CommonPasswordsFile = "common-passwords.txt"
