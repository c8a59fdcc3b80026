// Package templates carries the embedded documents rendered into deployment
// packages.
package templates

import "embed"

//go:embed readme.hbs
var Docs embed.FS

const ReadmeTemplatePath = "readme.hbs"
