package web

import (
	"embed"
	"io/fs"
)

//go:embed email_templates
var templateFiles embed.FS

//go:embed catalog.yaml
var CatalogYAML []byte

// TemplatesFS holds correo_cliente.html and correo_admin.html with the
// "email_templates/" prefix stripped.
var TemplatesFS fs.FS

func init() {
	var err error
	TemplatesFS, err = fs.Sub(templateFiles, "email_templates")
	if err != nil {
		panic(err)
	}
}
