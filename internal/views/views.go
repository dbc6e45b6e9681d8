// Package views embeds the HTML templates of the profile pages and
// certificate documents.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
)

// Layout wraps full pages; partials render without it.
const Layout = "layouts/main"

//go:embed templates
var templates embed.FS

// New builds the template engine over the embedded templates.
func New() *html.Engine {
	root, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(fmt.Sprintf("views: %v", err))
	}

	engine := html.NewFileSystem(http.FS(root), ".html")
	engine.AddFuncMap(template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 January 2006 15:04")
		},
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v)
		},
		"add": func(a, b int) int {
			return a + b
		},
	})
	return engine
}
