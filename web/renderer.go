// Package web holds the server-rendered pages and their assets.
package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const baseTemplate = "templates/base.html"

// Pages lists every template that can be passed to c.Render.
var Pages = []string{
	"index", "login", "register", "profile",
	"dashboard", "expenses", "analytics", "categories", "export",
}

// Renderer implements echo.Renderer. Each page is parsed together with the
// shared layout, so pages may redefine the "content" block independently.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout and every page from fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	funcs := Funcs()
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, name := range Pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys, baseTemplate, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}

// Funcs are the helpers available inside every template.
func Funcs() template.FuncMap {
	p := message.NewPrinter(language.AmericanEnglish)
	return template.FuncMap{
		"money": func(v any) string {
			switch n := v.(type) {
			case decimal.Decimal:
				return p.Sprintf("$%.2f", n.InexactFloat64())
			case float64:
				return p.Sprintf("$%.2f", n)
			case int64:
				return p.Sprintf("$%.2f", float64(n))
			}
			return fmt.Sprint(v)
		},
		"date": func(v any) string {
			if t, ok := v.(interface{ Format(string) string }); ok {
				return t.Format("Jan 2, 2006")
			}
			return fmt.Sprint(v)
		},
		"monthName": func(m int) string {
			names := []string{"January", "February", "March", "April", "May", "June",
				"July", "August", "September", "October", "November", "December"}
			if m < 1 || m > 12 {
				return ""
			}
			return names[m-1]
		},
		"field": func(form map[string]string, key string) string {
			return form[key]
		},
		"lower": strings.ToLower,
	}
}
