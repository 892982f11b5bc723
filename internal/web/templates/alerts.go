// Package templates renders the HTML fragments returned to HTMX clients.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders a dismissible error box with the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<div class="alert alert-error" role="alert">`)
		p.tag("p", "alert-message", message)
		if action != "" {
			p.tag("p", "alert-action", action)
		}
		if code != "" {
			p.tag("p", "alert-code", "Code: "+code)
		}
		p.raw(`</div>`)
		return p.err
	})
}

// printer writes HTML and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// text writes s HTML-escaped.
func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

// tag writes <name class="class">text</name>.
func (p *printer) tag(name, class, text string) {
	p.raw("<" + name)
	if class != "" {
		p.raw(` class="` + templ.EscapeString(class) + `"`)
	}
	p.raw(">")
	p.text(text)
	p.raw("</" + name + ">")
}
