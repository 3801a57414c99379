// Package templates renders the dashboard page and its HTMX partials.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// buffer writes markup and keeps the first write error
type buffer struct {
	w   io.Writer
	err error
}

func (b *buffer) raw(s string) {
	if b.err != nil {
		return
	}
	_, b.err = io.WriteString(b.w, s)
}

// text writes s HTML-escaped
func (b *buffer) text(s string) {
	b.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped
func (b *buffer) attr(name, value string) {
	b.raw(" " + name + `="`)
	b.text(value)
	b.raw(`"`)
}

func (b *buffer) int(n int) {
	b.raw(strconv.Itoa(n))
}

func (b *buffer) render(ctx context.Context, c templ.Component) {
	if b.err != nil {
		return
	}
	b.err = c.Render(ctx, b.w)
}

// component adapts a buffered render function to templ.Component
func component(fn func(ctx context.Context, b *buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &buffer{w: w}
		fn(ctx, b)
		return b.err
	})
}

// classes joins the non-empty class names
func classes(names ...string) string {
	out := ""
	for _, n := range names {
		if n == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += n
	}
	return out
}
