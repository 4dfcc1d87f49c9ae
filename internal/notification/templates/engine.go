package templates

import (
	"bytes"
	"context"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"reflect"
	"strings"
	"sync"
	texttmpl "text/template"
)

// Rendered is the materialized e-mail for one scenario.
type Rendered struct {
	Subject   string
	EmailText string
	EmailHTML string
}

// IHandle is a runtime view of a Handle[T].
type IHandle interface {
	ID() string
	DataType() reflect.Type
}

// Handle binds a template ID to the data type it renders.
type Handle[T any] struct {
	id string
}

// Expect creates a typed handle for a template ID (e.g. "auth.otp").
func Expect[T any](id string) Handle[T] { return Handle[T]{id: id} }

func (h Handle[T]) ID() string { return h.id }

func (h Handle[T]) DataType() reflect.Type {
	var zero *T
	return reflect.TypeOf(zero).Elem()
}

// Engine parses scenario files once and caches them. A scenario file defines
// the blocks "subject", "email_text" and optionally "email_html".
type Engine struct {
	fs    fs.FS
	mu    sync.RWMutex
	cache map[string]*compiled
}

type compiled struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

// NewEngine uses the embedded scenarios.
func NewEngine() *Engine {
	return NewEngineFS(EmbeddedFS)
}

// NewEngineFS reads scenarios from files/<id>.tmpl inside fsys.
func NewEngineFS(fsys fs.FS) *Engine {
	return &Engine{fs: fsys, cache: make(map[string]*compiled)}
}

// Render is the typed helper; prefer it over RenderAny in module code.
func Render[T any](ctx context.Context, e *Engine, h Handle[T], data T) (Rendered, error) {
	return e.RenderAny(ctx, h.ID(), data)
}

func (e *Engine) RenderAny(_ context.Context, id string, data any) (Rendered, error) {
	c, err := e.get(id)
	if err != nil {
		return Rendered{}, err
	}

	var out Rendered
	if out.Subject, err = execText(c.text, "subject", data); err != nil {
		return Rendered{}, fmt.Errorf("render subject: %w", err)
	}
	out.Subject = strings.TrimSpace(out.Subject)

	if out.EmailText, err = execText(c.text, "email_text", data); err != nil {
		return Rendered{}, fmt.Errorf("render email_text: %w", err)
	}

	if c.html.Lookup("email_html") != nil {
		var buf bytes.Buffer
		if err := c.html.ExecuteTemplate(&buf, "email_html", data); err != nil {
			return Rendered{}, fmt.Errorf("render email_html: %w", err)
		}
		out.EmailHTML = buf.String()
	}
	return out, nil
}

func (e *Engine) get(id string) (*compiled, error) {
	e.mu.RLock()
	c, ok := e.cache[id]
	e.mu.RUnlock()
	if ok {
		return c, nil
	}

	path := "files/" + id + ".tmpl"
	b, err := fs.ReadFile(e.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read template %q: %w", path, err)
	}
	c, err = parse(id, string(b))
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[id] = c
	e.mu.Unlock()
	return c, nil
}

var funcs = map[string]any{
	"inc": func(i int) int { return i + 1 },
}

func parse(id, content string) (*compiled, error) {
	t, err := texttmpl.New(id).Funcs(funcs).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse text blocks (%s): %w", id, err)
	}
	for _, block := range []string{"subject", "email_text"} {
		if t.Lookup(block) == nil {
			return nil, fmt.Errorf("template %s: missing %q block", id, block)
		}
	}
	h, err := htmltmpl.New(id).Funcs(funcs).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse html block (%s): %w", id, err)
	}
	return &compiled{text: t, html: h}, nil
}

func execText(t *texttmpl.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
