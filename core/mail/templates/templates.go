package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"os"
	"path"
	"strings"
	texttemplate "text/template"

	"github.com/postwave/mailkit/core/mail"
)

//go:embed builtin
var builtinFS embed.FS

// Renderer loads templates from a directory and renders them with a data
// map. It is stateless beyond the configured root: every Render call
// re-reads the template file, so edits take effect without restarts.
type Renderer struct {
	fsys fs.FS
}

// New creates a renderer rooted at dir.
func New(dir string) *Renderer {
	return &Renderer{fsys: os.DirFS(dir)}
}

// NewFS creates a renderer over an arbitrary filesystem, e.g. an embed.FS.
func NewFS(fsys fs.FS) *Renderer {
	return &Renderer{fsys: fsys}
}

// Builtin returns a renderer over the templates shipped with the module:
// welcome.html, welcome.txt, password_reset.html, password_reset.txt.
func Builtin() *Renderer {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		// The embedded tree always contains "builtin".
		panic(err)
	}
	return &Renderer{fsys: sub}
}

// Render loads the named template and executes it with data. Templates with
// an .html or .htm extension render through html/template with contextual
// autoescaping; everything else goes through text/template. An unresolved
// variable fails the whole render: no partial output is ever returned.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("%w: invalid template name %q", mail.ErrTemplateNotFound, name)
	}

	raw, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", mail.ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("%w: %q: %v", mail.ErrTemplateNotFound, name, err)
	}

	return execute(name, string(raw), isHTML(name), data)
}

// RenderString renders an inline template string with data. Always uses
// text/template; inline templates are used for subject lines, not markup.
func (r *Renderer) RenderString(tmpl string, data map[string]any) (string, error) {
	return execute("inline", tmpl, false, data)
}

// RenderEmail renders the named body template plus a subject for it.
// The subject comes from subjectTmpl when given, otherwise from a "subject"
// key in data, otherwise the literal "No Subject".
func (r *Renderer) RenderEmail(name, subjectTmpl string, data map[string]any) (subject, body string, err error) {
	body, err = r.Render(name, data)
	if err != nil {
		return "", "", err
	}

	switch {
	case subjectTmpl != "":
		subject, err = r.RenderString(subjectTmpl, data)
		if err != nil {
			return "", "", err
		}
	default:
		if s, ok := data["subject"].(string); ok && s != "" {
			subject = s
		} else {
			subject = "No Subject"
		}
	}
	return subject, body, nil
}

func isHTML(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

func execute(name, raw string, html bool, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if html {
		t, err := htmltemplate.New(name).Option("missingkey=error").Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", mail.ErrTemplateRender, name, err)
		}
		if err := t.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("%w: %q: %v", mail.ErrTemplateRender, name, err)
		}
	} else {
		t, err := texttemplate.New(name).Option("missingkey=error").Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", mail.ErrTemplateRender, name, err)
		}
		if err := t.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("%w: %q: %v", mail.ErrTemplateRender, name, err)
		}
	}
	return buf.String(), nil
}
