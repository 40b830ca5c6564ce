package dashboard

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"sync"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// TemplateProvider loads and executes page templates.
// Production uses EmbeddedTemplateProvider; tests can supply their own.
type TemplateProvider interface {
	GetTemplate(name string) (*template.Template, error)
	ExecuteTemplate(w io.Writer, name string, data interface{}) error
}

// EmbeddedTemplateProvider parses templates from an embedded filesystem once
// and caches them.
type EmbeddedTemplateProvider struct {
	fs      fs.FS
	baseDir string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewEmbeddedTemplateProvider creates a provider over fsys. A nil fsys uses
// the templates compiled into the binary.
func NewEmbeddedTemplateProvider(fsys fs.FS, baseDir string) *EmbeddedTemplateProvider {
	if fsys == nil {
		fsys, baseDir = embeddedTemplates, "templates"
	}
	return &EmbeddedTemplateProvider{
		fs:      fsys,
		baseDir: baseDir,
		cache:   make(map[string]*template.Template),
	}
}

// GetTemplate parses and caches a template.
func (p *EmbeddedTemplateProvider) GetTemplate(name string) (*template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.cache[name]; ok {
		return t, nil
	}

	path := name
	if p.baseDir != "" {
		path = p.baseDir + "/" + name
	}
	content, err := fs.ReadFile(p.fs, path)
	if err != nil {
		return nil, err
	}
	t, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, err
	}
	p.cache[name] = t
	return t, nil
}

// ExecuteTemplate loads and executes a template.
func (p *EmbeddedTemplateProvider) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	t, err := p.GetTemplate(name)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}
