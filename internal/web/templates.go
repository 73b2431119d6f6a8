package web

import (
	"embed"
	"html/template"
	"io"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateProvider abstracts template loading and execution.
// Production uses EmbeddedTemplateProvider.
type TemplateProvider interface {
	ExecuteTemplate(w io.Writer, name string, data interface{}) error
}

// EmbeddedTemplateProvider parses templates from the embedded FS once and
// caches them.
type EmbeddedTemplateProvider struct {
	fs      embed.FS
	baseDir string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewEmbeddedTemplateProvider creates a provider with the given embedded FS.
func NewEmbeddedTemplateProvider(embedFS embed.FS, baseDir string) *EmbeddedTemplateProvider {
	return &EmbeddedTemplateProvider{
		fs:      embedFS,
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
	content, err := p.fs.ReadFile(path)
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
