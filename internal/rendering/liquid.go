package rendering

import (
	"crypto/md5"
	"fmt"
	"html"
	"net/url"
	"sync"

	"github.com/osteele/liquid"

	"github.com/lumenpress/mailroom/internal/pkg/logger"
)

// TemplateService renders Liquid templates carried in subject lines and
// custom CTA text ({{ first_name | default: "there" }}). Rendering is lax:
// a template that fails to parse or render comes back unchanged, matching
// the silent-degradation contract of the rest of the engine.
type TemplateService struct {
	engine *liquid.Engine
	cache  sync.Map // md5 of source → *liquid.Template
}

// NewTemplateService creates a template service with the engine's custom
// filters registered.
func NewTemplateService() *TemplateService {
	ts := &TemplateService{engine: liquid.NewEngine()}
	ts.registerFilters()
	return ts
}

func (ts *TemplateService) registerFilters() {
	// Fallback value: {{ first_name | default: "there" }}
	ts.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	// URL encode: {{ email | urlencode }}
	ts.engine.RegisterFilter("urlencode", func(s string) string {
		return url.QueryEscape(s)
	})

	// HTML escape: {{ name | escape }}
	ts.engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})
}

// Render processes a Liquid template with the given context. Parsed
// templates are cached by content hash so per-recipient renders of the same
// source reuse one parse.
func (ts *TemplateService) Render(source string, ctx map[string]interface{}) string {
	key := fmt.Sprintf("%x", md5.Sum([]byte(source)))
	if cached, ok := ts.cache.Load(key); ok {
		return ts.renderParsed(cached.(*liquid.Template), source, ctx)
	}

	tpl, err := ts.engine.ParseString(source)
	if err != nil {
		logger.Warn("liquid parse failed, returning source", "error", err.Error())
		return source
	}
	ts.cache.Store(key, tpl)
	return ts.renderParsed(tpl, source, ctx)
}

func (ts *TemplateService) renderParsed(tpl *liquid.Template, source string, ctx map[string]interface{}) string {
	out, err := tpl.RenderString(ctx)
	if err != nil {
		logger.Warn("liquid render failed, returning source", "error", err.Error())
		return source
	}
	return out
}

// Validate reports whether a template parses, for preview-time feedback.
func (ts *TemplateService) Validate(source string) error {
	_, err := ts.engine.ParseString(source)
	return err
}
