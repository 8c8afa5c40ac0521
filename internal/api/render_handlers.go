// Package api exposes the rendering engine over HTTP: segment previews,
// replacement-token inspection, and unsubscribe URL construction.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenpress/mailroom/internal/newsletter"
	"github.com/lumenpress/mailroom/internal/pkg/httputil"
	"github.com/lumenpress/mailroom/internal/pkg/logger"
	"github.com/lumenpress/mailroom/internal/rendering"
)

// RenderService handles the preview and URL-building endpoints.
type RenderService struct {
	renderer    *rendering.Renderer
	templates   *rendering.TemplateService
	newsletters *newsletter.Store
}

// NewRenderService creates the service. newsletters may be nil when no
// database is configured; newsletter-scoped previews then degrade to
// defaults.
func NewRenderService(renderer *rendering.Renderer, newsletters *newsletter.Store) *RenderService {
	return &RenderService{
		renderer:    renderer,
		templates:   rendering.NewTemplateService(),
		newsletters: newsletters,
	}
}

// RegisterRoutes registers the render API routes.
func (rs *RenderService) RegisterRoutes(r chi.Router) {
	r.Post("/render/preview", rs.HandlePreview)
	r.Post("/render/replacements", rs.HandleReplacements)
	r.Post("/render/validate", rs.HandleValidate)
	r.Get("/render/unsubscribe-url", rs.HandleUnsubscribeURL)
}

// PreviewRequest is a render-for-segment request. Segment null means the
// null filter (hide every segment-tagged block). Newsletter is the UUID of
// the newsletter whose template settings the preview should carry; an
// unknown or unresolvable newsletter degrades to no settings.
type PreviewRequest struct {
	Subject    string            `json:"subject,omitempty"`
	HTML       string            `json:"html"`
	Plaintext  string            `json:"plaintext,omitempty"`
	Segment    *string           `json:"segment"`
	Post       *PostRef          `json:"post,omitempty"`
	Newsletter string            `json:"newsletter,omitempty"`
	Recipient  map[string]string `json:"recipient,omitempty"`
}

// PostRef mirrors rendering.Post on the wire.
type PostRef struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Visibility string `json:"visibility"`
}

// PreviewResponse carries the rendered bodies, the tokens found in them,
// and the newsletter's template settings when one was requested.
type PreviewResponse struct {
	Subject      string                      `json:"subject,omitempty"`
	HTML         string                      `json:"html"`
	Plaintext    string                      `json:"plaintext,omitempty"`
	Replacements []rendering.Replacement     `json:"replacements"`
	Settings     *rendering.TemplateSettings `json:"settings,omitempty"`
}

// HandlePreview renders an email body pair for a segment. When a recipient
// is supplied, its values are applied to the replacement tokens so the
// preview shows what that member would receive.
func (rs *RenderService) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	email := rendering.Email{
		Subject:   req.Subject,
		HTML:      req.HTML,
		Plaintext: req.Plaintext,
	}
	if req.Post != nil {
		email.Post = &rendering.Post{
			ID:         req.Post.ID,
			Status:     rendering.PostStatus(req.Post.Status),
			Visibility: rendering.PostVisibility(req.Post.Visibility),
		}
	}

	segment := rendering.SegmentNone
	if req.Segment != nil {
		segment = rendering.Segment(*req.Segment)
	}

	out := rs.renderer.RenderForSegment(email, segment)

	resp := PreviewResponse{
		Subject:      out.Subject,
		HTML:         out.HTML,
		Plaintext:    out.Plaintext,
		Replacements: out.Replacements,
	}
	if resp.Replacements == nil {
		resp.Replacements = []rendering.Replacement{}
	}
	if req.Recipient != nil {
		resp.HTML = rendering.ApplyReplacements(resp.HTML, rendering.FormatHTML, out.Replacements, req.Recipient)
		resp.Plaintext = rendering.ApplyReplacements(resp.Plaintext, rendering.FormatPlaintext, out.Replacements, req.Recipient)
		resp.Subject = rs.templates.Render(resp.Subject, liquidContext(req.Recipient))
	}

	if req.Newsletter != "" && rs.newsletters != nil {
		nl, err := rs.newsletters.GetNewsletter(r.Context(), req.Newsletter)
		if err != nil {
			logger.Warn("newsletter lookup failed", "newsletter", req.Newsletter, "error", err.Error())
		} else if nl != nil {
			ts := rs.renderer.TemplateSettings(nl)
			resp.Settings = &ts
		}
	}

	logger.Debug("rendered preview", "segment", string(segment), "replacements", len(out.Replacements))
	httputil.OK(w, resp)
}

// ReplacementsRequest asks which personalization tokens a body pair carries.
type ReplacementsRequest struct {
	HTML      string `json:"html"`
	Plaintext string `json:"plaintext,omitempty"`
}

// HandleReplacements parses replacement tokens without rendering.
func (rs *RenderService) HandleReplacements(w http.ResponseWriter, r *http.Request) {
	var req ReplacementsRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	reps := rendering.ParseReplacements(rendering.Email{HTML: req.HTML, Plaintext: req.Plaintext})
	if reps == nil {
		reps = []rendering.Replacement{}
	}
	httputil.OK(w, map[string]interface{}{"replacements": reps})
}

// ValidateRequest carries a Liquid template source to check.
type ValidateRequest struct {
	Template string `json:"template"`
}

// ValidateResponse reports whether the template parses, and the parse error
// when it does not.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// HandleValidate checks a subject template for Liquid syntax errors without
// rendering it.
func (rs *RenderService) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	if err := rs.templates.Validate(req.Template); err != nil {
		httputil.OK(w, ValidateResponse{Valid: false, Error: err.Error()})
		return
	}
	httputil.OK(w, ValidateResponse{Valid: true})
}

// HandleUnsubscribeURL builds an unsubscribe link. Omitting uuid produces a
// preview link.
func (rs *RenderService) HandleUnsubscribeURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	u := rs.renderer.UnsubscribeURL(q.Get("uuid"), rendering.UnsubscribeOptions{
		NewsletterUUID: q.Get("newsletter"),
		Comments:       q.Get("comments") == "1",
	})
	httputil.OK(w, map[string]string{"url": u})
}

// liquidContext exposes recipient properties to subject templates under
// their short names ({{ first_name }}).
func liquidContext(recipient map[string]string) map[string]interface{} {
	ctx := make(map[string]interface{}, len(recipient))
	for k, v := range recipient {
		if len(k) > len("member_") && k[:len("member_")] == "member_" {
			ctx[k[len("member_"):]] = v
		} else {
			ctx[k] = v
		}
	}
	return ctx
}
