package rendering

// Renderer binds the pure transforms to their collaborators. It holds no
// mutable state; a single Renderer may serve concurrent renders.
type Renderer struct {
	settings SettingsSource
	urls     URLResolver
	flags    FlagGate
}

// New creates a renderer. flags may be nil, in which case every gated
// behavior is enabled.
func New(settings SettingsSource, urls URLResolver, flags FlagGate) *Renderer {
	return &Renderer{settings: settings, urls: urls, flags: flags}
}

// RenderForSegment produces the email body pair a member of the given
// segment receives, plus the replacement tokens remaining in it. The input
// email is never mutated.
//
// Order of transforms: segment-tagged blocks are filtered first, then the
// paywall truncates gated content for non-entitled segments, then the
// surviving bodies are scanned for replacement tokens.
func (r *Renderer) RenderForSegment(email Email, segment Segment) Rendered {
	html := FilterHTMLForSegment(email.HTML, segment)
	plaintext := FilterPlaintextForSegment(email.Plaintext, segment)

	if r.paywallActive(email.Post) && segment.Free() {
		title := r.settings.Get("title")
		signupURL := PostSignupURL(r.urls, email.Post)
		html = injectPaywall(html, PaywallMarkerHTML, paywallHTML(title, signupURL))
		plaintext = injectPaywall(plaintext, PaywallMarkerPlaintext, paywallPlaintext(title, signupURL))
	}

	out := Email{Subject: email.Subject, HTML: html, Plaintext: plaintext}
	return Rendered{
		Subject:      email.Subject,
		HTML:         html,
		Plaintext:    plaintext,
		Replacements: ParseReplacements(out),
	}
}

// UnsubscribeURL builds a member's unsubscribe link against the site base
// URL. An empty member UUID produces a preview link.
func (r *Renderer) UnsubscribeURL(memberUUID string, opts UnsubscribeOptions) string {
	return UnsubscribeURL(r.urls.SiteURL(), memberUUID, opts)
}

// TemplateSettings flattens the newsletter config and global settings for
// the template.
func (r *Renderer) TemplateSettings(nl NewsletterSource) TemplateSettings {
	return BuildTemplateSettings(nl, r.settings)
}

func (r *Renderer) paywallActive(post *Post) bool {
	if !post.Gated() {
		return false
	}
	return r.flags == nil || r.flags.Enabled(FlagPaywall)
}
