package rendering

import (
	"fmt"
	"html"
	"strings"
)

// Sentinels separating free-visible content from gated content. The HTML
// form is an invisible comment, so entitled recipients can keep it verbatim.
const (
	PaywallMarkerHTML      = "<!--members-only-->"
	PaywallMarkerPlaintext = "---members-only---"
)

// FlagPaywall gates the paywall substitution behind the labs flag of the
// same name.
const FlagPaywall = "paywall"

// paywallHTML renders the subscribe CTA that replaces gated content for
// non-entitled recipients.
func paywallHTML(siteTitle, signupURL string) string {
	return fmt.Sprintf(
		`<div class="paywall"><p>Subscribe to <a href="%s">%s</a> to keep reading this post.</p></div>`,
		signupURL, html.EscapeString(siteTitle),
	)
}

func paywallPlaintext(siteTitle, signupURL string) string {
	return fmt.Sprintf("Subscribe to %s to keep reading this post.\n\n%s", siteTitle, signupURL)
}

// injectPaywall truncates a gated body at its sentinel and appends the CTA.
// The pre-sentinel content is preserved unchanged; when the sentinel is
// absent the body passes through untouched.
func injectPaywall(body, marker, cta string) string {
	idx := strings.Index(body, marker)
	if idx < 0 {
		return body
	}
	return body[:idx] + cta
}
