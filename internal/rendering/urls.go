package rendering

import (
	"net/url"
	"strings"
)

const signupFragment = "#/portal/signup"

// UnsubscribeOptions carries the optional query parameters of an
// unsubscribe link.
type UnsubscribeOptions struct {
	NewsletterUUID string
	Comments       bool
}

// UnsubscribeURL builds the one-click unsubscribe link for a member.
// Parameter order is fixed: exactly one of preview=1 (no member UUID —
// preview mode) or uuid=<member>, then newsletter=<uuid> when set, then
// comments=1 when set. Query values are built by hand because the order is
// part of the contract.
func UnsubscribeURL(siteURL, memberUUID string, opts UnsubscribeOptions) string {
	params := make([]string, 0, 3)
	if memberUUID == "" {
		params = append(params, "preview=1")
	} else {
		params = append(params, "uuid="+url.QueryEscape(memberUUID))
	}
	if opts.NewsletterUUID != "" {
		params = append(params, "newsletter="+url.QueryEscape(opts.NewsletterUUID))
	}
	if opts.Comments {
		params = append(params, "comments=1")
	}
	return strings.TrimRight(siteURL, "/") + "/unsubscribe/?" + strings.Join(params, "&")
}

// PostSignupURL builds the signup link a paywall CTA points at. Published
// posts land on their own page; email-only posts (status "sent" and friends)
// have no public page and fall back to the site root. Resolution failures
// degrade to the site root as well.
func PostSignupURL(urls URLResolver, post *Post) string {
	target := strings.TrimRight(urls.SiteURL(), "/") + "/"
	if post != nil && post.Status == PostStatusPublished {
		if u := urls.PostURL(post.ID); u != "" {
			target = u
		}
	}
	return target + signupFragment
}
