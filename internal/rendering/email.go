// Package rendering implements the per-segment email personalization engine:
// segment visibility filtering, paywall substitution, replacement token
// parsing, unsubscribe/signup URL construction, and template settings
// flattening. Everything in this package is a pure transform over its inputs;
// collaborators (settings cache, URL resolution, feature flags) are consumed
// through the interfaces below.
package rendering

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusSent      PostStatus = "sent"
	PostStatusScheduled PostStatus = "scheduled"
)

// PostVisibility controls which audience may read a post.
type PostVisibility string

const (
	VisibilityPublic  PostVisibility = "public"
	VisibilityMembers PostVisibility = "members"
	VisibilityPaid    PostVisibility = "paid"
	VisibilityTiers   PostVisibility = "tiers"
)

// Post is the reference a gated email carries to the post it was built from.
type Post struct {
	ID         string
	Status     PostStatus
	Visibility PostVisibility
}

// Gated reports whether paywall logic applies to the post: it must exist,
// be published, and be limited to a paying audience.
func (p *Post) Gated() bool {
	if p == nil || p.Status != PostStatusPublished {
		return false
	}
	return p.Visibility == VisibilityPaid || p.Visibility == VisibilityTiers
}

// Email is the body pair handed to the renderer. Inputs are never mutated;
// each render produces a new value.
type Email struct {
	Subject   string
	HTML      string
	Plaintext string
	Post      *Post
}

// Segment is a member-audience predicate such as "status:free" or its
// negation "status:-free". SegmentNone (the empty string) stands for the
// null filter: every segment-tagged block is hidden.
type Segment string

const (
	SegmentNone Segment = ""
	SegmentFree Segment = "status:free"
	SegmentPaid Segment = "status:-free"
)

// Free reports whether the segment denotes non-entitled (free) members.
func (s Segment) Free() bool { return s == SegmentFree }

// field, value, negated. "status:-free" → ("status", "free", true).
func (s Segment) parts() (string, string, bool) {
	str := string(s)
	for i := 0; i < len(str); i++ {
		if str[i] == ':' {
			field, val := str[:i], str[i+1:]
			if len(val) > 0 && val[0] == '-' {
				return field, val[1:], true
			}
			return field, val, false
		}
	}
	return str, "", false
}

// Matches reports whether a block tagged with segment s is visible to a
// member whose active filter is f. An exact match always wins. A negated
// block ("status:-free") is additionally visible to any member with a
// concrete status other than the excluded one. A negated filter can never
// prove membership in a concrete block segment, so it only matches its own
// negation exactly.
func (s Segment) Matches(f Segment) bool {
	if f == SegmentNone {
		return false
	}
	if s == f {
		return true
	}
	bField, bVal, bNeg := s.parts()
	fField, fVal, fNeg := f.parts()
	if bField != fField {
		return false
	}
	if bNeg && !fNeg {
		return bVal != fVal
	}
	return false
}

// Rendered is the outcome of a per-segment render: the transformed body pair
// plus the replacement tokens found in it.
type Rendered struct {
	Subject      string
	HTML         string
	Plaintext    string
	Replacements []Replacement
}

// SettingsSource is the global settings cache: key lookup for site-wide
// values (icon, accent_color, title). Missing keys yield "".
type SettingsSource interface {
	Get(key string) string
}

// NewsletterSource is the field-by-field accessor over a newsletter
// configuration object. Missing fields yield "".
type NewsletterSource interface {
	Get(key string) string
}

// URLResolver maps posts and the site itself to public URLs.
type URLResolver interface {
	// PostURL resolves a post's canonical URL, or "" when the post has no
	// public page.
	PostURL(postID string) string
	// SiteURL is the site base URL used for unsubscribe and signup links.
	SiteURL() string
}

// FlagGate gates experimental behavior. A nil gate means everything is on.
type FlagGate interface {
	Enabled(flag string) bool
}
