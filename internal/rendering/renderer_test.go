package rendering

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSettings map[string]string

func (f fakeSettings) Get(key string) string { return f[key] }

type fakeFlags map[string]bool

func (f fakeFlags) Enabled(flag string) bool { return f[flag] }

func testRenderer() *Renderer {
	return New(
		fakeSettings{"title": "The Daily Dispatch", "accent_color": "#15212A", "icon": "https://example.com/icon.png"},
		fakeURLs{site: testSiteURL, posts: map[string]string{"p1": "https://example.com/my-post/"}},
		fakeFlags{FlagPaywall: true},
	)
}

func gatedEmail(visibility PostVisibility, status PostStatus) Email {
	return Email{
		HTML:      "<p>free part</p>" + PaywallMarkerHTML + "<p>members part</p>",
		Plaintext: "free part\n" + PaywallMarkerPlaintext + "\nmembers part",
		Post:      &Post{ID: "p1", Status: status, Visibility: visibility},
	}
}

func TestRenderForSegmentPaywall(t *testing.T) {
	r := testRenderer()

	t.Run("free segment gets CTA for paid post", func(t *testing.T) {
		got := r.RenderForSegment(gatedEmail(VisibilityPaid, PostStatusPublished), SegmentFree)
		assert.Contains(t, got.HTML, "free part")
		assert.Contains(t, got.HTML, "Subscribe to")
		assert.Contains(t, got.HTML, "#/portal/signup")
		assert.NotContains(t, got.HTML, "members part")
		assert.Contains(t, got.Plaintext, "Subscribe to The Daily Dispatch")
		assert.NotContains(t, got.Plaintext, "members part")
	})

	t.Run("free segment gets CTA for tiers post", func(t *testing.T) {
		got := r.RenderForSegment(gatedEmail(VisibilityTiers, PostStatusPublished), SegmentFree)
		assert.Contains(t, got.HTML, "Subscribe to")
		assert.NotContains(t, got.HTML, "members part")
	})

	t.Run("paid segment keeps body verbatim", func(t *testing.T) {
		email := gatedEmail(VisibilityPaid, PostStatusPublished)
		got := r.RenderForSegment(email, SegmentPaid)
		assert.Equal(t, email.HTML, got.HTML)
		assert.Equal(t, email.Plaintext, got.Plaintext)
	})

	t.Run("public post untouched for any segment", func(t *testing.T) {
		email := gatedEmail(VisibilityPublic, PostStatusPublished)
		got := r.RenderForSegment(email, SegmentFree)
		assert.Equal(t, email.HTML, got.HTML)
		assert.Equal(t, email.Plaintext, got.Plaintext)
	})

	t.Run("unpublished post untouched", func(t *testing.T) {
		email := gatedEmail(VisibilityPaid, PostStatusDraft)
		got := r.RenderForSegment(email, SegmentFree)
		assert.Equal(t, email.HTML, got.HTML)
	})

	t.Run("missing post disables paywall", func(t *testing.T) {
		email := gatedEmail(VisibilityPaid, PostStatusPublished)
		email.Post = nil
		got := r.RenderForSegment(email, SegmentFree)
		assert.Equal(t, email.HTML, got.HTML)
		assert.Equal(t, email.Plaintext, got.Plaintext)
	})

	t.Run("signup url ends with portal fragment", func(t *testing.T) {
		got := r.RenderForSegment(gatedEmail(VisibilityPaid, PostStatusPublished), SegmentFree)
		assert.Contains(t, got.HTML, `href="https://example.com/my-post/#/portal/signup"`)
	})
}

func TestRenderForSegmentPaywallFlagOff(t *testing.T) {
	r := New(
		fakeSettings{"title": "The Daily Dispatch"},
		fakeURLs{site: testSiteURL},
		fakeFlags{}, // paywall flag not set
	)
	email := gatedEmail(VisibilityPaid, PostStatusPublished)
	got := r.RenderForSegment(email, SegmentFree)
	assert.Equal(t, email.HTML, got.HTML)
}

func TestRenderForSegmentNilFlagGate(t *testing.T) {
	r := New(fakeSettings{"title": "T"}, fakeURLs{site: testSiteURL}, nil)
	got := r.RenderForSegment(gatedEmail(VisibilityPaid, PostStatusPublished), SegmentFree)
	assert.Contains(t, got.HTML, "Subscribe to")
}

func TestRenderForSegmentCombinesFilterAndReplacements(t *testing.T) {
	r := testRenderer()
	email := Email{
		HTML:      `Hey %%{first_name}%%,` + segmentedHTML,
		Plaintext: "Hey %%{first_name}%%,",
	}

	got := r.RenderForSegment(email, SegmentFree)
	assert.Equal(t, `Hey %%{first_name}%%,hello<div> free users!</div>`, got.HTML)
	if assert.Len(t, got.Replacements, 2) {
		assert.Equal(t, FormatHTML, got.Replacements[0].Format)
		assert.Equal(t, "member_first_name", got.Replacements[0].Property)
		assert.Equal(t, FormatPlaintext, got.Replacements[1].Format)
	}
}

func TestRenderForSegmentDoesNotMutateInput(t *testing.T) {
	email := gatedEmail(VisibilityPaid, PostStatusPublished)
	htmlBefore, textBefore := email.HTML, email.Plaintext

	r := testRenderer()
	out := r.RenderForSegment(email, SegmentFree)

	assert.Equal(t, htmlBefore, email.HTML)
	assert.Equal(t, textBefore, email.Plaintext)
	assert.False(t, strings.Contains(out.HTML, "members part"))
}

func TestRendererUnsubscribeURL(t *testing.T) {
	r := testRenderer()
	assert.Equal(t, "https://example.com/unsubscribe/?preview=1", r.UnsubscribeURL("", UnsubscribeOptions{}))
	assert.Equal(t, "https://example.com/unsubscribe/?uuid=m1", r.UnsubscribeURL("m1", UnsubscribeOptions{}))
}
