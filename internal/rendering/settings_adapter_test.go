package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeNewsletter map[string]string

func (f fakeNewsletter) Get(key string) string { return f[key] }

func TestBuildTemplateSettings(t *testing.T) {
	nl := fakeNewsletter{
		"header_image":        "https://example.com/header.jpg",
		"show_header_title":   "true",
		"show_header_name":    "false",
		"show_feature_image":  "true",
		"title_font_category": "serif",
		"title_alignment":     "center",
		"body_font_category":  "sans_serif",
		"show_badge":          "true",
		"footer_content":      "<p>Bye!</p>",
	}
	settings := fakeSettings{
		"icon":         "https://example.com/icon.png",
		"accent_color": "#AB0030",
	}

	got := BuildTemplateSettings(nl, settings)

	assert.Equal(t, "https://example.com/header.jpg", got.HeaderImage)
	assert.True(t, got.ShowHeaderTitle)
	assert.False(t, got.ShowHeaderName)
	assert.True(t, got.ShowFeatureImage)
	assert.Equal(t, "serif", got.TitleFontCategory)
	assert.Equal(t, "center", got.TitleAlignment)
	assert.Equal(t, "sans_serif", got.BodyFontCategory)
	assert.True(t, got.ShowBadge)
	assert.Equal(t, "<p>Bye!</p>", got.FooterContent)
	assert.Equal(t, "#AB0030", got.AccentColor)
	assert.Equal(t, "#AB0030", got.AdjustedAccentColor)
	assert.Equal(t, "#FFFFFF", got.AdjustedAccentContrastColor)
}

// The header icon comes from the global icon setting, never from the
// newsletter's own field, even when both are set.
func TestHeaderIconSourcedFromGlobalSettings(t *testing.T) {
	nl := fakeNewsletter{"show_header_icon": "https://example.com/newsletter-icon.png"}
	settings := fakeSettings{"icon": "https://example.com/site-icon.png"}

	got := BuildTemplateSettings(nl, settings)
	assert.Equal(t, "https://example.com/site-icon.png", got.ShowHeaderIcon)

	// No global icon: header icon is off no matter what the newsletter says.
	got = BuildTemplateSettings(nl, fakeSettings{})
	assert.Equal(t, "", got.ShowHeaderIcon)
}

func TestBuildTemplateSettingsAbsentFields(t *testing.T) {
	got := BuildTemplateSettings(fakeNewsletter{}, fakeSettings{})

	assert.Equal(t, "", got.HeaderImage)
	assert.False(t, got.ShowHeaderTitle)
	assert.False(t, got.ShowBadge)
	assert.Equal(t, "", got.AccentColor)
	// Unset accent degrades to a white contrast, never an error.
	assert.Equal(t, "#FFFFFF", got.AdjustedAccentContrastColor)
}

func TestFooterContentSanitized(t *testing.T) {
	nl := fakeNewsletter{
		"footer_content": `<p>Bye <script>alert(1)</script><a href="https://example.com">link</a></p>`,
	}
	got := BuildTemplateSettings(nl, fakeSettings{})

	assert.NotContains(t, got.FooterContent, "<script>")
	assert.Contains(t, got.FooterContent, `<a href="https://example.com"`)
	assert.Contains(t, got.FooterContent, "Bye")
}
