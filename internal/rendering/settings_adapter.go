package rendering

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// TemplateSettings is the flat projection of a newsletter configuration plus
// global site settings that the email template consumes. It has no lifecycle
// of its own and is recomputed per render.
type TemplateSettings struct {
	HeaderImage string
	// ShowHeaderIcon carries the site icon URL from global settings; empty
	// disables the header icon. It is deliberately sourced from the global
	// icon setting and never from the newsletter's own field.
	ShowHeaderIcon              string
	ShowHeaderTitle             bool
	ShowHeaderName              bool
	ShowFeatureImage            bool
	TitleFontCategory           string
	TitleAlignment              string
	BodyFontCategory            string
	ShowBadge                   bool
	FooterContent               string
	AccentColor                 string
	AdjustedAccentColor         string
	AdjustedAccentContrastColor string
}

var (
	footerPolicy     *bluemonday.Policy
	footerPolicyOnce sync.Once
)

// footer content is member-facing HTML a site owner typed in; allow basic
// formatting and links, strip everything else.
func sanitizeFooter(s string) string {
	footerPolicyOnce.Do(func() {
		footerPolicy = bluemonday.NewPolicy()
		footerPolicy.AllowStandardURLs()
		footerPolicy.AllowElements("p", "br", "strong", "b", "em", "i", "a", "span")
		footerPolicy.AllowAttrs("href").OnElements("a")
	})
	return footerPolicy.Sanitize(s)
}

// BuildTemplateSettings flattens a newsletter config and the global settings
// into the render-settings shape. Absent fields yield zero values; nothing
// here can fail.
func BuildTemplateSettings(nl NewsletterSource, settings SettingsSource) TemplateSettings {
	accent := settings.Get("accent_color")
	return TemplateSettings{
		HeaderImage:                 nl.Get("header_image"),
		ShowHeaderIcon:              settings.Get("icon"),
		ShowHeaderTitle:             nl.Get("show_header_title") == "true",
		ShowHeaderName:              nl.Get("show_header_name") == "true",
		ShowFeatureImage:            nl.Get("show_feature_image") == "true",
		TitleFontCategory:           nl.Get("title_font_category"),
		TitleAlignment:              nl.Get("title_alignment"),
		BodyFontCategory:            nl.Get("body_font_category"),
		ShowBadge:                   nl.Get("show_badge") == "true",
		FooterContent:               sanitizeFooter(nl.Get("footer_content")),
		AccentColor:                 accent,
		AdjustedAccentColor:         AdjustedAccentColor(accent),
		AdjustedAccentContrastColor: AccentContrastColor(accent),
	}
}
