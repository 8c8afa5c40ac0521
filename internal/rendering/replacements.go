package rendering

import (
	"regexp"
	"strings"
)

// FormatHTML and FormatPlaintext identify which body a replacement token was
// found in.
const (
	FormatHTML      = "html"
	FormatPlaintext = "plaintext"
)

// Replacement is one personalization placeholder found in an email body,
// resolved per recipient at send time.
type Replacement struct {
	Format   string // "html" or "plaintext"
	Token    string // the literal placeholder, e.g. %%{first_name}%%
	Property string // recipient property it resolves to, e.g. member_first_name
	Fallback string // optional fallback when the recipient value is empty
}

// %%{first_name}%% or %%{first_name, "there"}%%
var replacementPattern = regexp.MustCompile(`%%\{([^}]*)\}%%`)

// Names recipients may be addressed by. Anything else found in a token is
// ignored, not an error.
var allowedReplacements = map[string]bool{
	"first_name": true,
	"uuid":       true,
}

// ParseReplacements scans both bodies for %%{name}%% tokens and returns one
// Replacement per occurrence whose name is on the allow-list. The html body
// is scanned before the plaintext body; within a body, tokens appear in
// document order. Zero matches is a valid, empty result.
func ParseReplacements(email Email) []Replacement {
	var reps []Replacement
	reps = appendReplacements(reps, FormatHTML, email.HTML)
	reps = appendReplacements(reps, FormatPlaintext, email.Plaintext)
	return reps
}

func appendReplacements(reps []Replacement, format, body string) []Replacement {
	for _, m := range replacementPattern.FindAllStringSubmatch(body, -1) {
		name, fallback := splitTokenArgs(m[1])
		if !allowedReplacements[name] {
			continue
		}
		reps = append(reps, Replacement{
			Format:   format,
			Token:    m[0],
			Property: "member_" + name,
			Fallback: fallback,
		})
	}
	return reps
}

// splitTokenArgs splits the token interior into the property name and an
// optional quoted fallback: `first_name, "there"` → ("first_name", "there").
func splitTokenArgs(inner string) (string, string) {
	name := inner
	fallback := ""
	if i := strings.IndexByte(inner, ','); i >= 0 {
		name = inner[:i]
		fallback = strings.Trim(strings.TrimSpace(inner[i+1:]), `"'`)
	}
	return strings.TrimSpace(name), fallback
}

// ApplyReplacements substitutes every occurrence of the given replacements'
// tokens in body with the recipient's value for the replacement property,
// falling back to the token's fallback when the value is empty. Only
// replacements of the matching format are applied.
func ApplyReplacements(body, format string, reps []Replacement, recipient map[string]string) string {
	for _, rep := range reps {
		if rep.Format != format {
			continue
		}
		val := recipient[rep.Property]
		if val == "" {
			val = rep.Fallback
		}
		body = strings.ReplaceAll(body, rep.Token, val)
	}
	return body
}
