// Package newsletter provides the newsletter configuration accessor and the
// post URL resolution the rendering engine consumes, backed by Postgres.
package newsletter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Newsletter is one newsletter's configuration row. The rendering engine
// reads it field by field through Get; unknown fields yield "".
type Newsletter struct {
	ID                uuid.UUID
	UUID              string
	Name              string
	SenderName        string
	SenderEmail       string
	HeaderImage       string
	ShowHeaderIcon    bool
	ShowHeaderTitle   bool
	ShowHeaderName    bool
	ShowFeatureImage  bool
	TitleFontCategory string
	TitleAlignment    string
	BodyFontCategory  string
	ShowBadge         bool
	FooterContent     string
}

// Get returns a field by its snake_case name, as a string. Booleans come
// back as "true"/"false" so the template settings adapter can consume them
// uniformly.
func (n *Newsletter) Get(key string) string {
	if n == nil {
		return ""
	}
	switch key {
	case "name":
		return n.Name
	case "sender_name":
		return n.SenderName
	case "sender_email":
		return n.SenderEmail
	case "header_image":
		return n.HeaderImage
	case "show_header_icon":
		return boolField(n.ShowHeaderIcon)
	case "show_header_title":
		return boolField(n.ShowHeaderTitle)
	case "show_header_name":
		return boolField(n.ShowHeaderName)
	case "show_feature_image":
		return boolField(n.ShowFeatureImage)
	case "title_font_category":
		return n.TitleFontCategory
	case "title_alignment":
		return n.TitleAlignment
	case "body_font_category":
		return n.BodyFontCategory
	case "show_badge":
		return boolField(n.ShowBadge)
	case "footer_content":
		return n.FooterContent
	default:
		return ""
	}
}

func boolField(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Store reads newsletters and posts from Postgres.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const newsletterColumns = `id, uuid, name, sender_name, sender_email, header_image,
	show_header_icon, show_header_title, show_header_name, show_feature_image,
	title_font_category, title_alignment, body_font_category, show_badge, footer_content`

// GetNewsletter loads a newsletter by its UUID. A missing row returns
// (nil, nil) so callers can degrade instead of branching on error strings.
func (s *Store) GetNewsletter(ctx context.Context, newsletterUUID string) (*Newsletter, error) {
	query := `SELECT ` + newsletterColumns + ` FROM newsletters WHERE uuid = $1`

	var n Newsletter
	err := s.db.QueryRowContext(ctx, query, newsletterUUID).Scan(
		&n.ID, &n.UUID, &n.Name, &n.SenderName, &n.SenderEmail, &n.HeaderImage,
		&n.ShowHeaderIcon, &n.ShowHeaderTitle, &n.ShowHeaderName, &n.ShowFeatureImage,
		&n.TitleFontCategory, &n.TitleAlignment, &n.BodyFontCategory, &n.ShowBadge, &n.FooterContent,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get newsletter %s: %w", newsletterUUID, err)
	}
	return &n, nil
}

// PostSlug resolves a post's URL slug, or "" when the post does not exist or
// has no public page.
func (s *Store) PostSlug(ctx context.Context, postID string) (string, error) {
	var slug string
	err := s.db.QueryRowContext(ctx,
		`SELECT slug FROM posts WHERE id = $1 AND status = 'published'`, postID,
	).Scan(&slug)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get post slug %s: %w", postID, err)
	}
	return slug, nil
}
