package newsletter

import (
	"context"
	"strings"
	"time"

	"github.com/lumenpress/mailroom/internal/pkg/logger"
)

// URLService implements the rendering engine's URL resolver over the store.
// Lookups are synchronous; failures degrade to "" (the renderer falls back
// to the site root).
type URLService struct {
	store   *Store
	siteURL string
	timeout time.Duration
}

// NewURLService creates a resolver against the given site base URL.
func NewURLService(store *Store, siteURL string) *URLService {
	return &URLService{
		store:   store,
		siteURL: strings.TrimRight(siteURL, "/"),
		timeout: 500 * time.Millisecond,
	}
}

// SiteURL returns the site base URL without a trailing slash.
func (u *URLService) SiteURL() string { return u.siteURL }

// PostURL resolves a post's canonical public URL, or "" when the post has no
// public page. With no store configured every post falls back.
func (u *URLService) PostURL(postID string) string {
	if u.store == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
	defer cancel()

	slug, err := u.store.PostSlug(ctx, postID)
	if err != nil {
		logger.Warn("post url resolution failed", "post_id", postID, "error", err.Error())
		return ""
	}
	if slug == "" {
		return ""
	}
	return u.siteURL + "/" + slug + "/"
}
