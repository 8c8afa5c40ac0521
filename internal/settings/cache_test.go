package settings

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestGetPrefersRedisOverDefaults(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Set(keyPrefix+"title", "Redis Title")

	c := New(client, map[string]string{"title": "Default Title"})
	if got := c.Get("title"); got != "Redis Title" {
		t.Errorf("Get(title) = %q, want Redis value", got)
	}
}

func TestGetFallsBackToDefaults(t *testing.T) {
	client, _ := setupTestRedis(t)

	c := New(client, map[string]string{"accent_color": "#15212A"})
	if got := c.Get("accent_color"); got != "#15212A" {
		t.Errorf("Get(accent_color) = %q, want default", got)
	}
	if got := c.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}

func TestGetUsesLocalCacheOnceWarmed(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Set(keyPrefix+"icon", "https://example.com/icon.png")

	c := New(client, nil)
	if got := c.Get("icon"); got != "https://example.com/icon.png" {
		t.Fatalf("first Get = %q", got)
	}

	// Redis changes under us; the local layer answers until invalidated.
	mr.Set(keyPrefix+"icon", "changed")
	if got := c.Get("icon"); got != "https://example.com/icon.png" {
		t.Errorf("warmed Get = %q, want cached value", got)
	}

	c.Invalidate("icon")
	if got := c.Get("icon"); got != "changed" {
		t.Errorf("Get after Invalidate = %q, want re-read value", got)
	}
}

func TestSetWritesThrough(t *testing.T) {
	client, mr := setupTestRedis(t)

	c := New(client, nil)
	if err := c.Set(context.Background(), "title", "New Title"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if got, _ := mr.Get(keyPrefix + "title"); got != "New Title" {
		t.Errorf("redis value = %q, want written-through value", got)
	}
	if got := c.Get("title"); got != "New Title" {
		t.Errorf("Get = %q, want %q", got, "New Title")
	}
}

func TestNilRedisDegradesToDefaults(t *testing.T) {
	c := New(nil, map[string]string{"title": "Offline Title"})
	if got := c.Get("title"); got != "Offline Title" {
		t.Errorf("Get = %q, want default with nil client", got)
	}
	if err := c.Set(context.Background(), "title", "Changed"); err != nil {
		t.Fatalf("Set with nil client: %v", err)
	}
	if got := c.Get("title"); got != "Changed" {
		t.Errorf("Get after Set = %q", got)
	}
}

func TestFlagGate(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Set(keyPrefix+labsKey, `{"paywall": true, "other": false}`)

	c := New(client, nil)
	if !c.Enabled("paywall") {
		t.Error("Enabled(paywall) = false, want true")
	}
	if c.Enabled("other") {
		t.Error("Enabled(other) = true, want false")
	}
	if c.Enabled("unknown") {
		t.Error("Enabled(unknown) = true, want false")
	}
}

func TestFlagGateMalformedLabs(t *testing.T) {
	c := New(nil, map[string]string{labsKey: "not-json"})
	if c.Enabled("paywall") {
		t.Error("malformed labs setting enabled a flag")
	}
}
