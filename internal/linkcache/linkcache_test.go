package linkcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sundayezeilo/shortlinks/internal/shortener"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl), mr
}

func testLink() shortener.Link {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return shortener.Link{
		ID:          7,
		OwnerID:     "user-1",
		OriginalURL: "https://example.com/page",
		ShortCode:   "abc123",
		CreatedAt:   now,
		UpdatedAt:   now.Add(time.Minute),
	}
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	want := testLink()

	if err := c.Set(ctx, want); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	got, found, err := c.Get(ctx, "abc123")
	if err != nil || !found {
		t.Fatalf("Get() = %v, %v, want found", found, err)
	}
	if got.ID != want.ID || got.OwnerID != want.OwnerID || got.OriginalURL != want.OriginalURL || got.ShortCode != want.ShortCode {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("timestamps = %v/%v, want %v/%v", got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
	}
}

func TestCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	_, found, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if found {
		t.Error("found = true, want false")
	}
}

func TestCache_TTL(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	if err := c.Set(ctx, testLink()); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("sl:abc123"); ttl != 30*time.Second {
		t.Errorf("TTL = %v, want %v", ttl, 30*time.Second)
	}

	mr.FastForward(31 * time.Second)
	if _, found, _ := c.Get(ctx, "abc123"); found {
		t.Error("entry still present after TTL")
	}
}

func TestCache_DefaultTTL(t *testing.T) {
	c, mr := newTestCache(t, 0)

	if err := c.Set(context.Background(), testLink()); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("sl:abc123"); ttl != DefaultTTL {
		t.Errorf("TTL = %v, want %v", ttl, DefaultTTL)
	}
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	a := testLink()
	b := testLink()
	b.ShortCode = "other1"
	for _, l := range []shortener.Link{a, b} {
		if err := c.Set(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Invalidate(ctx, "abc123", "other1", "never-set"); err != nil {
		t.Fatalf("Invalidate() unexpected error: %v", err)
	}
	for _, code := range []string{"abc123", "other1"} {
		if _, found, _ := c.Get(ctx, code); found {
			t.Errorf("%q still cached after Invalidate", code)
		}
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Errorf("Invalidate() with no codes: %v", err)
	}
}

func TestCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	if err := mr.Set("sl:broken", "{not json"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := c.Get(context.Background(), "broken"); err == nil {
		t.Error("Get() expected error for corrupt entry")
	}
}

func TestCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, _, err := c.Get(ctx, "abc123"); err == nil {
		t.Error("Get() expected error when redis is down")
	}
	if err := c.Ping(ctx); err == nil {
		t.Error("Ping() expected error when redis is down")
	}
}
