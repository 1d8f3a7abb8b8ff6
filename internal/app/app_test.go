package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sundayezeilo/shortlinks/internal/config"
	"github.com/sundayezeilo/shortlinks/internal/linkcache"
	"github.com/sundayezeilo/shortlinks/internal/telemetry"
)

func TestCheckCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := linkcache.New(rdb, time.Minute)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	if !checkCache(context.Background(), cache, mr.Addr(), logger) {
		t.Error("checkCache() = false with redis up")
	}
	if !strings.Contains(logs.String(), "redis connection established") {
		t.Errorf("missing success log: %s", logs.String())
	}

	logs.Reset()
	mr.SetError("LOADING redis is down")

	if checkCache(context.Background(), cache, mr.Addr(), logger) {
		t.Error("checkCache() = true with redis failing")
	}
	if !strings.Contains(logs.String(), "redis unreachable") {
		t.Errorf("missing warning log: %s", logs.String())
	}
}

func TestCleanups_RunInReverseOnce(t *testing.T) {
	var order []string
	var undo cleanups
	undo.add(func() { order = append(order, "tracing") })
	undo.add(func() { order = append(order, "database") })
	undo.add(func() { order = append(order, "redis") })

	undo.run()
	undo.run()

	want := []string{"redis", "database", "tracing"}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func setStartupEnv(t *testing.T) {
	t.Helper()
	vars := map[string]string{
		"APP_ENV":                 "production",
		"LOG_LEVEL":               "error",
		"SERVER_PORT":             "8080",
		"SERVER_HOST":             "localhost",
		"SERVER_BASE_URL":         "http://localhost:8080",
		"SERVER_READ_TIMEOUT":     "1s",
		"SERVER_WRITE_TIMEOUT":    "1s",
		"SERVER_IDLE_TIMEOUT":     "1s",
		"SERVER_SHUTDOWN_TIMEOUT": "1s",
		"DB_HOST":                 "127.0.0.1",
		"DB_PORT":                 "1",
		"DB_USER":                 "u",
		"DB_PASSWORD":             "p",
		"DB_NAME":                 "n",
		"DB_SSLMODE":              "disable",
		"DB_MAX_CONNS":            "2",
		"DB_MIN_CONNS":            "1",
		"AUTH_JWT_SECRET":         strings.Repeat("s", 32),
		"AUTH_JWT_ISSUER":         "shortlinks",
		"OTEL_ENABLED":            "false",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
	for _, k := range []string{
		"SHORTCODE_MAX_ATTEMPTS", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"CACHE_TTL", "DB_AUTO_MIGRATE", "SERVER_CORS_ORIGINS", "OTEL_TRACING_SAMPLE_RATE", "OTEL_INSECURE",
	} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestNew_FlushesTracingWhenStartupFails(t *testing.T) {
	setStartupEnv(t)
	defer slog.SetDefault(slog.Default())

	flushed := 0
	orig := initTracing
	initTracing = func(context.Context, config.ObservabilityConfig) (telemetry.ShutdownFunc, error) {
		return func(context.Context) error {
			flushed++
			return nil
		}, nil
	}
	t.Cleanup(func() { initTracing = orig })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// nothing listens on port 1, so connecting to the database fails
	a, err := New(ctx)
	if err == nil {
		t.Fatal("New() succeeded without a database")
	}
	if a != nil {
		t.Error("New() returned an App on failure")
	}
	if flushed != 1 {
		t.Errorf("tracing shutdown called %d times, want 1", flushed)
	}
}
