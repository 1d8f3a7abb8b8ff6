package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit_Idempotent(t *testing.T) {
	Init()
	Init()
}

func TestHandler_ExposesRegisteredCollectors(t *testing.T) {
	Init()
	LinkOperations.WithLabelValues("create", "ok").Inc()
	CodeCollisions.Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"shortlinks_link_operations_total",
		"shortlinks_code_collisions_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}

func TestLinkOperations_CountsByLabel(t *testing.T) {
	before := testutil.ToFloat64(LinkOperations.WithLabelValues("delete", "not_found"))
	LinkOperations.WithLabelValues("delete", "not_found").Inc()
	after := testutil.ToFloat64(LinkOperations.WithLabelValues("delete", "not_found"))

	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}
