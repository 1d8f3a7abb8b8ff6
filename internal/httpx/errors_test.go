package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sundayezeilo/shortlinks/internal/errx"
)

func TestKindToStatus(t *testing.T) {
	tests := []struct {
		kind errx.Kind
		want int
	}{
		{errx.Invalid, http.StatusBadRequest},
		{errx.Conflict, http.StatusConflict},
		{errx.Unauthenticated, http.StatusUnauthorized},
		{errx.Storage, http.StatusInternalServerError},
		{errx.Internal, http.StatusInternalServerError},
		{errx.Unknown, http.StatusInternalServerError},
		{errx.Kind(99), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := KindToStatus(tt.kind); got != tt.want {
				t.Errorf("KindToStatus(%v) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestPublicMessage(t *testing.T) {
	driverErr := errors.New(`pq: duplicate key value violates unique constraint "links_short_code_unique"`)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "invalid passes innermost message",
			err:  errx.E("svc.Create", errx.Invalid, errors.New("url must include host")),
			want: "url must include host",
		},
		{
			name: "conflict passes innermost message",
			err:  errx.E("svc.Create", errx.Conflict, errors.New("short code already in use")),
			want: "short code already in use",
		},
		{
			name: "storage hides driver text",
			err:  errx.E("svc.Create", errx.Storage, errx.E("repo.Insert", errx.Storage, driverErr)),
			want: internalErrorMessage,
		},
		{
			name: "plain error is internal",
			err:  errors.New("something odd"),
			want: internalErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicMessage(tt.err); got != tt.want {
				t.Errorf("PublicMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteError(rr, errx.E("svc.Update", errx.Conflict, errors.New("short code already in use")))

	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if env.Success || env.Error != "short code already in use" {
		t.Errorf("envelope = %+v", env)
	}
}
