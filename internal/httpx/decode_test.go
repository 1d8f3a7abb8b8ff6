package httpx

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

type testRequest struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	ShortCode string `json:"shortCode"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantErr     bool
		errContains string
		validate    func(*testing.T, testRequest)
	}{
		{
			name:        "valid JSON",
			body:        `{"url":"https://example.com/a","shortCode":"promo","id":30}`,
			contentType: "application/json",
			wantErr:     false,
			validate: func(t *testing.T, req testRequest) {
				if req.URL != "https://example.com/a" {
					t.Errorf("expected url 'https://example.com/a', got %q", req.URL)
				}
				if req.ShortCode != "promo" {
					t.Errorf("expected shortCode 'promo', got %q", req.ShortCode)
				}
				if req.ID != 30 {
					t.Errorf("expected id 30, got %d", req.ID)
				}
			},
		},
		{
			name:        "empty body",
			body:        "",
			contentType: "application/json",
			wantErr:     true,
			errContains: "request body is empty",
		},
		{
			name:        "malformed JSON - missing quote",
			body:        `{"url":"https://example.com/a,"shortCode":"promo"}`,
			contentType: "application/json",
			wantErr:     true,
			errContains: "malformed JSON",
		},
		{
			name:        "malformed JSON - trailing comma",
			body:        `{"url":"https://example.com/a","shortCode":"promo",}`,
			contentType: "application/json",
			wantErr:     true,
			errContains: "malformed JSON",
		},
		{
			name:        "unknown field",
			body:        `{"url":"https://example.com/a","shortCode":"promo","unknown":"field"}`,
			contentType: "application/json",
			wantErr:     true,
			errContains: "unknown",
		},
		{
			name:        "invalid type for field",
			body:        `{"url":"https://example.com/a","shortCode":"promo","id":"thirty"}`,
			contentType: "application/json",
			wantErr:     true,
			errContains: "invalid value for field",
		},
		{
			name:        "multiple JSON objects",
			body:        `{"url":"https://example.com/a","shortCode":"promo"}{"url":"https://example.com/b"}`,
			contentType: "application/json",
			wantErr:     true,
			errContains: "multiple JSON objects",
		},
		{
			name:        "body too large",
			body:        `{"url":"` + strings.Repeat("x", MaxRequestBodySize+1) + `"}`,
			contentType: "application/json",
			wantErr:     true,
			errContains: "request body too large",
		},
		{
			name:        "partial JSON - can decode but more data exists",
			body:        `{"url":"https://example.com/a","shortCode":"promo","id":30}extra`,
			contentType: "application/json",
			wantErr:     true,
			errContains: "multiple JSON objects",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/links", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			result, err := DecodeJSON[testRequest](req)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error to contain %q, got %q", tt.errContains, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestDecodeJSON_ZeroValueOnError(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/links", strings.NewReader("invalid json"))

	result, err := DecodeJSON[testRequest](req)

	if err == nil {
		t.Fatal("expected error, got nil")
	}

	// Verify zero value is returned
	var zero testRequest
	if result != zero {
		t.Errorf("expected zero value on error, got %+v", result)
	}
}

func TestDecodeJSON_ClosesBody(t *testing.T) {
	body := &testReadCloser{
		Reader: strings.NewReader(`{"url":"https://example.com/a","shortCode":"promo","id":25}`),
		closed: false,
	}

	req := httptest.NewRequest("POST", "/api/links", body)

	_, err := DecodeJSON[testRequest](req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !body.closed {
		t.Error("expected body to be closed")
	}
}

// testReadCloser helps verify that body is closed
type testReadCloser struct {
	io.Reader
	closed bool
}

func (t *testReadCloser) Close() error {
	t.closed = true
	return nil
}

type linkBody struct {
	URL       string  `json:"url" validate:"required,max=2048"`
	ShortCode *string `json:"shortCode" validate:"omitempty,min=3,max=20"`
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid without code", `{"url":"https://example.com"}`, ""},
		{"valid with code", `{"url":"https://example.com","shortCode":"abc"}`, ""},
		{"missing url", `{"shortCode":"abc"}`, "url is required"},
		{"code too short", `{"url":"https://example.com","shortCode":"ab"}`, "shortCode must be at least 3 characters"},
		{"code too long", `{"url":"https://example.com","shortCode":"` + strings.Repeat("a", 21) + `"}`, "shortCode must be at most 20 characters"},
		{"unknown field", `{"url":"https://example.com","slug":"x"}`, "failed to decode JSON"},
		{"empty body", ``, "request body is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/links", strings.NewReader(tt.body))

			_, err := DecodeAndValidate[linkBody](req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	if err := ValidateStruct("not a struct"); err == nil {
		t.Error("expected error for non-struct input")
	}
}
