package marketplace

import (
	"errors"
	"net/http"
	"testing"
)

func TestNewFactory_Validation(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		wantErr bool
	}{
		{"empty", "", true},
		{"no scheme", "metaverse.example.com", true},
		{"ftp", "ftp://example.com", true},
		{"https", "https://metaverse.example.com", false},
		{"http with path", "http://localhost:8080/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(tt.base, nil, "")
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFactory(%q) error = %v, wantErr %v", tt.base, err, tt.wantErr)
			}
		})
	}
}

func TestFactory_NewRequest_URLJoin(t *testing.T) {
	f, err := NewFactory("http://localhost:8080/", nil, "mpub/test")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}

	req, err := f.NewRequest(t.Context(), http.MethodGet, CategoriesPath, AuthNone, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if got := req.URL.String(); got != "http://localhost:8080/api/v1/marketplace/categories" {
		t.Errorf("url = %s", got)
	}
	if got := req.Header.Get("User-Agent"); got != "mpub/test" {
		t.Errorf("user agent = %q", got)
	}
}

func TestFactory_NewRequest_AuthModes(t *testing.T) {
	tests := []struct {
		name       string
		tokens     TokenSource
		auth       AuthMode
		wantHeader string
		wantErr    error
	}{
		{"none ignores token", StaticToken("tok"), AuthNone, "", nil},
		{"optional with token", StaticToken("tok"), AuthOptional, "Bearer tok", nil},
		{"optional without token", StaticToken(""), AuthOptional, "", nil},
		{"optional nil source", nil, AuthOptional, "", nil},
		{"required with token", StaticToken("tok"), AuthRequired, "Bearer tok", nil},
		{"required without token", StaticToken(""), AuthRequired, "", ErrNotAuthenticated},
		{"required nil source", nil, AuthRequired, "", ErrNotAuthenticated},
		{"required failing source", FileToken{Path: "/nonexistent/token"}, AuthRequired, "", ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFactory("https://metaverse.example.com", tt.tokens, "")
			if err != nil {
				t.Fatalf("factory: %v", err)
			}

			req, err := f.NewRequest(t.Context(), http.MethodPost, InventoryPath, tt.auth, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := req.Header.Get("Authorization"); got != tt.wantHeader {
				t.Errorf("Authorization = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestAuthMode_String(t *testing.T) {
	if AuthRequired.String() != "required" {
		t.Errorf("AuthRequired.String() = %q", AuthRequired.String())
	}
	if AuthMode(9).String() != "AuthMode(9)" {
		t.Errorf("unknown mode string = %q", AuthMode(9).String())
	}
}
