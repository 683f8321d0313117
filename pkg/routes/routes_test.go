package routes_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/image-lab/pkg/routes"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}
}

func TestBuild_Routes(t *testing.T) {
	sys := routes.New(testLogger())
	sys.RegisterRoute(routes.Route{Method: "GET", Pattern: "/healthz", Handler: respond("OK")})

	rec := httptest.NewRecorder()
	sys.Build().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "OK")
	}
}

func TestBuild_MethodMismatch(t *testing.T) {
	sys := routes.New(testLogger())
	sys.RegisterRoute(routes.Route{Method: "GET", Pattern: "/healthz", Handler: respond("OK")})

	rec := httptest.NewRecorder()
	sys.Build().ServeHTTP(rec, httptest.NewRequest("POST", "/healthz", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestBuild_NestedGroups(t *testing.T) {
	sys := routes.New(testLogger())
	sys.RegisterGroup(routes.Group{
		Prefix: "/api",
		Children: []routes.Group{
			{
				Prefix: "/images",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: respond("list")},
					{Method: "GET", Pattern: "/{id}", Handler: func(w http.ResponseWriter, r *http.Request) {
						w.Write([]byte("find:" + r.PathValue("id")))
					}},
				},
			},
		},
	})

	handler := sys.Build()

	tests := []struct {
		path string
		want string
	}{
		{"/api/images", "list"},
		{"/api/images/abc", "find:abc"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Body.String() != tt.want {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.want)
			}
		})
	}

	if len(sys.Groups()) != 1 {
		t.Errorf("Groups() length = %d, want 1", len(sys.Groups()))
	}
}
