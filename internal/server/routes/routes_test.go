package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

func newTestContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	return ctx
}

func TestSearchHandlersRejectMissingQuery(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		handler echo.HandlerFunc
	}{
		{"semantic", "/api/search/semantic", GetSemanticSearchHandler},
		{"graph", "/api/search/graph", GetGraphSearchHandler},
		{"combined", "/api/search/combined", GetCombinedSearchHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t, tt.target)
			if err := tt.handler(ctx); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if got := ctx.Response().Status; got != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", got, http.StatusBadRequest)
			}
		})
	}
}

func TestSemanticSearchRejectsAlphaOutOfRange(t *testing.T) {
	ctx := newTestContext(t, "/api/search/semantic?q=viteza&alpha=1.5")
	if err := GetSemanticSearchHandler(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if got := ctx.Response().Status; got != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", got, http.StatusBadRequest)
	}
}

func TestRerankConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("SEARCH_SINGLE_LOW", "0.2")
	t.Setenv("SEARCH_SINGLE_HIGH", "1.5")
	t.Setenv("SEARCH_SUBSUME_MATCHED", "true")

	cfg := rerankConfigFromEnv()
	if cfg.SingleLow != 0.2 {
		t.Errorf("SingleLow = %v, want 0.2", cfg.SingleLow)
	}
	if cfg.SingleHigh != 1.5 {
		t.Errorf("SingleHigh = %v, want 1.5", cfg.SingleHigh)
	}
	if !cfg.SubsumeMatched {
		t.Error("SubsumeMatched = false, want true")
	}
}

func TestGraphPathsRequireSourceAndTarget(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing both", "/api/graph/paths"},
		{"missing target", "/api/graph/paths?source=conducator"},
		{"missing source", "/api/graph/paths?target=permis_de_conducere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t, tt.target)
			if err := GetGraphPathsHandler(ctx); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if got := ctx.Response().Status; got != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", got, http.StatusBadRequest)
			}
		})
	}
}

func TestArticleContentRequiresArticleHeader(t *testing.T) {
	ctx := newTestContext(t, "/api/search/article-content?paragraph_identifier=(1)")
	if err := GetArticleContentHandler(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if got := ctx.Response().Status; got != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", got, http.StatusBadRequest)
	}
}
