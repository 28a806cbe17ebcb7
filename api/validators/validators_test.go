package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
)

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestOptionalQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/gigs?search=&filter=Design", nil)

	if got := OptionalQuery(r, "search"); got == nil || *got != "" {
		t.Fatalf("expected empty search to be present, got %v", got)
	}
	if got := OptionalQuery(r, "filter"); got == nil || *got != "Design" {
		t.Fatalf("unexpected filter %v", got)
	}
	if got := OptionalQuery(r, "favorites"); got != nil {
		t.Fatalf("expected absent favorites, got %q", *got)
	}
}

func TestPathUUID(t *testing.T) {
	id := uuid.New()
	r := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "gigId", id.String())
	got, err := PathUUID(r, "gigId")
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id, got, err)
	}

	r = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "gigId", "nope")
	if _, err := PathUUID(r, "gigId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPathString(t *testing.T) {
	r := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "username", "  ada ")
	got, err := PathString(r, "username", 10)
	if err != nil || got != "ada" {
		t.Fatalf("expected ada, got %q (%v)", got, err)
	}

	r = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "username", "averyverylongname")
	if _, err := PathString(r, "username", 10); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStructReportsFieldNames(t *testing.T) {
	type params struct {
		Search *string `json:"search" validate:"omitempty,max=3"`
	}
	long := "abcdef"
	err := Struct(params{Search: &long})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["search"] == "" {
		t.Fatalf("expected search detail, got %v", typed.Details())
	}
}
