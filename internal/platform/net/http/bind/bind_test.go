package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	perr "hashvault/internal/platform/errors"
)

type payload struct {
	Hash string `json:"hash" validate:"required,min=8"`
	Note string `json:"note"`
}

func TestParseJSON_HappyPath(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"hash":"deadbeefcafe"}`))
	got, err := ParseJSON[payload](r)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if got.Hash != "deadbeefcafe" {
		t.Fatalf("hash = %q", got.Hash)
	}
}

func TestParseJSON_RejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"hash":"deadbeefcafe","bogus":1}`))
	if _, err := ParseJSON[payload](r); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("unknown field = %v, want json error", err)
	}
}

func TestParseJSON_RejectsTrailingData(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"hash":"deadbeefcafe"}{"hash":"x"}`))
	if _, err := ParseJSON[payload](r); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("trailing data = %v, want json error", err)
	}
}

func TestParseJSON_ValidationUsesJSONTagNames(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"hash":"abc"}`))
	_, err := ParseJSON[payload](r)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("short hash = %v, want validation error", err)
	}
	e, ok := perr.As(err)
	if !ok || e.Field() != "hash" {
		t.Fatalf("validation field = %q, want json tag name", e.Field())
	}
}

func TestParseJSON_EmptyBodyOnGetTolerated(t *testing.T) {
	type query struct {
		Q string `json:"q"`
	}
	r := httptest.NewRequest("GET", "/", nil)
	got, err := ParseJSON[query](r)
	if err != nil {
		t.Fatalf("empty GET body should bind the zero value, got %v", err)
	}
	if got.Q != "" {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestParseJSON_EmptyBodyOnPostRejected(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	if _, err := ParseJSON[payload](r); err == nil {
		t.Fatalf("empty POST body should fail")
	}
}
