package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
		{code: CodeQueryFailed, status: http.StatusOK, publicMsg: "query failed", detailsOK: true},
		{code: CodeQueryRejected, status: http.StatusOK, publicMsg: "only read-only queries are allowed", detailsOK: true},
		{code: CodeIngestion, status: http.StatusInternalServerError, publicMsg: "data ingestion failed"},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeModel, cause, "translate question")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeModel {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestReasonIncludesCause(t *testing.T) {
	if got := New(CodeModel, "no sql").Reason(); got != "no sql" {
		t.Fatalf("unexpected reason %q", got)
	}
	wrapped := Wrap(CodeModel, stdErrors.New("unexpected end of JSON input"), "parse model reply")
	if got := wrapped.Reason(); got != "parse model reply: unexpected end of JSON input" {
		t.Fatalf("unexpected reason %q", got)
	}
	if got := Wrap(CodeModel, stdErrors.New("boom"), "").Reason(); got != "boom" {
		t.Fatalf("unexpected reason %q", got)
	}
}

func TestAsAndHasCodeSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeQueryRejected, "DELETE not allowed"))
	if got := As(err); got == nil || got.Code() != CodeQueryRejected {
		t.Fatalf("As failed to return typed error")
	}
	if !HasCode(err, CodeQueryRejected) {
		t.Fatal("HasCode should match wrapped code")
	}
	if HasCode(err, CodeQueryFailed) {
		t.Fatal("HasCode should not match a different code")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := fmt.Errorf("execute: %w", Wrap(CodeQueryFailed, stdErrors.New("no such table: foo"), "run query"))
	d := Dump(err)
	if d.Code != CodeQueryFailed {
		t.Fatalf("expected code in dump, got %q", d.Code)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(d.Chain), d.Chain)
	}
	fields := d.Fields()
	if _, ok := fields["pg_code"]; ok {
		t.Fatal("pg fields should be omitted when empty")
	}
	if fields["error_code"] != CodeQueryFailed {
		t.Fatalf("unexpected error_code field %v", fields["error_code"])
	}
}
