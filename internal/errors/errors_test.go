package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("underlying error")

	err := New(UnrecognizedFormat, "no profile matched", cause)

	if err.Code != UnrecognizedFormat {
		t.Errorf("Code = %v, want %v", err.Code, UnrecognizedFormat)
	}
	if err.Message != "no profile matched" {
		t.Errorf("Message = %q, want %q", err.Message, "no profile matched")
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
}

func TestRemapError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      MalformedEntry,
			message:   "joined.tsrg:3",
			cause:     errors.New("expected 2 columns"),
			wantParts: []string{"MALFORMED_ENTRY", "joined.tsrg:3", "expected 2 columns"},
		},
		{
			name:      "without cause",
			code:      UnknownNamespace,
			message:   "namespace \"mojmap\" not found",
			cause:     nil,
			wantParts: []string{"UNKNOWN_NAMESPACE", "mojmap"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.cause)
			got := err.Error()

			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestRemapError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(InternalError, "something went wrong", cause)

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}

	// Test nil cause
	errNoCause := Newf(MissingEntry, "missing %s", "methods.csv")
	if errNoCause.Unwrap() != nil {
		t.Errorf("Unwrap() on error without cause should return nil")
	}
}

func TestHasCode(t *testing.T) {
	inner := New(MalformedEntry, "client.srg:1", errors.New("bad line"))
	outer := New(DownloadFailure, "fetch", inner)
	wrapped := fmt.Errorf("loading mappings: %w", outer)

	if !HasCode(wrapped, DownloadFailure) {
		t.Error("HasCode should find the outer code through fmt wrapping")
	}
	if !HasCode(wrapped, MalformedEntry) {
		t.Error("HasCode should find a nested code")
	}
	if HasCode(wrapped, UnknownNamespace) {
		t.Error("HasCode should not report a code that is absent")
	}
	if HasCode(errors.New("plain"), InternalError) {
		t.Error("HasCode should be false for non-RemapError chains")
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("ctx: %w", Newf(UnknownNamespace, "namespace %q not found", "x"))
	if !errors.Is(err, &RemapError{Code: UnknownNamespace}) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(err, &RemapError{Code: NoRemapPath}) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
	if got := CodeOf(Newf(ChecksumMismatch, "sha1")); got != ChecksumMismatch {
		t.Errorf("CodeOf = %v, want %v", got, ChecksumMismatch)
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	if fixes := GetSuggestedFixes(UnknownNamespace); len(fixes) == 0 {
		t.Error("expected fixes for UNKNOWN_NAMESPACE")
	}
	if fixes := GetSuggestedFixes(InternalError); fixes != nil {
		t.Errorf("expected no fixes for INTERNAL_ERROR, got %v", fixes)
	}
}
