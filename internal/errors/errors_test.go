package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_WithError(t *testing.T) {
	baseErr := errors.New("connection reset")
	appErr := ErrUploadFailed.WithError(baseErr)

	if appErr.Err != baseErr {
		t.Errorf("Expected underlying error to be %v, got %v", baseErr, appErr.Err)
	}

	if appErr.Type != TypeAssetUpload {
		t.Errorf("Expected type %s, got %s", TypeAssetUpload, appErr.Type)
	}

	if ErrUploadFailed.Err != nil {
		t.Errorf("sentinel was mutated: %v", ErrUploadFailed.Err)
	}
}

func TestAppError_WithContext(t *testing.T) {
	appErr := ErrCreateIssue.WithContext("repo", "DeckSettings/game-reports-steamos").WithContext("detail", "422 Validation Failed")

	if appErr.Context["repo"] != "DeckSettings/game-reports-steamos" {
		t.Errorf("Expected repo context, got %v", appErr.Context["repo"])
	}

	if appErr.Context["detail"] != "422 Validation Failed" {
		t.Errorf("Expected detail context, got %v", appErr.Context["detail"])
	}

	if ErrCreateIssue.Context != nil {
		t.Errorf("sentinel context was mutated: %v", ErrCreateIssue.Context)
	}
}

func TestAppError_Error_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		contains []string
	}{
		{
			name:     "Simple error without underlying error",
			err:      ErrAuthRequired,
			contains: []string{"AUTH", "No GitHub token available"},
		},
		{
			name:     "Error with underlying error",
			err:      ErrDefinitionUnavailable.WithError(errors.New("503 Service Unavailable")),
			contains: []string{"DEFINITION", "unavailable", "503 Service Unavailable"},
		},
		{
			name: "Error with detail context",
			err: ErrUpdateIssue.WithError(errors.New("PATCH failed")).
				WithContext("detail", "Not Found"),
			contains: []string{"REMOTE_WRITE", "PATCH failed", "Not Found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, want it to contain %q", msg, want)
				}
			}
		})
	}
}

func TestAppError_Is(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", ErrUploadFailed.WithError(errors.New("boom")))

	if !errors.Is(wrapped, ErrUploadFailed) {
		t.Error("errors.Is should match the sentinel through WithError and fmt wrapping")
	}
	if errors.Is(wrapped, ErrCreateIssue) {
		t.Error("errors.Is should not match a different sentinel")
	}
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", ErrDeviceFlowExpired)

	if !IsType(wrapped, TypeAuth) {
		t.Error("IsType should find AUTH in the chain")
	}
	if IsType(wrapped, TypeStorage) {
		t.Error("IsType should not report STORAGE")
	}
	if IsType(errors.New("plain"), TypeAuth) {
		t.Error("IsType should be false for plain errors")
	}
}

func TestAppError_WithSuggestion(t *testing.T) {
	appErr := ErrConfigKeyUnknown.WithSuggestion("Valid keys: language, namespace")

	if appErr.Suggestion != "Valid keys: language, namespace" {
		t.Errorf("unexpected suggestion %q", appErr.Suggestion)
	}
	if appErr.Type != TypeConfiguration {
		t.Errorf("Expected type %s, got %s", TypeConfiguration, appErr.Type)
	}
}
