package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeDefinition    ErrorType = "DEFINITION"
	TypeValidation    ErrorType = "VALIDATION"
	TypeAssetUpload   ErrorType = "ASSET_UPLOAD"
	TypeAuth          ErrorType = "AUTH"
	TypeRemoteWrite   ErrorType = "REMOTE_WRITE"
	TypeRemoteRead    ErrorType = "REMOTE_READ"
	TypeStorage       ErrorType = "STORAGE"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if detail, ok := e.Context["detail"].(string); ok && detail != "" {
			msg += fmt.Sprintf(" - %s", detail)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors of the same type and message, so sentinels survive WithError/WithContext.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// IsType reports whether err is an AppError of the given type anywhere in its chain.
func IsType(err error, t ErrorType) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Type == t {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Definition errors
var (
	ErrDefinitionUnavailable = NewAppError(TypeDefinition, "Report form definition is unavailable", nil).
					WithSuggestion("Check your network connection and run: deckreport definition refresh")

	ErrDefinitionFile = NewAppError(TypeDefinition, "Failed to load report form definition file", nil).
				WithSuggestion("Check the 'definition_file' path in your config")
)

// Validation errors
var (
	ErrValidationFailed = NewAppError(TypeValidation, "Please correct the highlighted fields before submitting.", nil)
)

// Asset upload errors
var (
	ErrUploadFailed = NewAppError(TypeAssetUpload, "Failed to upload screenshots. Please try again.", nil)

	ErrImageTooLarge = NewAppError(TypeAssetUpload, "Image too large. Images cannot be more than 1MB each.", nil).
				WithSuggestion("Pick a smaller screenshot or re-encode it as JPEG")
)

// Auth errors
var (
	ErrAuthRequired = NewAppError(TypeAuth, "No GitHub token available", nil).
			WithSuggestion("Log in first: deckreport auth login")

	ErrTokenRefresh = NewAppError(TypeAuth, "Failed to refresh GitHub token", nil).
			WithSuggestion("Log in again: deckreport auth login")

	ErrDeviceFlowDenied = NewAppError(TypeAuth, "GitHub authorization was denied", nil)

	ErrDeviceFlowExpired = NewAppError(TypeAuth, "GitHub device code expired", nil).
				WithSuggestion("Start the login again: deckreport auth login")

	ErrGitHubTokenInvalid = NewAppError(TypeAuth, "GitHub token is invalid or expired", nil).
				WithSuggestion("Log in again: deckreport auth login")
)

// Remote write errors
var (
	ErrCreateIssue = NewAppError(TypeRemoteWrite, "Submission failed. Please try again.", nil)

	ErrUpdateIssue = NewAppError(TypeRemoteWrite, "Report update failed. Please try again.", nil)

	ErrRepositoryNotFound = NewAppError(TypeRemoteWrite, "reports repository not found", nil).
				WithSuggestion("Check 'github_owner' and 'github_repo' in your config")

	ErrMissingIssueURL = NewAppError(TypeRemoteWrite, "Issue response is missing html_url", nil)
)

// Remote read errors
var (
	ErrGameDataUnavailable = NewAppError(TypeRemoteRead, "Failed to fetch game data", nil)

	ErrReportNotFound = NewAppError(TypeRemoteRead, "Report not found for this game", nil).
				WithSuggestion("List reports with: deckreport game details --appid <id>")
)

// Storage errors
var (
	ErrStorageRead  = NewAppError(TypeStorage, "Failed to read local storage", nil)
	ErrStorageWrite = NewAppError(TypeStorage, "Failed to write local storage", nil)
	ErrDraftMissing = NewAppError(TypeStorage, "Draft not found", nil).
			WithSuggestion("List saved drafts with: deckreport draft list")
)

// Configuration errors
var (
	ErrConfigInvalid = NewAppError(TypeConfiguration, "Configuration is invalid", nil).
				WithSuggestion("Review your config with: deckreport config show")

	ErrConfigKeyUnknown = NewAppError(TypeConfiguration, "Unknown configuration key", nil)
)
