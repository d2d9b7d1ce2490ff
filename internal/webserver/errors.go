package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"svgslice/internal/pipeline"
	"svgslice/internal/svgcheck"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeRequest       ErrorType = "request"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeTool          ErrorType = "tool"
	ErrorTypeFileIO        ErrorType = "file_io"
	ErrorTypeUpload        ErrorType = "upload"
	ErrorTypeInternal      ErrorType = "internal"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Type        ErrorType `json:"type"`
	Code        string    `json:"code"`
	Stage       string    `json:"stage,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Details     string    `json:"details"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// requestError marks failures caused by the client's input
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

// CategorizeError analyzes an error and returns an appropriate ErrorResponse
func CategorizeError(err error) ErrorResponse {
	return CategorizeErrorWithLang(err, "en")
}

// CategorizeErrorWithLang analyzes an error and returns an appropriate ErrorResponse with translations
func CategorizeErrorWithLang(err error, lang string) ErrorResponse {
	if err == nil {
		return ErrorResponse{
			Type:        ErrorTypeInternal,
			Code:        "unknown_error",
			Title:       GetTranslation(lang, "error_processing_title"),
			Description: GetTranslation(lang, "error_processing_description"),
			Details:     "No error details available",
		}
	}

	resp := categorize(err, lang)
	resp.Details = err.Error()

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		resp.Stage = string(stageErr.Stage)
	}

	return resp
}

func categorize(err error, lang string) ErrorResponse {
	t := func(key string) string { return GetTranslation(lang, key) }
	errMsgLower := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, svgcheck.ErrEmpty), errors.Is(err, svgcheck.ErrNotSVG),
		errors.Is(err, svgcheck.ErrNoShape), strings.Contains(errMsgLower, "failed to parse svg"):
		return ErrorResponse{
			Type:        ErrorTypeValidation,
			Code:        "invalid_svg",
			Title:       t("error_invalid_svg_title"),
			Description: t("error_invalid_svg_description"),
			Suggestions: []string{
				t("error_invalid_svg_suggestion_export"),
				t("error_invalid_svg_suggestion_shapes"),
			},
		}
	case strings.Contains(errMsgLower, "profile not found"):
		return ErrorResponse{
			Type:        ErrorTypeConfiguration,
			Code:        "profile_not_found",
			Title:       t("error_profile_not_found_title"),
			Description: t("error_profile_not_found_description"),
			Suggestions: []string{t("error_profile_not_found_suggestion_list")},
		}
	case strings.Contains(errMsgLower, "invalid profile name"):
		return ErrorResponse{
			Type:        ErrorTypeValidation,
			Code:        "invalid_profile_name",
			Title:       t("error_invalid_profile_name_title"),
			Description: t("error_invalid_profile_name_description"),
		}
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorResponse{
			Type:        ErrorTypeTool,
			Code:        "tool_timeout",
			Title:       t("error_timeout_title"),
			Description: t("error_timeout_description"),
			Suggestions: []string{t("error_timeout_suggestion_timeout")},
		}
	case errors.Is(err, pipeline.ErrToolNotFound):
		return ErrorResponse{
			Type:        ErrorTypeConfiguration,
			Code:        "tool_not_found",
			Title:       t("error_tool_not_found_title"),
			Description: t("error_tool_not_found_description"),
			Suggestions: []string{
				t("error_tool_not_found_suggestion_path"),
				t("error_tool_not_found_suggestion_exec"),
			},
		}
	case errors.Is(err, pipeline.ErrToolFailed):
		return ErrorResponse{
			Type:        ErrorTypeTool,
			Code:        "tool_failed",
			Title:       t("error_tool_failed_title"),
			Description: t("error_tool_failed_description"),
			Suggestions: []string{
				t("error_tool_failed_suggestion_details"),
				t("error_tool_failed_suggestion_settings"),
			},
		}
	case errors.Is(err, pipeline.ErrOutputMissing):
		return ErrorResponse{
			Type:        ErrorTypeFileIO,
			Code:        "output_missing",
			Title:       t("error_output_missing_title"),
			Description: t("error_output_missing_description"),
			Suggestions: []string{t("error_output_missing_suggestion_name")},
		}
	case errors.Is(err, pipeline.ErrInvalidOutput):
		return ErrorResponse{
			Type:        ErrorTypeFileIO,
			Code:        "invalid_output",
			Title:       t("error_invalid_output_title"),
			Description: t("error_invalid_output_description"),
		}
	case errors.Is(err, pipeline.ErrIO):
		return ErrorResponse{
			Type:        ErrorTypeFileIO,
			Code:        "file_write_error",
			Title:       t("error_file_write_title"),
			Description: t("error_file_write_description"),
			Suggestions: []string{
				t("error_file_write_suggestion_space"),
				t("error_file_write_suggestion_permissions"),
			},
		}
	case strings.Contains(errMsgLower, "form") || strings.Contains(errMsgLower, "multipart") ||
		strings.Contains(errMsgLower, "too large"):
		return ErrorResponse{
			Type:        ErrorTypeUpload,
			Code:        "upload_form_error",
			Title:       t("error_upload_form_title"),
			Description: t("error_upload_form_description"),
			Suggestions: []string{
				t("error_upload_form_suggestion_field"),
				t("error_upload_form_suggestion_size"),
			},
		}
	case isRequestError(err):
		return ErrorResponse{
			Type:        ErrorTypeRequest,
			Code:        "invalid_request",
			Title:       t("error_bad_request_title"),
			Description: t("error_bad_request_description"),
			Suggestions: []string{
				t("error_bad_request_suggestion_json"),
				t("error_bad_request_suggestion_fields"),
			},
		}
	default:
		return ErrorResponse{
			Type:        ErrorTypeInternal,
			Code:        "processing_error",
			Title:       t("error_processing_title"),
			Description: t("error_processing_description"),
			Suggestions: []string{
				t("error_processing_suggestion_retry"),
				t("error_processing_suggestion_fields"),
			},
		}
	}
}

func isRequestError(err error) bool {
	var reqErr *requestError
	return errors.As(err, &reqErr)
}

// StatusCode picks the HTTP status for err
func StatusCode(err error) int {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case strings.Contains(strings.ToLower(err.Error()), "profile not found"):
		return http.StatusNotFound
	case isRequestError(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, pipeline.ErrToolFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponseWithLang writes a structured error response as JSON with language support
func WriteErrorResponseWithLang(w http.ResponseWriter, err error, statusCode int, lang string) {
	errorResp := CategorizeErrorWithLang(err, lang)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if jsonErr := json.NewEncoder(w).Encode(errorResp); jsonErr != nil {
		fmt.Fprintf(w, "Error: %v", err)
	}
}
