package pipeline

import (
	"errors"
	"net/http"
)

var (
	ErrMissingFile          = errors.New("no file uploaded")
	ErrNoExtractorAvailable = errors.New("no PDF extractor available")
	ErrExtractionFailed     = errors.New("text extraction failed")
	ErrEmptyExtraction      = errors.New("no text extracted")
	ErrGatewayNotConfigured = errors.New("AI gateway not configured")
	ErrGatewayTimeout       = errors.New("AI gateway timed out")
	ErrGatewayRequestFailed = errors.New("AI gateway request failed")
	ErrStorage              = errors.New("failed to store document")
)

const (
	CodeMissingFile          = "MISSING_FILE"
	CodeNoExtractorAvailable = "NO_EXTRACTOR_AVAILABLE"
	CodeExtractionFailed     = "EXTRACTION_FAILED"
	CodeEmptyExtraction      = "EMPTY_EXTRACTION"
	CodeGatewayNotConfigured = "GATEWAY_NOT_CONFIGURED"
	CodeGatewayTimeout       = "GATEWAY_TIMEOUT"
	CodeGatewayRequestFailed = "GATEWAY_REQUEST_FAILED"
	CodeStorage              = "STORAGE_ERROR"
	CodeInternal             = "INTERNAL_ERROR"
)

type failure struct {
	err     error
	code    string
	status  int
	message string
}

var failures = []failure{
	{ErrMissingFile, CodeMissingFile, http.StatusBadRequest, "No file uploaded"},
	{ErrNoExtractorAvailable, CodeNoExtractorAvailable, http.StatusInternalServerError, "No PDF extractor available"},
	{ErrExtractionFailed, CodeExtractionFailed, http.StatusUnprocessableEntity, "Could not read the PDF"},
	{ErrEmptyExtraction, CodeEmptyExtraction, http.StatusBadRequest, "No text extracted. Use a non-scanned PDF."},
	{ErrGatewayNotConfigured, CodeGatewayNotConfigured, http.StatusInternalServerError, "AI provider not configured"},
	{ErrGatewayTimeout, CodeGatewayTimeout, http.StatusGatewayTimeout, "AI provider did not respond in time"},
	{ErrGatewayRequestFailed, CodeGatewayRequestFailed, http.StatusBadGateway, "AI request failed"},
	{ErrStorage, CodeStorage, http.StatusInternalServerError, "Failed to save document"},
}

func lookup(err error) (failure, bool) {
	for _, f := range failures {
		if errors.Is(err, f.err) {
			return f, true
		}
	}
	return failure{}, false
}

// Code maps err to a stable error code. Unknown errors are INTERNAL_ERROR.
func Code(err error) string {
	if err == nil {
		return ""
	}
	if f, ok := lookup(err); ok {
		return f.code
	}
	return CodeInternal
}

// HTTPStatus maps err to the response status used by the upload endpoint.
func HTTPStatus(err error) int {
	if f, ok := lookup(err); ok {
		return f.status
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err.
func Message(err error) string {
	if f, ok := lookup(err); ok {
		return f.message
	}
	return "Server error"
}
