package pipeline

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/gin-gonic/gin"

	"doc-analyzer/internal/documents"
	"doc-analyzer/internal/extract"
	"doc-analyzer/internal/shared/server/middleware"
	"doc-analyzer/internal/shared/server/respond"
	"doc-analyzer/internal/shared/telemetry"
	"doc-analyzer/internal/shared/util"
)

const (
	pdfMediaType = "application/pdf"

	// multipartSlack covers form boundaries and headers around the file part.
	multipartSlack = 1 << 20

	DefaultMaxUploadBytes = 50 << 20
)

// Handler exposes the pipeline as the upload endpoint.
type Handler struct {
	Pipeline       *Pipeline
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(p *Pipeline, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{Pipeline: p, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches the upload route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/upload", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+multipartSlack)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			h.tooLarge(c)
			return
		}
		respond.Error(c, http.StatusBadRequest, CodeMissingFile, "No file uploaded", nil)
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		h.tooLarge(c)
		return
	}

	mediaType := fileHeader.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(mediaType); err != nil || parsed != pdfMediaType {
		respond.Error(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Only PDF files are allowed", gin.H{"contentType": mediaType})
		return
	}

	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid file name", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, CodeMissingFile, "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.MaxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, CodeMissingFile, "unable to read file", nil)
		return
	}
	if int64(len(data)) > h.MaxUploadBytes {
		h.tooLarge(c)
		return
	}

	requestID := middleware.RequestIDFromContext(c)
	fields := map[string]any{
		"request_id": requestID,
		"user_id":    userID,
		"file_name":  fileName,
		"size":       units.HumanSize(float64(len(data))),
	}
	telemetry.Info("upload.received", fields)
	if telemetry.DebugEnabled() {
		if pages, err := extract.PageCount(data); err == nil {
			telemetry.Debug("upload.pages", map[string]any{"request_id": requestID, "pages": pages})
		}
	}

	out, err := h.Pipeline.Run(c.Request.Context(), Upload{
		Data:         data,
		MediaType:    pdfMediaType,
		FileName:     fileName,
		OriginalName: fileHeader.Filename,
		Size:         int64(len(data)),
		OwnerID:      userID,
		Structured:   parseStructured(c.PostForm("structured")),
		RequestID:    requestID,
	})
	if err != nil {
		var details any
		if errors.Is(err, ErrGatewayRequestFailed) {
			details = gin.H{"error": err.Error()}
		}
		respond.Error(c, HTTPStatus(err), Code(err), Message(err), details)
		return
	}

	c.Set(middleware.DocumentIDKey, out.Document.ID)
	c.Set(middleware.StrategyKey, out.Strategy)
	respond.Created(c, gin.H{"document": documents.ToResponse(out.Document)})
}

func (h *Handler) tooLarge(c *gin.Context) {
	respond.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
		"File too large (max "+units.BytesSize(float64(h.MaxUploadBytes))+")",
		gin.H{"maxBytes": h.MaxUploadBytes})
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

func parseStructured(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}
