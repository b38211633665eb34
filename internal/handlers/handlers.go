package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"estatehub/internal/common"
	"estatehub/internal/middleware"
	"estatehub/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// maxUploadSize bounds a single multipart file read into memory.
const maxUploadSize = 10 << 20

// session returns the resolved session set by middleware.Session.
func session(c echo.Context) (models.Session, error) {
	return middleware.CurrentSession(c)
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param(name), name)
}

// bind decodes the request body into dst and reports malformed input as a validation error.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return common.NewValidationError("body", "invalid request format")
	}
	return nil
}

// decimalQuery parses an optional decimal query parameter.
func decimalQuery(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, common.NewValidationError(name, name+" must be a number")
	}
	return &d, nil
}

// formFile reads a multipart file field into memory.
func formFile(c echo.Context, field string) (models.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return models.FileUpload{}, common.NewValidationError(field, field+" file is required")
	}
	if header.Size > maxUploadSize {
		return models.FileUpload{}, common.NewValidationError(field, field+" exceeds the 10MB upload limit")
	}
	return readUpload(header)
}

func readUpload(header *multipart.FileHeader) (models.FileUpload, error) {
	src, err := header.Open()
	if err != nil {
		return models.FileUpload{}, common.WrapError(common.CodeInternal, "failed to open upload", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return models.FileUpload{}, common.WrapError(common.CodeInternal, "failed to read upload", err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return models.FileUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// ListResponse wraps paginated collections.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func list[T any](c echo.Context, items []T, limit, offset int) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, ListResponse[T]{Data: items, Limit: limit, Offset: offset})
}

// optionalDate parses a YYYY-MM-DD field that may be empty.
func optionalDate(raw, field string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := common.ParseDate(raw, field)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
