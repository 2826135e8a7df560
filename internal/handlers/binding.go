package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const maxJSONBodyBytes = 16 << 10

// bindJSON decodes a size-limited JSON body into dst. An empty body is accepted when
// allowEmpty is set.
func bindJSON(c *gin.Context, dst any, allowEmpty bool) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		abort(c, http.StatusBadRequest, msgInvalidBody, nil)
		return false
	}
	return true
}

// formFile opens an optional multipart file. The returned close func is never nil.
func formFile(c *gin.Context, field string) (*domain.MediaUpload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*domain.MediaUpload, func(), error) {
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &domain.MediaUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
