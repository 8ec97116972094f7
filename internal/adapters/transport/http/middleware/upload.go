package middleware

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/asset"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

const uploadedFileKey = "uploadedFile"

// UploadSingle stores the multipart file in field under its original base name
// before the handler runs. Requests without that file pass through.
func UploadSingle(field string, store asset.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			c.Next()
			return
		}

		fh, err := c.FormFile(field)
		switch {
		case errors.Is(err, http.ErrMissingFile):
			c.Next()
			return
		case err != nil:
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				_ = c.Error(customErrors.ErrTooLarge)
			} else {
				_ = c.Error(customErrors.NewBadRequest("invalid multipart form"))
			}
			c.Abort()
			return
		}

		f, err := fh.Open()
		if err != nil {
			_ = c.Error(customErrors.WrapInternal(err, "open upload"))
			c.Abort()
			return
		}
		defer f.Close()

		mt, err := mimetype.DetectReader(f)
		if err != nil {
			_ = c.Error(customErrors.WrapInternal(err, "detect upload type"))
			c.Abort()
			return
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			_ = c.Error(customErrors.WrapInternal(err, "rewind upload"))
			c.Abort()
			return
		}

		name, err := store.Save(c.Request.Context(), fh.Filename, f, mt.String())
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(uploadedFileKey, name)
		c.Next()
	}
}

// UploadedFile returns the stored name of the file saved by UploadSingle.
func UploadedFile(c *gin.Context) (string, bool) {
	name := c.GetString(uploadedFileKey)
	return name, name != ""
}
