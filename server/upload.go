package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"dhammasound/logger"
)

var allowedUploadTypes = map[string]bool{
	"image/png":     true,
	"image/jpg":     true,
	"image/jpeg":    true,
	"image/svg+xml": true,
	"audio/mpeg":    true,
	"audio/wave":    true,
	"audio/wav":     true,
}

const maxUploadSize = 200 << 20

// saveUpload stores the named multipart file under the configured upload
// directory with a uuid-prefixed filename and returns the local path.
// It returns ("", nil) when the field is absent so optional file fields
// stay optional.
func (h *APIHandler) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", BadRequest("Invalid upload")
	}
	defer file.Close()

	if !allowedUploadTypes[header.Header.Get("Content-Type")] {
		return "", ValidationFailed([]FieldError{{Field: field, Message: "ชนิดไฟล์ไม่ถูกต้อง"}})
	}

	return h.writeTempFile(file, header)
}

func (h *APIHandler) writeTempFile(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + "-" + filepath.Base(header.Filename)
	localPath := filepath.Join(h.cfg.UploadDir, name)

	dst, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(localPath)
		return "", err
	}

	logger.Debug("upload saved", logger.String("path", localPath))
	return localPath, nil
}
