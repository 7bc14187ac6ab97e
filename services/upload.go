package services

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadURLPrefix is the public path every stored image is served under.
const UploadURLPrefix = "/static/uploads/"

var allowedImageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// UploadHandler validates, names and stores post images.
type UploadHandler struct {
	storage  Storage
	maxBytes int64
	log      *zap.Logger
}

// NewUploadHandler returns a handler writing through storage. maxBytes <= 0 disables the size check.
func NewUploadHandler(storage Storage, maxBytes int64, log *zap.Logger) *UploadHandler {
	return &UploadHandler{storage: storage, maxBytes: maxBytes, log: log}
}

// Store persists every acceptable image and returns their URLs in input order.
// Files with other extensions are skipped silently. A write failure stops the
// call; files written before it stay in storage and are logged.
func (h *UploadHandler) Store(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	type accepted struct {
		fh   *multipart.FileHeader
		name string
		ext  string
	}
	var todo []accepted
	for _, fh := range files {
		if fh == nil {
			continue
		}
		stem, ext := splitUploadName(fh.Filename)
		if !allowedImageExt[ext] {
			continue
		}
		if h.maxBytes > 0 && fh.Size > h.maxBytes {
			return nil, validationError("file %s exceeds %d bytes", fh.Filename, h.maxBytes)
		}
		todo = append(todo, accepted{fh: fh, name: stem + ext, ext: ext})
	}

	urls := make([]string, 0, len(todo))
	for _, a := range todo {
		name := strings.ReplaceAll(uuid.NewString(), "-", "") + "_" + a.name
		if err := h.save(ctx, a.fh, name, a.ext); err != nil {
			if len(urls) > 0 {
				h.log.Warn("upload aborted, orphaned files left in storage",
					zap.Strings("urls", urls), zap.Error(err))
			}
			return nil, storageError("failed to store upload", err)
		}
		urls = append(urls, UploadURLPrefix+name)
	}
	return urls, nil
}

func (h *UploadHandler) save(ctx context.Context, fh *multipart.FileHeader, name, ext string) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	return h.storage.Save(ctx, name, f, fh.Size, contentType)
}

// splitUploadName drops any client path, keeps [A-Za-z0-9._-] and returns the
// stem (never empty) and the lower-cased extension including the dot.
func splitUploadName(filename string) (string, string) {
	filename = strings.ReplaceAll(filename, "\\", "/")
	clean := sanitizeName(path.Base(filename))
	ext := path.Ext(clean)
	stem := strings.Trim(strings.TrimSuffix(clean, ext), "._")
	if stem == "" {
		stem = "image"
	}
	return stem, strings.ToLower(ext)
}

func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// IsUploadName reports whether name could have been produced by Store.
func IsUploadName(name string) bool {
	return name != "" && name == sanitizeName(name) && !strings.HasPrefix(name, ".")
}
