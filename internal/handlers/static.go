package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/services"
	"github.com/minetrack/apiserver/internal/storage"
)

const avatarPrefix = "avatars/"

// ObjectReader reads stored objects by key.
type ObjectReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// StaticHandler streams uploaded avatars from object storage. Only image
// extensions are served inline; anything else is sent as an attachment.
func StaticHandler(objects ObjectReader, log logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := path.Clean("/" + chi.URLParam(r, "*"))[1:]
		if !strings.HasPrefix(key, avatarPrefix) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}

		body, err := objects.Get(r.Context(), key)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				writeError(w, http.StatusNotFound, "file not found")
				return
			}
			respondError(w, r, log, err, "file")
			return
		}
		defer body.Close()

		contentType, ok := services.AvatarContentType(path.Ext(key))
		if !ok {
			contentType = "application/octet-stream"
			w.Header().Set("Content-Disposition", "attachment")
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, body)
	}
}
