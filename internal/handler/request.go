package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/upload"
)

// pathID parses a numeric chi URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, apperror.BadInput()
	}
	return id, nil
}

// decodeBody reads a JSON request body into dst. A malformed body is a
// client fault, not a server one.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.BadInput()
	}
	return nil
}

// formImage saves an optional multipart image and returns its stored
// filename, or nil when the field was not sent.
func formImage(r *http.Request, store *upload.Store, field string) (*string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.BadInput()
	}
	defer file.Close()

	name, err := store.SaveImage(file, header)
	if err != nil {
		return nil, err
	}
	return &name, nil
}

// requiredFormImage is formImage for routes where the image is mandatory.
func requiredFormImage(r *http.Request, store *upload.Store, field string) (string, error) {
	name, err := formImage(r, store, field)
	if err != nil {
		return "", err
	}
	if name == nil {
		return "", apperror.Conflict("Kötelező képet megadni")
	}
	return *name, nil
}

// eventTimeLayouts are the accepted start/end formats, the SQL datetime
// the mobile clients send plus RFC 3339.
var eventTimeLayouts = []string{"2006-01-02 15:04:05", time.RFC3339}

func parseEventTime(value string) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperror.BadInput()
}
