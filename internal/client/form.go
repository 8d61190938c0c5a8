package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/evcraddock/realty/internal/property"
)

// PropertyForm is the multipart body for creating or updating a property.
// Only the fields present in Fields are sent.
type PropertyForm struct {
	Fields         map[string]string
	Configuration  []string
	Features       []string
	Configurations []property.ConfigurationDetail
	// Images are local file paths uploaded with the request.
	Images []string
	// ExistingImages are already hosted URLs to keep on update. Set
	// KeepImages to send the list even when it is empty.
	ExistingImages []string
	KeepImages     bool
}

// encode writes the form with files attached under the given field names.
func (f PropertyForm) encode(files map[string][]string) (io.Reader, string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range f.Fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	lists := map[string][]string{"configuration": f.Configuration, "features": f.Features}
	if f.KeepImages || f.ExistingImages != nil {
		kept := f.ExistingImages
		if kept == nil {
			kept = []string{}
		}
		lists["existingImages"] = kept
	}
	for k, v := range lists {
		if v == nil {
			continue
		}
		if err := writeJSONField(mw, k, v); err != nil {
			return nil, "", err
		}
	}
	if f.Configurations != nil {
		if err := writeJSONField(mw, "configurations", f.Configurations); err != nil {
			return nil, "", err
		}
	}

	for field, paths := range files {
		for _, p := range paths {
			if err := attach(mw, field, p); err != nil {
				return nil, "", err
			}
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &body, mw.FormDataContentType(), nil
}

func writeJSONField(mw *multipart.Writer, name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := mw.WriteField(name, string(data)); err != nil {
		return fmt.Errorf("writing field %s: %w", name, err)
	}
	return nil
}

func attach(mw *multipart.Writer, field, path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}
