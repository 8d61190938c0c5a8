// Package imagehost validates listing images and stores them with one of
// several hosting backends.
package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/evcraddock/realty/internal/apperr"
)

const (
	// DefaultMaxBytes is the largest accepted upload.
	DefaultMaxBytes = 5 << 20
	// DefaultMaxDimension is the longest edge kept after downscaling.
	DefaultMaxDimension = 1600
	// DefaultMaxPixels caps the declared pixel count of an upload.
	DefaultMaxPixels = 50_000_000
)

var formats = map[string]struct {
	ext         string
	contentType string
	encode      imaging.Format
}{
	"jpeg": {".jpg", "image/jpeg", imaging.JPEG},
	"png":  {".png", "image/png", imaging.PNG},
	"gif":  {".gif", "image/gif", imaging.GIF},
}

// Uploader stores an encoded image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Processor checks uploads and shrinks oversized images.
type Processor struct {
	MaxBytes     int64
	MaxDimension int
	MaxPixels    int64
}

// NewProcessor returns a Processor with the default limits. A positive
// maxDimension overrides DefaultMaxDimension.
func NewProcessor(maxDimension int) *Processor {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Processor{MaxBytes: DefaultMaxBytes, MaxDimension: maxDimension, MaxPixels: DefaultMaxPixels}
}

// Image is a processed upload ready to be stored.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Prepare validates data as a JPEG, PNG or GIF within the byte and pixel
// limits and downscales it to fit MaxDimension. Rejections are validation errors.
func (p *Processor) Prepare(data []byte) (*Image, error) {
	if int64(len(data)) > p.MaxBytes {
		return nil, apperr.Validationf("image exceeds %dMB", p.MaxBytes>>20)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Validationf("file is not a supported image")
	}
	f, ok := formats[format]
	if !ok {
		return nil, apperr.Validationf("image format %s not allowed", format)
	}
	if int64(cfg.Width)*int64(cfg.Height) > p.MaxPixels {
		return nil, apperr.Validationf("image dimensions %dx%d are too large", cfg.Width, cfg.Height)
	}

	out := &Image{Data: data, ContentType: f.contentType, Ext: f.ext, Width: cfg.Width, Height: cfg.Height}
	if cfg.Width <= p.MaxDimension && cfg.Height <= p.MaxDimension {
		return out, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Validationf("image could not be decoded")
	}
	resized := imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, f.encode, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encoding resized image: %w", err)
	}
	b := resized.Bounds()
	out.Data = buf.Bytes()
	out.Width, out.Height = b.Dx(), b.Dy()
	return out, nil
}

// Host combines a Processor with an Uploader.
type Host struct {
	proc     *Processor
	uploader Uploader
}

// NewHost creates a Host.
func NewHost(proc *Processor, uploader Uploader) *Host {
	return &Host{proc: proc, uploader: uploader}
}

// Put reads one image from r, processes it and uploads it under a fresh
// random name.
func (h *Host) Put(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, h.proc.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	img, err := h.proc.Prepare(data)
	if err != nil {
		return "", err
	}

	name := "properties/" + uuid.NewString() + img.Ext
	url, err := h.uploader.Upload(ctx, name, img.Data, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	return url, nil
}
