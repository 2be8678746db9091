// Package frame turns transported images into pixel frames.
package frame

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

const (
	// DefaultMaxBytes bounds a single encoded frame.
	DefaultMaxBytes = 5 * 1024 * 1024

	// DefaultMaxPixels bounds the decoded size of a frame (one 4K UHD image).
	DefaultMaxPixels = 3840 * 2160
)

type Decoder struct {
	maxBytes  int
	maxPixels int
}

type Option func(*Decoder)

// WithMaxPixels caps width*height of a decoded frame. Non-positive values
// keep the default.
func WithMaxPixels(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxPixels = n
		}
	}
}

func NewDecoder(maxBytes int, opts ...Option) *Decoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	d := &Decoder{maxBytes: maxBytes, maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeBase64 accepts plain base64 or a data URL ("data:image/jpeg;base64,...").
func (d *Decoder) DecodeBase64(payload string) (*domain.Frame, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("empty payload"))
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > d.maxBytes {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("frame exceeds %d bytes", d.maxBytes))
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("decode base64: %w", err))
	}
	return d.Decode(raw)
}

// Decode reads a JPEG, PNG or WebP image into a BGR frame, the channel
// order camera pipelines deliver.
func (d *Decoder) Decode(data []byte) (*domain.Frame, error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("empty image"))
	}
	if len(data) > d.maxBytes {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("frame exceeds %d bytes", d.maxBytes))
	}

	// The header is checked first: a tiny compressed payload can declare
	// dimensions that would not fit in memory once decoded.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("decode image header: %w", err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height))
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(d.maxPixels) {
		return nil, domain.ErrInvalidImage.WithError(
			fmt.Errorf("frame %dx%d exceeds %d pixels", cfg.Width, cfg.Height, d.maxPixels))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("decode image: %w", err))
	}
	return toBGR(img), nil
}

func toBGR(img image.Image) *domain.Frame {
	b := img.Bounds()
	f := domain.NewFrame(b.Dy(), b.Dx(), 3)

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			f.Data[i] = c.B
			f.Data[i+1] = c.G
			f.Data[i+2] = c.R
			i += 3
		}
	}
	return f
}
