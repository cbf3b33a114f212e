package services

import (
	"bytes"
	"citystate/internal/models"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"
)

type creativeRule struct {
	ratio    float64
	minWidth int
}

// Width to height of the surface each placement kind exposes.
var creativeRules = map[models.PlacementKind]creativeRule{
	models.KindBillboard: {ratio: 16.0 / 9.0, minWidth: 640},
	models.KindWall:      {ratio: 4.0, minWidth: 800},
	models.KindBuilding:  {ratio: 1.0, minWidth: 256},
}

const ratioTolerance = 0.05

// ParseDataURI splits a base64 data URI into its media type and payload.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: not a data URI", ErrInvalidCreative)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: data URI has no payload", ErrInvalidCreative)
	}
	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: data URI must be base64 encoded", ErrInvalidCreative)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidCreative, err)
	}
	return strings.ToLower(mime), data, nil
}

// CheckCreative validates an uploaded creative for a placement kind. Images
// must match the kind's aspect ratio and minimum width; video is accepted
// as is.
func CheckCreative(kind models.PlacementKind, uri string) error {
	mime, data, err := ParseDataURI(uri)
	if err != nil {
		return err
	}
	switch {
	case strings.HasPrefix(mime, "video/"):
		return nil
	case !strings.HasPrefix(mime, "image/"):
		return fmt.Errorf("%w: unsupported media type %q", ErrInvalidCreative, mime)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: unreadable image: %s", ErrInvalidCreative, err)
	}
	rule, ok := creativeRules[kind]
	if !ok {
		return fmt.Errorf("%w: unknown placement kind %q", ErrInvalidCreative, kind)
	}
	if cfg.Width < rule.minWidth {
		return fmt.Errorf("%w: image is %dpx wide, %s needs at least %dpx", ErrInvalidCreative, cfg.Width, kind, rule.minWidth)
	}
	ratio := float64(cfg.Width) / float64(cfg.Height)
	if cfg.Height == 0 || math.Abs(ratio-rule.ratio)/rule.ratio > ratioTolerance {
		return fmt.Errorf("%w: %dx%d does not fit the %.2f:1 %s surface", ErrInvalidCreative, cfg.Width, cfg.Height, rule.ratio, kind)
	}
	return nil
}
