package tmx

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// probeImage fills in missing image dimensions from the image header.
func (p *parser) probeImage(img *Image) error {
	if img.Width > 0 && img.Height > 0 {
		return nil
	}
	if img.Path == "" {
		return fmt.Errorf("%w: image has neither source nor size", ErrUnresolvedReference)
	}

	rc, err := p.open(img.Path)
	if err != nil {
		return fmt.Errorf("%w: image %s: %v", ErrUnresolvedReference, img.Path, err)
	}
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(rc)
	if err != nil {
		return fmt.Errorf("%w: image %s: %v", ErrUnresolvedReference, img.Path, err)
	}
	img.Width, img.Height = cfg.Width, cfg.Height
	if img.Format == "" {
		img.Format = format
	}

	p.log.Debug("probed image size",
		zap.String("path", img.Path),
		zap.String("format", format),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height))
	return nil
}
