package chart

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"

	"MoexLens/internal/model"
	"MoexLens/internal/normalizer"
)

// EncodePNG writes the surface's backing store as PNG.
func EncodePNG(w io.Writer, s *Surface) error {
	if err := imaging.Encode(w, s.Image(), imaging.PNG); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes the surface to path. The format follows the extension.
func SavePNG(path string, s *Surface) error {
	if err := imaging.Save(s.Image(), path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

// RenderPNG runs the full pipeline for one request: normalise, select,
// size and draw, then encode. It returns the PNG and the window drawn.
func RenderPNG(rows []model.CandleRecord, vp model.ViewportState, r *Renderer) ([]byte, model.RenderWindow, error) {
	c := NewController(r)
	c.last = normalizer.Normalize(rows)
	s := c.Resize(vp.Host(), vp.DevicePixelRatio)

	var buf bytes.Buffer
	if err := EncodePNG(&buf, s); err != nil {
		return nil, model.RenderWindow{}, err
	}
	return buf.Bytes(), c.Window(), nil
}
