package chart

import (
	"math"

	"MoexLens/internal/model"
)

// Minimum CSS size of the chart.
const (
	MinWidth  = 280
	MinHeight = 180
)

// Upper bounds on geometry accepted from callers outside the process.
const (
	MaxSide       = 4096
	MaxPixelRatio = 4
)

// Resize sizes the backing store of s for the host box and device pixel
// ratio and installs the matching scale transform. The CSS size is floored
// at MinWidth×MinHeight and capped at MaxSide. A non-positive or non-finite
// ratio counts as 1; larger ratios are capped at MaxPixelRatio.
func Resize(s *Surface, host model.HostBox, pixelRatio float64) model.ViewportState {
	vp := Viewport(host, pixelRatio)
	devW := int(math.Ceil(vp.CSSWidth * vp.DevicePixelRatio))
	devH := int(math.Ceil(vp.CSSHeight * vp.DevicePixelRatio))
	s.reset(devW, devH, vp.CSSWidth, vp.CSSHeight, vp.DevicePixelRatio)
	return vp
}

// Viewport resolves the effective geometry Resize would apply.
func Viewport(host model.HostBox, pixelRatio float64) model.ViewportState {
	ratio := pixelRatio
	if !(ratio > 0) || math.IsInf(ratio, 1) {
		ratio = 1
	}
	ratio = math.Min(ratio, MaxPixelRatio)
	w := host.Width
	if !(w >= MinWidth) || math.IsInf(w, 1) {
		w = MinWidth
	}
	h := host.Height
	if !(h >= MinHeight) || math.IsInf(h, 1) {
		h = MinHeight
	}
	w, h = math.Min(w, MaxSide), math.Min(h, MaxSide)
	return model.ViewportState{CSSWidth: w, CSSHeight: h, DevicePixelRatio: ratio}
}
