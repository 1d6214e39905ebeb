package model

// HostBox is the size of the element hosting the chart, in CSS pixels.
type HostBox struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewportState describes the chart geometry: CSS size and device pixel ratio.
type ViewportState struct {
	CSSWidth         float64 `json:"css_width"`
	CSSHeight        float64 `json:"css_height"`
	DevicePixelRatio float64 `json:"device_pixel_ratio"`
}

func (v ViewportState) Host() HostBox {
	return HostBox{Width: v.CSSWidth, Height: v.CSSHeight}
}
