package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"MoexLens/internal/model"
)

func TestResize_Floors(t *testing.T) {
	s := &Surface{}
	vp := Resize(s, model.HostBox{Width: 100, Height: 50}, 2)

	assert.Equal(t, float64(MinWidth), vp.CSSWidth)
	assert.Equal(t, float64(MinHeight), vp.CSSHeight)
	assert.Equal(t, 560, s.Image().Bounds().Dx())
	assert.Equal(t, 360, s.Image().Bounds().Dy())
	assert.Equal(t, 2.0, s.Scale())
}

func TestResize_CeilsBackingStore(t *testing.T) {
	s := &Surface{}
	Resize(s, model.HostBox{Width: 801.3, Height: 400.2}, 1.5)

	assert.Equal(t, 1202, s.Image().Bounds().Dx())
	assert.Equal(t, 601, s.Image().Bounds().Dy())
	assert.Equal(t, 801.3, s.Width())
	assert.Equal(t, 400.2, s.Height())
}

func TestResize_BadRatio(t *testing.T) {
	for _, ratio := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		s := &Surface{}
		vp := Resize(s, model.HostBox{Width: 300, Height: 200}, ratio)
		assert.Equal(t, 1.0, vp.DevicePixelRatio, "ratio %v", ratio)
		assert.Equal(t, 300, s.Image().Bounds().Dx())
	}
}

func TestResize_NonFiniteHost(t *testing.T) {
	vp := Viewport(model.HostBox{Width: math.NaN(), Height: math.Inf(1)}, 1)
	assert.Equal(t, float64(MinWidth), vp.CSSWidth)
	assert.Equal(t, float64(MinHeight), vp.CSSHeight)
}

func TestResize_ReusesBackingStore(t *testing.T) {
	s := &Surface{}
	Resize(s, model.HostBox{Width: 400, Height: 300}, 1)
	img := s.Image()
	Resize(s, model.HostBox{Width: 400, Height: 300}, 1)
	assert.Same(t, img, s.Image())
	Resize(s, model.HostBox{Width: 500, Height: 300}, 1)
	assert.NotSame(t, img, s.Image())
}

func TestViewport_CapsGeometry(t *testing.T) {
	vp := Viewport(model.HostBox{Width: 1e6, Height: 5000}, 16)
	assert.Equal(t, float64(MaxSide), vp.CSSWidth)
	assert.Equal(t, float64(MaxSide), vp.CSSHeight)
	assert.Equal(t, float64(MaxPixelRatio), vp.DevicePixelRatio)

	s := &Surface{}
	Resize(s, model.HostBox{Width: 1e6, Height: 300}, 4)
	assert.Equal(t, MaxSide*MaxPixelRatio, s.Image().Bounds().Dx())
	assert.Equal(t, 1200, s.Image().Bounds().Dy())
}
