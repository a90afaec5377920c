package layout

import "math"

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64
	Height float64
}

// ScaleToBounds fits a natural height/width into a bounding box while keeping
// the aspect ratio. Oversized dimensions are shrunk (height bound first, then
// width bound). An image smaller than the box on both axes is enlarged so that
// its longer natural side touches the box.
func ScaleToBounds(height, width, boundHeight, boundWidth float64) Size {
	if height > boundHeight {
		ratio := width / height
		height = boundHeight
		width = height * ratio
	}

	if width > boundWidth {
		ratio := height / width
		width = boundWidth
		height = width * ratio
	}

	if height > 0 && width > 0 && height < boundHeight && width < boundWidth {
		scale := math.Min(boundHeight/height, boundWidth/width)
		height *= scale
		width *= scale
	}

	return Size{Width: width, Height: height}
}
