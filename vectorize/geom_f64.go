package vectorize

// Rectangle is a detection box in pixel coordinates: top-left corner plus size.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// Point is a joint position in pixel coordinates.
type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

// Size is the frame resolution in pixels.
type Size struct {
	Width  float64
	Height float64
}

// scale divides coordinates by the frame size (or by 1 when normalization is off).
type scale struct {
	w float64
	h float64
}

func (s scale) rect(r Rectangle) Rectangle {
	return Rectangle{
		X:      r.X / s.w,
		Y:      r.Y / s.h,
		Width:  r.Width / s.w,
		Height: r.Height / s.h,
	}
}

func (s scale) point(p Point) Point {
	return Point{X: p.X / s.w, Y: p.Y / s.h}
}

func absFloat64(a float64) float64 {
	if a < 0 {
		return -a
	}
	return a
}
