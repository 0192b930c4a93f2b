package augment

// clipFloat64 limits a to [lo, hi]
func clipFloat64(a, lo, hi float64) float64 {
	return minFloat64(maxFloat64(a, lo), hi)
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
