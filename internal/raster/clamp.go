package raster

// ClampInt clamps v to [0, 255].
func ClampInt(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// ClampFloat32 truncates v toward zero and clamps the result to [0, 255].
func ClampFloat32(v float32) byte {
	if v != v { // NaN
		return 0
	}
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

// ClampFloat64 is ClampFloat32 for float64 sums.
func ClampFloat64(v float64) byte {
	if v != v {
		return 0
	}
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}
