package wind

// Twa is the true wind angle of a heading, in (-180,180]. Negative angles
// have the wind on port.
func Twa(heading, wind float64) float64 {
	twa := wind - heading
	for twa <= -180 {
		twa += 360
	}
	for twa > 180 {
		twa -= 360
	}

	return twa
}

// Heading is the heading giving a true wind angle, in [0,360).
func Heading(twa, wind float64) float64 {
	heading := wind - twa
	for heading < 0 {
		heading += 360
	}
	for heading >= 360 {
		heading -= 360
	}

	return heading
}
