package tools

// Describe a lux reading the way people talk about the light in a room
func DescribeLightLevel(lux float64) string {
	switch {
	case lux < 1:
		return "Very dark"
	case lux < 50:
		return "Dark"
	case lux < 200:
		return "Dim"
	case lux < 500:
		return "Normal indoor"
	case lux < 1000:
		return "Bright indoor"
	case lux < 10000:
		return "Very bright"
	default:
		return "Direct sunlight"
	}
}
