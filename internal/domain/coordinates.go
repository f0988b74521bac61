package domain

// Immutable geographic coordinates (latitude, longitude) in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lat, lon] for API output.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lat, c.Lon} }

// Valid reports whether the coordinates fall inside the WGS-84 range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
