package domain

// Represents a single delivery destination supplied by the caller.
// The optimizer only reads Address and City; the remaining fields are
// echoed into the route output so the caller can render it without a
// second lookup.
type DeliveryStop struct {
	ID            int
	Address       string
	City          string
	Instructions  string
	CustomerName  string
	CustomerPhone string
}

// Fixed point a route begins from. It occupies index 0 of every tour and
// is never part of the returned stops.
type StartLocation struct {
	Coords  Coordinates
	Address string
}

// The depot used when the caller has no better start location.
var DefaultStartLocation = StartLocation{
	Coords:  LangleyCentroid,
	Address: "Langley, BC, Canada",
}
