package geocode

import "fmt"

// ErrGeocodingFailed is returned when an address cannot be resolved.
type ErrGeocodingFailed struct {
	Address string
	Reason  string
}

func (e *ErrGeocodingFailed) Error() string {
	return fmt.Sprintf("geocoding failed for address %q: %s", e.Address, e.Reason)
}
