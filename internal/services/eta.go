package services

import (
	"math"
	"time"
)

// ETA policy constants.
const (
	serviceMinutesPerStop = 15
	travelMinutesPerKm    = 3
	minTravelMinutes      = 5
	dayStartHour          = 9
)

// dayStart is the reference departure time every route is scheduled from.
// Only the time of day is meaningful.
func dayStart() time.Time {
	return time.Date(0, time.January, 1, dayStartHour, 0, 0, 0, time.UTC)
}

// travelMinutes converts a leg distance to whole minutes of driving,
// never less than the minimum travel floor.
func travelMinutes(km float64) int {
	return max(minTravelMinutes, int(math.Round(km*travelMinutesPerKm)))
}

// estimateDurationMinutes is the closed-form route duration estimate:
// service time for every stop plus driving time for the full distance.
func estimateDurationMinutes(stops int, totalKm float64) int {
	return stops*serviceMinutesPerStop + int(math.Round(totalKm*travelMinutesPerKm))
}

// nextArrival advances the schedule to the stop at position seq (1-based).
// The first stop only pays service time; later stops pay travel from the
// previous stop plus service time.
func nextArrival(prev time.Time, seq int, legKm float64) time.Time {
	if seq == 1 {
		return prev.Add(serviceMinutesPerStop * time.Minute)
	}
	return prev.Add(time.Duration(travelMinutes(legKm)+serviceMinutesPerStop) * time.Minute)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
