package domain

import "strings"

const ZoneOther = "Other"

var (
	SurreyCentroid    = Coordinates{Lat: 49.1913, Lon: -122.8490}
	VancouverCentroid = Coordinates{Lat: 49.2827, Lon: -123.1207}
	BurnabyCentroid   = Coordinates{Lat: 49.2488, Lon: -122.9805}
	LangleyCentroid   = Coordinates{Lat: 49.1042, Lon: -122.6604}
)

// Checked in order; the first place name found in the address or city wins.
// Reordering changes the zone of addresses that mention more than one place.
var knownZones = []struct {
	needle string
	name   string
}{
	{"surrey", "Surrey"},
	{"vancouver", "Vancouver"},
	{"burnaby", "Burnaby"},
	{"richmond", "Richmond"},
	{"langley", "Langley"},
	{"coquitlam", "Coquitlam"},
}

var zoneCentroids = map[string]Coordinates{
	"Surrey":    SurreyCentroid,
	"Vancouver": VancouverCentroid,
	"Burnaby":   BurnabyCentroid,
}

// ClassifyZone maps a free-text address and optional city to a coarse zone.
// Matching is case-insensitive substring containment. Unmatched input is "Other".
func ClassifyZone(address, city string) string {
	address = strings.ToLower(address)
	city = strings.ToLower(city)

	for _, z := range knownZones {
		if strings.Contains(address, z.needle) || strings.Contains(city, z.needle) {
			return z.name
		}
	}

	return ZoneOther
}

// ZoneCentroid returns the representative coordinate used when a stop in
// the given zone cannot be geocoded. Zones without an entry share the
// default start location.
func ZoneCentroid(zone string) Coordinates {
	if c, ok := zoneCentroids[zone]; ok {
		return c
	}
	return DefaultStartLocation.Coords
}

// KnownZones lists the zone labels in classification order, followed by "Other".
func KnownZones() []string {
	out := make([]string, 0, len(knownZones)+1)
	for _, z := range knownZones {
		out = append(out, z.name)
	}
	return append(out, ZoneOther)
}
