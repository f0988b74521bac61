package dto

// DeliveryDate is YYYY-MM-DD; empty means today.
type OptimizeDeliveriesRequest struct {
	DeliveryDate          string                `json:"delivery_date"`
	StartLocation         *StartLocationRequest `json:"start_location"`
	MaxDeliveriesPerRoute int                   `json:"max_deliveries_per_route"`
}

type OptimizeDeliveriesResponse struct {
	DeliveryDate    string          `json:"delivery_date"`
	Routes          []RouteResponse `json:"routes"`
	TotalRoutes     int             `json:"total_routes"`
	TotalDeliveries int             `json:"total_deliveries"`
}

type ZoneResponse struct {
	Zone string `json:"zone"`
}

type ZoneCountResponse struct {
	Zone          string `json:"zone"`
	DeliveryCount int    `json:"delivery_count"`
}

type ZoneSummaryResponse struct {
	DeliveryDate string              `json:"delivery_date"`
	Zones        []ZoneCountResponse `json:"zones"`
}
