package dto

type DeliveryRequest struct {
	ID                   int    `json:"id"`
	DeliveryAddress      string `json:"delivery_address"`
	City                 string `json:"city"`
	DeliveryInstructions string `json:"delivery_instructions"`
	CustomerName         string `json:"customer_name"`
	CustomerPhone        string `json:"customer_phone"`
}

// Latitude and Longitude are pointers so a missing value can be told apart
// from 0.
type StartLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

type OptimizeRouteRequest struct {
	Deliveries    []DeliveryRequest     `json:"deliveries"`
	StartLocation *StartLocationRequest `json:"start_location"`
}

type OptimizeMultipleRequest struct {
	Deliveries            []DeliveryRequest     `json:"deliveries"`
	StartLocation         *StartLocationRequest `json:"start_location"`
	MaxDeliveriesPerRoute int                   `json:"max_deliveries_per_route"`
}

type RouteItemResponse struct {
	DeliveryID             int       `json:"delivery_id"`
	Sequence               int       `json:"sequence"`
	CustomerName           string    `json:"customer_name"`
	CustomerPhone          string    `json:"customer_phone"`
	Address                string    `json:"address"`
	EstimatedTime          string    `json:"estimated_time"`
	DeliveryInstructions   string    `json:"delivery_instructions"`
	Coordinates            []float64 `json:"coordinates"`
	DistanceFromPreviousKm float64   `json:"distance_from_previous_km"`
}

type StartLocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type EfficiencyResponse struct {
	EfficiencyScore        float64 `json:"efficiency_score"`
	AvgDistancePerDelivery float64 `json:"avg_distance_per_delivery"`
	TotalStops             int     `json:"total_stops"`
	TotalDistance          float64 `json:"total_distance"`
}

type RouteResponse struct {
	RouteID                  string                `json:"route_id,omitempty"`
	Zone                     string                `json:"zone,omitempty"`
	OptimizedRoute           []RouteItemResponse   `json:"optimized_route"`
	TotalDistanceKm          float64               `json:"total_distance_km"`
	EstimatedDurationMinutes int                   `json:"estimated_duration_minutes"`
	EstimatedDuration        string                `json:"estimated_duration"`
	StartLocation            StartLocationResponse `json:"start_location"`
	AlgorithmUsed            string                `json:"algorithm_used"`
	TotalDeliveries          int                   `json:"total_deliveries"`
	GeocodeFallbacks         int                   `json:"geocode_fallbacks"`
	Efficiency               EfficiencyResponse    `json:"efficiency"`
}

type MultiRouteResponse struct {
	Routes      []RouteResponse `json:"routes"`
	TotalRoutes int             `json:"total_routes"`
}
