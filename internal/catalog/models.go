package catalog

// Part is a stocked part with its costing.
type Part struct {
	ID         int64   `json:"part_id"`
	Name       string  `json:"part_name"`
	Number     string  `json:"part_number"`
	UnitCost   float64 `json:"unit_cost"`
	UnitPrice  float64 `json:"unit_price"`
	PictureRef string  `json:"part_pic"`
}

// Travel is the travel time to reach a service location.
type Travel struct {
	ID       int64   `json:"id"`
	Location string  `json:"location"`
	Hours    float64 `json:"travel_time_hours"`
}
