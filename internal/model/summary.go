package model

// Summary holds the headline inventory numbers.
type Summary struct {
	TotalItems     int            `json:"total_items"`
	ByStatus       map[string]int `json:"by_status"`
	MovementsToday int            `json:"movements_today"`
}
