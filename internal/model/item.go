package model

import (
	"strings"
	"time"
)

// Item represents a single physical tool or piece of equipment.
type Item struct {
	ID          int64     `json:"id"`
	Brand       string    `json:"brand"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CurrentSite SiteRef   `json:"current_site"`
	Notes       string    `json:"notes,omitempty"`
	HasPhoto    bool      `json:"has_photo"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemView is an item with its current site resolved to a display name.
type ItemView struct {
	Item
	SiteName string `json:"site_name,omitempty"`
}

// NewItem holds the caller-supplied fields for item creation. Site is a raw
// site name and is resolved before the item is stored.
type NewItem struct {
	Brand    string `json:"brand"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Site     string `json:"site"`
	Notes    string `json:"notes"`
}

// ItemFilter narrows an item listing. Zero values match everything.
type ItemFilter struct {
	Query string
	Site  string
}

// DefaultBrand is stored when no brand is given.
const DefaultBrand = "N/D"

// Item statuses.
const (
	ItemStatusAvailable   = "available"
	ItemStatusInUse       = "in_use"
	ItemStatusMaintenance = "maintenance"
	ItemStatusBroken      = "broken"
)

// ItemStatuses lists the statuses in display order.
var ItemStatuses = []string{
	ItemStatusAvailable,
	ItemStatusInUse,
	ItemStatusMaintenance,
	ItemStatusBroken,
}

// Item categories.
const (
	CategoryElectrical = "electrical"
	CategoryCombustion = "combustion"
	CategoryHandTool   = "hand_tool"
	CategoryMaterial   = "material"
	CategoryEquipment  = "equipment"
)

var codeReplacer = strings.NewReplacer(" ", "_", "-", "_")

// NormalizeCode maps a status or category as typed by a user, such as
// "In Use" or "Hand-tool", to its stored form ("in_use", "hand_tool").
func NormalizeCode(s string) string {
	return codeReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// ValidItemStatus reports whether status is a known item status.
func ValidItemStatus(status string) bool {
	switch status {
	case ItemStatusAvailable, ItemStatusInUse, ItemStatusMaintenance, ItemStatusBroken:
		return true
	}
	return false
}

// ValidCategory reports whether category is a known item category.
func ValidCategory(category string) bool {
	switch category {
	case CategoryElectrical, CategoryCombustion, CategoryHandTool, CategoryMaterial, CategoryEquipment:
		return true
	}
	return false
}
