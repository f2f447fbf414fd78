package model

import (
	"strings"
	"time"
)

// Site represents a work site ("obra") that can hold tools.
type Site struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Site statuses. Only active is assigned by the core.
const (
	SiteStatusActive = "active"
)

// NoSiteSentinel is the placeholder callers send when no site is selected.
const NoSiteSentinel = "(no site)"

// IsNoSite reports whether a raw site reference means "no site".
func IsNoSite(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || trimmed == NoSiteSentinel
}
