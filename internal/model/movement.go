package model

import (
	"strings"
	"time"
)

// Movement is an immutable ledger record of one item moving to a site.
type Movement struct {
	ID          int64     `json:"id"`
	ItemID      int64     `json:"item_id"`
	Origin      SiteRef   `json:"origin_site"`
	Destination SiteRef   `json:"destination_site"`
	Responsible string    `json:"responsible"`
	Reason      string    `json:"reason"`
	Notes       string    `json:"notes,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// MovementView is a movement joined with its item and resolved site names.
type MovementView struct {
	Movement
	ItemBrand       string `json:"item_brand,omitempty"`
	ItemName        string `json:"item_name,omitempty"`
	OriginName      string `json:"origin_name,omitempty"`
	DestinationName string `json:"destination_name,omitempty"`
}

// NewMovement holds the caller-supplied fields for a transfer. Origin and
// Destination are raw site names.
type NewMovement struct {
	ItemID      int64
	Origin      string
	Destination string
	Responsible string
	Reason      string
	Notes       string
}

// MovementFilter narrows a movement listing. Zero values match everything.
type MovementFilter struct {
	ItemID      int64
	Responsible string
	Since       time.Time
}

// Movement reasons offered to callers. Any other text is accepted as well.
const (
	ReasonSiteNeed             = "Relocation for site need"
	ReasonWorkCompleted        = "Work completed"
	ReasonScheduledMaintenance = "Scheduled maintenance"
	ReasonResourceReassignment = "Resource reassignment"
	ReasonOther                = "Other"
)

// Reasons lists the fixed movement reasons.
var Reasons = []string{
	ReasonSiteNeed,
	ReasonWorkCompleted,
	ReasonScheduledMaintenance,
	ReasonResourceReassignment,
	ReasonOther,
}

// ResolveReason picks the custom text when the caller chose ReasonOther and
// typed something, and the choice itself otherwise.
func ResolveReason(choice, custom string) string {
	if choice == ReasonOther {
		if c := strings.TrimSpace(custom); c != "" {
			return c
		}
	}
	return choice
}
