// Package report stores mission reports in each player's inbox.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/joaodperes/stardust/internal/domain/economy"
	"github.com/joaodperes/stardust/internal/domain/flight"
	"github.com/joaodperes/stardust/internal/domain/galaxy"
	"github.com/joaodperes/stardust/internal/domain/planet"
)

// Kind identifies what a report describes.
type Kind string

const (
	KindSpyResult        Kind = "spy_result"
	KindAlert            Kind = "alert"
	KindTransportReceipt Kind = "transport_receipt"
	KindDonationReceipt  Kind = "donation_receipt"
	KindColonizeResult   Kind = "colonize_result"
	KindFleetLost        Kind = "fleet_lost"
	KindResolutionFailed Kind = "resolution_failed"
)

// Report is one inbox entry.
type Report struct {
	ID        string            `json:"id"`
	OwnerID   string            `json:"owner_id"`
	Kind      Kind              `json:"kind"`
	MissionID string            `json:"mission_id,omitempty"`
	Target    galaxy.Coordinate `json:"target"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   Payload           `json:"payload"`
	Read      bool              `json:"read"`
}

// Payload carries the kind-specific body. Spy results fill the tiers the
// attacker's espionage level unlocked; the rest stay nil.
type Payload struct {
	Message      string                      `json:"message,omitempty"`
	TargetPlayer string                      `json:"target_player,omitempty"`
	TargetName   string                      `json:"target_name,omitempty"`
	Resources    *economy.Resources          `json:"resources,omitempty"`
	Buildings    economy.Levels              `json:"buildings,omitempty"`
	Fleet        flight.Manifest             `json:"fleet,omitempty"`
	Research     map[planet.ResearchKind]int `json:"research,omitempty"`
	WasDetected  bool                        `json:"was_detected,omitempty"`
	Detection    float64                     `json:"detection_chance,omitempty"`
	Delivered    *economy.Resources          `json:"delivered,omitempty"`
	Ships        flight.Manifest             `json:"ships,omitempty"`
	Success      *bool                       `json:"success,omitempty"`
}

// Page is one page of an inbox, newest first.
type Page struct {
	Reports  []Report `json:"reports"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Total    int      `json:"total"`
	Unread   int      `json:"unread"`
	HasMore  bool     `json:"has_more"`
}

func decode(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("decoding report: %w", err)
	}
	return r, nil
}
