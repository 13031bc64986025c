package asset

import (
	"time"

	"github.com/google/uuid"
)

// StatusHistory is an append-only record of one asset status transition
type StatusHistory struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	AssetID    uuid.UUID
	FromStatus Status
	ToStatus   Status
	Reason     string
	ChangedBy  *uuid.UUID
	ChangedAt  time.Time
}

// NewStatusHistory builds the history row for a transition of a
func NewStatusHistory(a *Asset, from, to Status, reason string, changedBy *uuid.UUID) *StatusHistory {
	return &StatusHistory{
		ID:         uuid.New(),
		TenantID:   a.TenantID,
		AssetID:    a.ID,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		ChangedBy:  changedBy,
		ChangedAt:  a.UpdatedAt,
	}
}
