// Package models defines the admin notification queue items.
package models

import (
	"fmt"
	"strings"
	"time"

	dErrors "certledger/pkg/domain-errors"
)

// Kind says why an admin is being notified.
type Kind string

const (
	KindSubmitted  Kind = "submitted"
	KindReminder   Kind = "reminder"
	KindMintFailed Kind = "mint_failed"
)

// Status is pending until an admin marks the item seen. Seen is terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusSeen    Status = "seen"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusSeen:
		return st, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown notification status %q", s))
	}
}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSubmitted, KindReminder, KindMintFailed:
		return k, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown notification kind %q", s))
	}
}

// NotificationItem is an append-only entry in the admin queue.
type NotificationItem struct {
	ID        string     `json:"id"`
	RequestID string     `json:"requestId"`
	Kind      Kind       `json:"kind"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"createdAt"`
	Status    Status     `json:"status"`
	SeenAt    *time.Time `json:"seenAt,omitempty"`
}

func (n *NotificationItem) Clone() *NotificationItem {
	cp := *n
	if n.SeenAt != nil {
		t := *n.SeenAt
		cp.SeenAt = &t
	}
	return &cp
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Status    Status
	RequestID string
	Kind      Kind
}

func (f Filter) Matches(n *NotificationItem) bool {
	if f.Status != "" && n.Status != f.Status {
		return false
	}
	if f.RequestID != "" && n.RequestID != f.RequestID {
		return false
	}
	if f.Kind != "" && n.Kind != f.Kind {
		return false
	}
	return true
}

// Less orders items by createdAt, then id.
func Less(a, b *NotificationItem) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
