package domain

import "time"

// AuditLog represents one recorded account event (sign-in, sign-up,
// denied lookup).
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
