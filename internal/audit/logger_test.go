package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"searchuser-api/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	err     error
}

func (r *memAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, a)
	return nil
}

func (r *memAuditRepo) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditLog
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, func(ctx context.Context) string { return "10.0.0.1" })

	l.LogEvent(context.Background(), "u1", "signin_success", "user", "")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" {
		t.Error("entry id is empty")
	}
	if e.UserID != "u1" || e.Action != "signin_success" || e.Resource != "user" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.IP != "10.0.0.1" {
		t.Errorf("ip = %q, want 10.0.0.1", e.IP)
	}
	if e.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestLogger_NilIPExtractor(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, nil)

	l.LogEvent(context.Background(), "u1", "signup", "user", "")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want unknown", repo.entries[0].IP)
	}
}

func TestLogger_BestEffort(t *testing.T) {
	repo := &memAuditRepo{err: errors.New("db down")}
	l := NewLogger(repo, nil)

	// Must not panic or surface the error.
	l.LogEvent(context.Background(), "u1", "signup", "user", "")
}

func TestLogger_NilRepo(t *testing.T) {
	l := NewLogger(nil, nil)
	l.LogEvent(context.Background(), "u1", "signup", "user", "")

	var nilLogger *Logger
	nilLogger.LogEvent(context.Background(), "u1", "signup", "user", "")
}
