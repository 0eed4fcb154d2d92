// Package middleware provides the HTTP middleware chain: panic recovery,
// client IP capture, request logging, and bearer token authentication.
package middleware

import "context"

type contextKey struct{ name string }

var (
	subjectKey         = contextKey{"subject"}
	subjectRecorderKey = contextKey{"subject_recorder"}
	clientIPKey        = contextKey{"client_ip"}
)

// subjectRecorder makes the subject visible to middleware that wrapped the
// request before authentication ran. Auth derives a new request when it
// attaches the subject, so outer middleware never sees that context; the
// recorder is a shared cell both sides reach.
type subjectRecorder struct{ id string }

// WithSubjectRecorder returns a context carrying an empty subject cell.
// Installed by Logging so the request line can include the subject even
// though authentication happens further down the chain.
func WithSubjectRecorder(ctx context.Context) context.Context {
	return context.WithValue(ctx, subjectRecorderKey, &subjectRecorder{})
}

// WithSubject returns a context carrying the validated token subject
// (user id). Handlers read it via GetSubject. If a subject cell is present
// it is filled as well, so upstream middleware sees the subject too.
func WithSubject(ctx context.Context, userID string) context.Context {
	if rec, ok := ctx.Value(subjectRecorderKey).(*subjectRecorder); ok {
		rec.id = userID
	}
	return context.WithValue(ctx, subjectKey, userID)
}

// GetSubject returns the token subject from context and true if set;
// otherwise "", false.
func GetSubject(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(subjectKey).(string); ok {
		return v, ok
	}
	if rec, ok := ctx.Value(subjectRecorderKey).(*subjectRecorder); ok && rec.id != "" {
		return rec.id, true
	}
	return "", false
}

// WithClientIP returns a context carrying the request's client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP returns the client IP from context, or "" if not set.
func GetClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}
