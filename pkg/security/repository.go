package security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SecurityEventRepository writes security events to the security_events table.
type SecurityEventRepository struct {
	db *pgxpool.Pool
}

func NewSecurityEventRepository(db *pgxpool.Pool) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

// PersistEvent inserts a security event into the database
func (r *SecurityEventRepository) PersistEvent(ctx context.Context, event SecurityEvent) error {
	var details any
	if len(event.Details) > 0 {
		b, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("marshal security event details: %w", err)
		}
		// Simple protocol sends []byte as bytea; JSONB needs text.
		details = string(b)
	}

	var ip any
	if event.IP != "" {
		ip = event.IP
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO security_events (
			event_type, service, environment, level, subject_type, subject_value,
			ip_address, user_agent, request_id, details, created_at
		) VALUES (
			@event_type, @service, @environment, @level, @subject_type, @subject_value,
			@ip_address, @user_agent, @request_id, @details, @created_at
		)`,
		pgx.NamedArgs{
			"event_type":    string(event.Event),
			"service":       event.Service,
			"environment":   event.Environment,
			"level":         event.Level,
			"subject_type":  event.SubjectType,
			"subject_value": event.SubjectValue,
			"ip_address":    ip,
			"user_agent":    event.UserAgent,
			"request_id":    event.RequestID,
			"details":       details,
			"created_at":    event.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to persist security event: %w", err)
	}
	return nil
}
