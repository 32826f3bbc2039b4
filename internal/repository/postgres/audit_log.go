package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
)

const securityEventsTable = "gate.security_events"

// AuditLogRepository persists gate security events in PostgreSQL.
type AuditLogRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAuditLogRepository constructs a new audit log repository.
func NewAuditLogRepository(exec pgExecutor) *AuditLogRepository {
	return &AuditLogRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// RecordSecurityEvent inserts one security event row.
func (r *AuditLogRepository) RecordSecurityEvent(ctx context.Context, event domain.SecurityEvent) error {
	metadata, err := marshalMetadata(event.Metadata)
	if err != nil {
		return fmt.Errorf("prepare event metadata: %w", err)
	}

	stmt, args, err := r.builder.Insert(securityEventsTable).
		Columns(
			"event_id",
			"key",
			"kind",
			"occurred_at",
			"path",
			"ip_address",
			"metadata",
		).
		Values(
			event.EventID,
			event.Key,
			event.Kind,
			event.Timestamp,
			nullableString(event.Path),
			nullableString(event.IPAddress),
			metadata,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert security event sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}

	return nil
}

// ListRecentByKey returns the newest events recorded for a gate key.
func (r *AuditLogRepository) ListRecentByKey(ctx context.Context, key string, limit int) ([]domain.SecurityEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	stmt, args, err := r.builder.Select(
		"event_id",
		"key",
		"kind",
		"occurred_at",
		"path",
		"ip_address",
		"metadata",
	).
		From(securityEventsTable).
		Where(squirrel.Eq{"key": key}).
		OrderBy("occurred_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select security events sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select security events: %w", err)
	}
	defer rows.Close()

	var events []domain.SecurityEvent
	for rows.Next() {
		var (
			event    domain.SecurityEvent
			path     sql.NullString
			ip       sql.NullString
			metadata []byte
		)

		if err := rows.Scan(
			&event.EventID,
			&event.Key,
			&event.Kind,
			&event.Timestamp,
			&path,
			&ip,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("scan security event: %w", err)
		}

		if path.Valid {
			event.Path = path.String
		}
		if ip.Valid {
			event.IPAddress = ip.String
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("decode event metadata: %w", err)
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate security events: %w", err)
	}

	return events, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(metadata)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ port.AuditLog = (*AuditLogRepository)(nil)
