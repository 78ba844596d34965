package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"labtrust-hq/calibra/pkg/audit"
)

// Event marks why a snapshot was recorded.
type Event string

const (
	// EventClosed records the score frozen at closure.
	EventClosed Event = "closed"
	// EventReopened marks the point an audit was reopened; its frozen score
	// is no longer current.
	EventReopened Event = "reopened"
)

// Snapshot is one ledger entry.
type Snapshot struct {
	AuditID             string    `json:"audit_id"`
	LaboratoryID        string    `json:"laboratory_id"`
	Event               Event     `json:"event"`
	Earned              float64   `json:"earned"`
	AdjustedDenominator int       `json:"adjusted_denominator"`
	NAPointsExcluded    int       `json:"na_points_excluded"`
	Percentage          float64   `json:"percentage"`
	StarLevel           int       `json:"star_level"`
	RecordedAt          time.Time `json:"recorded_at"`
}

// NewSnapshot builds a closure snapshot from an audit and its frozen score.
func NewSnapshot(a *audit.Audit, score *audit.Score, event Event, recordedAt time.Time) *Snapshot {
	return &Snapshot{
		AuditID:             a.ID,
		LaboratoryID:        a.LaboratoryID,
		Event:               event,
		Earned:              score.Earned,
		AdjustedDenominator: score.AdjustedDenominator,
		NAPointsExcluded:    score.NAPointsExcluded,
		Percentage:          score.Percentage,
		StarLevel:           score.StarLevel,
		RecordedAt:          recordedAt,
	}
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS score_snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    audit_id TEXT NOT NULL,
    laboratory_id TEXT NOT NULL,
    event TEXT NOT NULL,
    earned REAL NOT NULL,
    adjusted_denominator INTEGER NOT NULL,
    na_points_excluded INTEGER NOT NULL,
    percentage REAL NOT NULL,
    star_level INTEGER NOT NULL,
    recorded_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_audit ON score_snapshots(audit_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_laboratory ON score_snapshots(laboratory_id);
`

// Ledger is an append-only score-snapshot store.
type Ledger struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) a ledger at the given path.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history ledger %q: %w", path, err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", err)
	}

	logger := slog.Default().With("component", "audit.history")
	logger.Info("history ledger opened", "path", path)

	return &Ledger{db: db, logger: logger}, nil
}

// Append records a snapshot. Ledger rows are never updated or deleted.
func (l *Ledger) Append(ctx context.Context, s *Snapshot) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO score_snapshots (audit_id, laboratory_id, event, earned,
			adjusted_denominator, na_points_excluded, percentage, star_level, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.AuditID, s.LaboratoryID, string(s.Event), s.Earned,
		s.AdjustedDenominator, s.NAPointsExcluded, s.Percentage, s.StarLevel, s.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append snapshot for audit %s: %w", s.AuditID, err)
	}
	return nil
}

// ForAudit returns the audit's snapshots, oldest first.
func (l *Ledger) ForAudit(ctx context.Context, auditID string) ([]*Snapshot, error) {
	return l.query(ctx, "audit_id = ?", auditID)
}

// ForLaboratory returns the laboratory's snapshots, oldest first.
func (l *Ledger) ForLaboratory(ctx context.Context, laboratoryID string) ([]*Snapshot, error) {
	return l.query(ctx, "laboratory_id = ?", laboratoryID)
}

func (l *Ledger) query(ctx context.Context, where string, arg any) ([]*Snapshot, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT audit_id, laboratory_id, event, earned, adjusted_denominator,
			na_points_excluded, percentage, star_level, recorded_at
		FROM score_snapshots WHERE `+where+` ORDER BY id`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		var s Snapshot
		var event string
		if err := rows.Scan(&s.AuditID, &s.LaboratoryID, &event, &s.Earned,
			&s.AdjustedDenominator, &s.NAPointsExcluded, &s.Percentage, &s.StarLevel, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.Event = Event(event)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Close releases the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
