package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"labtrust-hq/calibra/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audits.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite storage backend. It initializes the
// schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", config.Path, err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the schema, WAL mode, and busy timeout.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		timeoutMs := int(s.config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", timeoutMs)); err != nil {
			return fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.db.Exec(
		"INSERT OR IGNORE INTO schema_version (version) VALUES (?)", SchemaVersion,
	); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// CreateAudit implements Store.
func (s *SQLiteStore) CreateAudit(ctx context.Context, a *audit.Audit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audits (id, laboratory_id, status, opened_on, closed_on,
			previous_audit_id, calculated_star_level, auditor_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.LaboratoryID, string(a.Status), a.OpenedOn, a.ClosedOn,
		nullable(a.PreviousAuditID), a.CalculatedStarLevel, a.AuditorNotes,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit %s: %w", a.ID, err)
	}
	return nil
}

// GetAudit implements Store.
func (s *SQLiteStore) GetAudit(ctx context.Context, id string) (*audit.Audit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, laboratory_id, status, opened_on, closed_on,
			previous_audit_id, calculated_star_level, auditor_notes
		FROM audits WHERE id = ?`, id)
	return scanAudit(row, id)
}

// UpdateAudit implements Store.
func (s *SQLiteStore) UpdateAudit(ctx context.Context, a *audit.Audit) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE audits SET laboratory_id = ?, status = ?, opened_on = ?,
			closed_on = ?, previous_audit_id = ?, calculated_star_level = ?,
			auditor_notes = ?
		WHERE id = ?`,
		a.LaboratoryID, string(a.Status), a.OpenedOn, a.ClosedOn,
		nullable(a.PreviousAuditID), a.CalculatedStarLevel, a.AuditorNotes, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update audit %s: %w", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update audit %s: %w", a.ID, err)
	}
	if n == 0 {
		return audit.NewNotFoundError("audit", a.ID)
	}
	return nil
}

// ListAudits implements Store.
func (s *SQLiteStore) ListAudits(ctx context.Context) ([]*audit.Audit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, laboratory_id, status, opened_on, closed_on,
			previous_audit_id, calculated_star_level, auditor_notes
		FROM audits ORDER BY opened_on DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	defer rows.Close()
	return scanAudits(rows)
}

// ListAuditsByLaboratory implements Store.
func (s *SQLiteStore) ListAuditsByLaboratory(ctx context.Context, laboratoryID string) ([]*audit.Audit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, laboratory_id, status, opened_on, closed_on,
			previous_audit_id, calculated_star_level, auditor_notes
		FROM audits WHERE laboratory_id = ? ORDER BY opened_on DESC, id`, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits for laboratory %s: %w", laboratoryID, err)
	}
	defer rows.Close()
	return scanAudits(rows)
}

// PutResponse implements Store.
func (s *SQLiteStore) PutResponse(ctx context.Context, r *audit.Response) error {
	refs, err := json.Marshal(r.EvidenceRefs)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence refs: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO responses (audit_id, question_id, answer, comment, na_justification, evidence_refs)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(audit_id, question_id) DO UPDATE SET
			answer = excluded.answer,
			comment = excluded.comment,
			na_justification = excluded.na_justification,
			evidence_refs = excluded.evidence_refs`,
		r.AuditID, r.QuestionID, string(r.Answer), r.Comment, r.NAJustification, string(refs),
	)
	if err != nil {
		return fmt.Errorf("failed to put response %s/%s: %w", r.AuditID, r.QuestionID, err)
	}
	return nil
}

// GetResponse implements Store.
func (s *SQLiteStore) GetResponse(ctx context.Context, auditID, questionID string) (*audit.Response, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT audit_id, question_id, answer, comment, na_justification, evidence_refs
		FROM responses WHERE audit_id = ? AND question_id = ?`, auditID, questionID)

	r, err := scanResponse(row)
	if err == sql.ErrNoRows {
		return nil, audit.NewNotFoundError("response", auditID+"/"+questionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get response %s/%s: %w", auditID, questionID, err)
	}
	return r, nil
}

// ListResponses implements Store.
func (s *SQLiteStore) ListResponses(ctx context.Context, auditID string) ([]*audit.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT audit_id, question_id, answer, comment, na_justification, evidence_refs
		FROM responses WHERE audit_id = ? ORDER BY question_id`, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses for audit %s: %w", auditID, err)
	}
	defer rows.Close()

	var out []*audit.Response
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PutSubResponse implements Store.
func (s *SQLiteStore) PutSubResponse(ctx context.Context, r *audit.SubResponse) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sub_responses (audit_id, sub_question_id, answer)
		VALUES (?, ?, ?)
		ON CONFLICT(audit_id, sub_question_id) DO UPDATE SET answer = excluded.answer`,
		r.AuditID, r.SubQuestionID, string(r.Answer),
	)
	if err != nil {
		return fmt.Errorf("failed to put sub-response %s/%s: %w", r.AuditID, r.SubQuestionID, err)
	}
	return nil
}

// GetSubResponse implements Store.
func (s *SQLiteStore) GetSubResponse(ctx context.Context, auditID, subQuestionID string) (*audit.SubResponse, error) {
	var r audit.SubResponse
	var answer string
	err := s.db.QueryRowContext(ctx, `
		SELECT audit_id, sub_question_id, answer
		FROM sub_responses WHERE audit_id = ? AND sub_question_id = ?`,
		auditID, subQuestionID,
	).Scan(&r.AuditID, &r.SubQuestionID, &answer)
	if err == sql.ErrNoRows {
		return nil, audit.NewNotFoundError("sub_response", auditID+"/"+subQuestionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sub-response %s/%s: %w", auditID, subQuestionID, err)
	}
	r.Answer = audit.Answer(answer)
	return &r, nil
}

// ListSubResponses implements Store.
func (s *SQLiteStore) ListSubResponses(ctx context.Context, auditID string) ([]*audit.SubResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT audit_id, sub_question_id, answer
		FROM sub_responses WHERE audit_id = ? ORDER BY sub_question_id`, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-responses for audit %s: %w", auditID, err)
	}
	defer rows.Close()

	var out []*audit.SubResponse
	for rows.Next() {
		var r audit.SubResponse
		var answer string
		if err := rows.Scan(&r.AuditID, &r.SubQuestionID, &answer); err != nil {
			return nil, fmt.Errorf("failed to scan sub-response: %w", err)
		}
		r.Answer = audit.Answer(answer)
		out = append(out, &r)
	}
	return out, rows.Err()
}

// AddTeamMember implements Store.
func (s *SQLiteStore) AddTeamMember(ctx context.Context, m *audit.TeamMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_members (audit_id, user_id, role) VALUES (?, ?, ?)`,
		m.AuditID, m.UserID, string(m.Role),
	)
	if err != nil {
		return fmt.Errorf("failed to add team member %s/%s: %w", m.AuditID, m.UserID, err)
	}
	return nil
}

// RemoveTeamMember implements Store.
func (s *SQLiteStore) RemoveTeamMember(ctx context.Context, auditID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM team_members WHERE audit_id = ? AND user_id = ?", auditID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member %s/%s: %w", auditID, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove team member %s/%s: %w", auditID, userID, err)
	}
	if n == 0 {
		return audit.NewNotFoundError("team_member", auditID+"/"+userID)
	}
	return nil
}

// ListTeamMembers implements Store.
func (s *SQLiteStore) ListTeamMembers(ctx context.Context, auditID string) ([]*audit.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT audit_id, user_id, role
		FROM team_members WHERE audit_id = ? ORDER BY user_id`, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members for audit %s: %w", auditID, err)
	}
	defer rows.Close()

	var out []*audit.TeamMember
	for rows.Next() {
		var m audit.TeamMember
		var role string
		if err := rows.Scan(&m.AuditID, &m.UserID, &role); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		m.Role = audit.Role(role)
		out = append(out, &m)
	}
	return out, rows.Err()
}

// CreateFinding implements Store.
func (s *SQLiteStore) CreateFinding(ctx context.Context, f *audit.Finding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO findings (id, audit_id, question_id, section_id, severity, title, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.AuditID, nullable(f.QuestionID), f.SectionID, string(f.Severity), f.Title, f.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create finding %s: %w", f.ID, err)
	}
	return nil
}

// ListFindings implements Store.
func (s *SQLiteStore) ListFindings(ctx context.Context, auditID string) ([]*audit.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, audit_id, question_id, section_id, severity, title, description
		FROM findings WHERE audit_id = ?`, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings for audit %s: %w", auditID, err)
	}
	defer rows.Close()

	var out []*audit.Finding
	for rows.Next() {
		var f audit.Finding
		var questionID sql.NullString
		var severity string
		if err := rows.Scan(&f.ID, &f.AuditID, &questionID, &f.SectionID, &severity, &f.Title, &f.Description); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.QuestionID = questionID.String
		f.Severity = audit.Severity(severity)
		out = append(out, &f)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAudit(row scanner, id string) (*audit.Audit, error) {
	var a audit.Audit
	var status string
	var closedOn sql.NullTime
	var previousAuditID sql.NullString
	err := row.Scan(&a.ID, &a.LaboratoryID, &status, &a.OpenedOn, &closedOn,
		&previousAuditID, &a.CalculatedStarLevel, &a.AuditorNotes)
	if err == sql.ErrNoRows {
		return nil, audit.NewNotFoundError("audit", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit: %w", err)
	}
	a.Status = audit.Status(status)
	if closedOn.Valid {
		t := closedOn.Time
		a.ClosedOn = &t
	}
	a.PreviousAuditID = previousAuditID.String
	return &a, nil
}

func scanAudits(rows *sql.Rows) ([]*audit.Audit, error) {
	var out []*audit.Audit
	for rows.Next() {
		a, err := scanAudit(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanResponse(row scanner) (*audit.Response, error) {
	var r audit.Response
	var answer string
	var refs sql.NullString
	if err := row.Scan(&r.AuditID, &r.QuestionID, &answer, &r.Comment, &r.NAJustification, &refs); err != nil {
		return nil, err
	}
	r.Answer = audit.Answer(answer)
	if refs.Valid && refs.String != "" && refs.String != "null" {
		if err := json.Unmarshal([]byte(refs.String), &r.EvidenceRefs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evidence refs: %w", err)
		}
	}
	return &r, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
