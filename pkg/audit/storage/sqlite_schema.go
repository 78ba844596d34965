package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Audits table
CREATE TABLE IF NOT EXISTS audits (
    id TEXT PRIMARY KEY,
    laboratory_id TEXT NOT NULL,
    status TEXT NOT NULL,
    opened_on TIMESTAMP NOT NULL,
    closed_on TIMESTAMP,
    previous_audit_id TEXT,
    calculated_star_level INTEGER NOT NULL DEFAULT 0,
    auditor_notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_audits_laboratory ON audits(laboratory_id);
CREATE INDEX IF NOT EXISTS idx_audits_status ON audits(status);
CREATE INDEX IF NOT EXISTS idx_audits_opened_on ON audits(opened_on);

-- Responses table (one row per audit/question)
CREATE TABLE IF NOT EXISTS responses (
    audit_id TEXT NOT NULL,
    question_id TEXT NOT NULL,
    answer TEXT NOT NULL,
    comment TEXT,
    na_justification TEXT,
    evidence_refs TEXT,
    PRIMARY KEY (audit_id, question_id)
);

-- Sub-responses table (one row per audit/sub-question)
CREATE TABLE IF NOT EXISTS sub_responses (
    audit_id TEXT NOT NULL,
    sub_question_id TEXT NOT NULL,
    answer TEXT NOT NULL,
    PRIMARY KEY (audit_id, sub_question_id)
);

-- Review team table
CREATE TABLE IF NOT EXISTS team_members (
    audit_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL,
    PRIMARY KEY (audit_id, user_id)
);

-- Findings table
CREATE TABLE IF NOT EXISTS findings (
    id TEXT PRIMARY KEY,
    audit_id TEXT NOT NULL,
    question_id TEXT,
    section_id TEXT NOT NULL,
    severity TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT
);

CREATE INDEX IF NOT EXISTS idx_findings_audit ON findings(audit_id);
CREATE INDEX IF NOT EXISTS idx_findings_question ON findings(audit_id, question_id);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
