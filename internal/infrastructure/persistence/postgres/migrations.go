// Package postgres implements the PostgreSQL persistence layer for the
// academy ledger.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE LEDGER
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students and payments tables
-- Version: 001

-- Students ledger. Balances are never stored: they are always derived as
-- programme_fee minus the sum of the student's payments.
CREATE TABLE IF NOT EXISTS students (
    reg_number VARCHAR(40) PRIMARY KEY,
    name VARCHAR(150) NOT NULL,
    age INTEGER NOT NULL DEFAULT 0,
    gender VARCHAR(20) NOT NULL,
    programme VARCHAR(120) NOT NULL,
    start_date VARCHAR(20) NOT NULL DEFAULT '',
    duration VARCHAR(40) NOT NULL DEFAULT '',
    schedule VARCHAR(40) NOT NULL DEFAULT '',
    programme_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
    registration_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    status VARCHAR(20) NOT NULL DEFAULT 'Active',
    scholarship BOOLEAN NOT NULL DEFAULT FALSE,

    CONSTRAINT students_valid_status CHECK (status IN ('Active', 'Graduated', 'Dropped Out')),
    CONSTRAINT students_non_negative_age CHECK (age >= 0),
    CONSTRAINT students_non_negative_fee CHECK (programme_fee >= 0)
);

CREATE INDEX IF NOT EXISTS idx_students_programme ON students(programme);
CREATE INDEX IF NOT EXISTS idx_students_status ON students(status);
CREATE INDEX IF NOT EXISTS idx_students_schedule ON students(schedule);
CREATE INDEX IF NOT EXISTS idx_students_registration_date ON students(registration_date DESC);

-- Prefix scans back the registration serial reservation
-- (reg_number LIKE 'IMPTECH-WD-2025-%').
CREATE INDEX IF NOT EXISTS idx_students_reg_prefix ON students(reg_number varchar_pattern_ops);

-- Payments. receipt_number is globally unique; inserting a duplicate is the
-- signal that a concurrent writer won the daily serial and the caller must
-- recompute and retry.
CREATE TABLE IF NOT EXISTS payments (
    payment_id BIGSERIAL PRIMARY KEY,
    reg_number VARCHAR(40) NOT NULL REFERENCES students(reg_number),
    amount NUMERIC(12,2) NOT NULL,
    payment_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    receipt_number VARCHAR(30) NOT NULL UNIQUE,
    note TEXT NOT NULL DEFAULT '',

    CONSTRAINT payments_positive_amount CHECK (amount > 0)
);

CREATE INDEX IF NOT EXISTS idx_payments_reg_number ON payments(reg_number);
CREATE INDEX IF NOT EXISTS idx_payments_payment_date ON payments(payment_date DESC);
CREATE INDEX IF NOT EXISTS idx_payments_receipt_prefix ON payments(receipt_number varchar_pattern_ops);
`

const migration001Down = `
DROP TABLE IF EXISTS payments;
DROP TABLE IF EXISTS students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE NOTIFICATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create notifications table
-- Version: 002

CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY,
    reg_number VARCHAR(40) NOT NULL REFERENCES students(reg_number) ON DELETE CASCADE,
    message TEXT NOT NULL,
    type VARCHAR(30) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    is_read BOOLEAN NOT NULL DEFAULT FALSE,

    CONSTRAINT notifications_valid_type CHECK (type IN ('payment_reminder', 'registration'))
);

CREATE INDEX IF NOT EXISTS idx_notifications_reg_number ON notifications(reg_number);
CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(created_at DESC) WHERE is_read = FALSE;
CREATE INDEX IF NOT EXISTS idx_notifications_reminders ON notifications(reg_number, created_at DESC) WHERE type = 'payment_reminder';
`

const migration002Down = `
DROP TABLE IF EXISTS notifications;
`

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_ledger",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_notifications",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}
