package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

// SubmissionStatus is the outcome of a draft submission.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "PENDING"
	SubmissionSucceeded SubmissionStatus = "SUCCEEDED"
	SubmissionFailed    SubmissionStatus = "FAILED"
)

// SubmissionRecord mirrors the checkout_submissions table.  One row exists
// per draft that reached the backend; draft_id and idempotency_key are both
// unique, so a draft can never be recorded twice.
type SubmissionRecord struct {
	DraftID        string
	IdempotencyKey string
	UserID         string
	ShowtimeID     uint64
	Fingerprint    string // hash of the booking request body
	Status         SubmissionStatus
	BookingID      sql.NullInt64
	BookingStatus  string
	Total          decimal.NullDecimal
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubmissionRepo is the ledger of draft submissions stored in MySQL.
type SubmissionRepo struct {
	db *sql.DB
}

// NewSubmissionRepo returns a new SubmissionRepo bound to the given database.
func NewSubmissionRepo(db *sql.DB) *SubmissionRepo { return &SubmissionRepo{db: db} }

const submissionSchema = `CREATE TABLE IF NOT EXISTS checkout_submissions (
    draft_id        VARCHAR(36)  NOT NULL PRIMARY KEY,
    idempotency_key VARCHAR(36)  NOT NULL,
    user_id         VARCHAR(64)  NOT NULL,
    showtime_id     BIGINT UNSIGNED NOT NULL,
    fingerprint     CHAR(64)     NOT NULL,
    status          ENUM('PENDING','SUCCEEDED','FAILED') NOT NULL,
    booking_id      BIGINT UNSIGNED NULL,
    booking_status  VARCHAR(16)  NOT NULL DEFAULT '',
    total           DECIMAL(16,2) NULL,
    error_message   VARCHAR(512) NOT NULL DEFAULT '',
    created_at      DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    UNIQUE KEY uq_checkout_submissions_key (idempotency_key)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the ledger table when it does not exist yet.
func (r *SubmissionRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, submissionSchema)
	return err
}

// maxErrorMessage is the width of error_message, counted in characters.
const maxErrorMessage = 512

// Create inserts a PENDING row for rec.  ErrConflict is returned when the
// draft or its idempotency key was already recorded.  created_at is taken
// from rec when set so the caller's clock decides staleness.
func (r *SubmissionRepo) Create(ctx context.Context, rec *SubmissionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	const q = `INSERT INTO checkout_submissions (draft_id, idempotency_key, user_id, showtime_id, fingerprint, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rec.DraftID, rec.IdempotencyKey, rec.UserID, rec.ShowtimeID, rec.Fingerprint, SubmissionPending, rec.CreatedAt)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrConflict
		}
		return err
	}
	rec.Status = SubmissionPending
	return nil
}

// MarkSucceeded records the booking created for a draft.
func (r *SubmissionRepo) MarkSucceeded(ctx context.Context, draftID string, bookingID uint64, bookingStatus string, total decimal.Decimal) error {
	const q = `UPDATE checkout_submissions SET status = ?, booking_id = ?, booking_status = ?, total = ? WHERE draft_id = ?`
	return r.exec(ctx, q, SubmissionSucceeded, bookingID, bookingStatus, total, draftID)
}

// MarkFailed records why the backend refused a draft.  Long messages are
// cut to the column width on a character boundary.
func (r *SubmissionRepo) MarkFailed(ctx context.Context, draftID, message string) error {
	message = truncateRunes(strings.ToValidUTF8(message, "?"), maxErrorMessage)
	const q = `UPDATE checkout_submissions SET status = ?, error_message = ? WHERE draft_id = ?`
	return r.exec(ctx, q, SubmissionFailed, message, draftID)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func (r *SubmissionRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// GetByDraft returns the submission recorded for a draft.
func (r *SubmissionRepo) GetByDraft(ctx context.Context, draftID string) (SubmissionRecord, error) {
	const q = `SELECT draft_id, idempotency_key, user_id, showtime_id, fingerprint, status, booking_id, booking_status, total, error_message, created_at, updated_at
        FROM checkout_submissions WHERE draft_id = ?`
	var rec SubmissionRecord
	err := r.db.QueryRowContext(ctx, q, draftID).Scan(
		&rec.DraftID, &rec.IdempotencyKey, &rec.UserID, &rec.ShowtimeID, &rec.Fingerprint, &rec.Status,
		&rec.BookingID, &rec.BookingStatus, &rec.Total, &rec.ErrorMessage, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SubmissionRecord{}, ErrSubmissionNotFound
	}
	if err != nil {
		return SubmissionRecord{}, err
	}
	return rec, nil
}
