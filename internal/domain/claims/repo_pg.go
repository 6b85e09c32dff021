package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const claimCols = `id, claim_number, provider_id, submitted_by_user_id, adjudicated_by_user_id,
	status, patient_first_name, patient_last_name, patient_dob, patient_member_id,
	cpt_code, icd10_code, service_date, billed_amount,
	priority, priority_confidence, priority_reasoning,
	approved_amount, adjudication_notes, denial_reason_code, denial_explanation,
	submitted_at, adjudicated_at`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(&c.ID, &c.ClaimNumber, &c.ProviderID, &c.SubmittedByUserID, &c.AdjudicatedByUserID,
		&c.Status, &c.PatientFirstName, &c.PatientLastName, &c.PatientDOB, &c.PatientMemberID,
		&c.CPTCode, &c.ICD10Code, &c.ServiceDate, &c.BilledAmount,
		&c.Priority, &c.PriorityConfidence, &c.PriorityReasoning,
		&c.ApprovedAmount, &c.AdjudicationNotes, &c.DenialReasonCode, &c.DenialExplanation,
		&c.SubmittedAt, &c.AdjudicatedAt)
	return &c, err
}

func (r *repoPG) CreateWithAudit(ctx context.Context, c *Claim, entry *AuditLogEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO claim (id, claim_number, provider_id, submitted_by_user_id, status,
			patient_first_name, patient_last_name, patient_dob, patient_member_id,
			cpt_code, icd10_code, service_date, billed_amount,
			priority, priority_confidence, priority_reasoning, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		c.ID, c.ClaimNumber, c.ProviderID, c.SubmittedByUserID, c.Status,
		c.PatientFirstName, c.PatientLastName, c.PatientDOB, c.PatientMemberID,
		c.CPTCode, c.ICD10Code, c.ServiceDate, c.BilledAmount,
		c.Priority, c.PriorityConfidence, c.PriorityReasoning, c.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}

	entry.ClaimID = c.ID
	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := scanClaim(r.pool.QueryRow(ctx, `SELECT `+claimCols+` FROM claim WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	n := 0

	if filter.ProviderID != nil {
		n++
		where += fmt.Sprintf(" AND provider_id = $%d", n)
		args = append(args, *filter.ProviderID)
	}
	if filter.Status != nil {
		n++
		where += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, *filter.Status)
	}
	if filter.Priority != nil {
		n++
		where += fmt.Sprintf(" AND priority = $%d", n)
		args = append(args, *filter.Priority)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM claim`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + claimCols + ` FROM claim` + where +
		fmt.Sprintf(" ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

func (r *repoPG) ApplyDecision(ctx context.Context, c *Claim, entry *AuditLogEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The status predicate makes the precondition check and the mutation one
	// atomic unit: of two racing adjudicators exactly one row-matches.
	tag, err := tx.Exec(ctx, `
		UPDATE claim SET status = $2, adjudicated_by_user_id = $3, adjudicated_at = $4,
			approved_amount = $5, adjudication_notes = $6,
			denial_reason_code = $7, denial_explanation = $8
		WHERE id = $1 AND status = 'submitted'`,
		c.ID, c.Status, c.AdjudicatedByUserID, c.AdjudicatedAt,
		c.ApprovedAmount, c.AdjudicationNotes,
		c.DenialReasonCode, c.DenialExplanation)
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM claim WHERE id = $1)`, c.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrAlreadyAdjudicated
	}

	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *repoPG) AuditTrail(ctx context.Context, claimID uuid.UUID) ([]*AuditLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, claim_id, user_id, action, old_status, new_status, details, created_at
		FROM audit_log WHERE claim_id = $1 ORDER BY created_at ASC`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*AuditLogEntry
	for rows.Next() {
		var e AuditLogEntry
		if err := rows.Scan(&e.ID, &e.ClaimID, &e.UserID, &e.Action,
			&e.OldStatus, &e.NewStatus, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func insertAuditEntry(ctx context.Context, tx pgx.Tx, entry *AuditLogEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO audit_log (id, claim_id, user_id, action, old_status, new_status, details)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		entry.ID, entry.ClaimID, entry.UserID, entry.Action,
		entry.OldStatus, entry.NewStatus, entry.Details)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// NumberIssuerPG issues claim numbers from a per-date counter row. The upsert
// increments and reads in a single statement, so concurrent submissions on
// the same date serialize on the row and never observe the same sequence.
type NumberIssuerPG struct{ pool *pgxpool.Pool }

func NewNumberIssuerPG(pool *pgxpool.Pool) *NumberIssuerPG {
	return &NumberIssuerPG{pool: pool}
}

func (i *NumberIssuerPG) Issue(ctx context.Context, date time.Time) (string, error) {
	var seq int
	err := i.pool.QueryRow(ctx, `
		INSERT INTO claim_sequence (seq_date, last_seq) VALUES ($1, 1)
		ON CONFLICT (seq_date) DO UPDATE SET last_seq = claim_sequence.last_seq + 1
		RETURNING last_seq`,
		date.Format("2006-01-02")).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("advance claim sequence: %w", err)
	}
	if seq > maxDailySequence {
		return "", ErrSequenceExhausted
	}
	return FormatClaimNumber(date, seq), nil
}
