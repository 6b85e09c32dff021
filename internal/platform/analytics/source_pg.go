package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type sourcePG struct{ pool *pgxpool.Pool }

// NewSourcePG reads claim samples from the claim table.
func NewSourcePG(pool *pgxpool.Pool) Source { return &sourcePG{pool: pool} }

func (s *sourcePG) Samples(ctx context.Context, from, to time.Time) ([]ClaimSample, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT priority, status, billed_amount, approved_amount,
		       priority_confidence, submitted_at, adjudicated_at
		FROM claim
		WHERE submitted_at >= $1 AND submitted_at < $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query claim samples: %w", err)
	}
	defer rows.Close()

	var samples []ClaimSample
	for rows.Next() {
		var c ClaimSample
		if err := rows.Scan(&c.Priority, &c.Status, &c.BilledAmount, &c.ApprovedAmount,
			&c.Confidence, &c.SubmittedAt, &c.AdjudicatedAt); err != nil {
			return nil, fmt.Errorf("scan claim sample: %w", err)
		}
		samples = append(samples, c)
	}
	return samples, rows.Err()
}
