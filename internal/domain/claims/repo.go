package claims

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistent store of claims and their audit history.
// Mutations that pair a claim write with an audit entry are atomic: both
// succeed or neither does.
type Repository interface {
	// CreateWithAudit persists a new claim and its "submitted" audit entry
	// in one transaction.
	CreateWithAudit(ctx context.Context, c *Claim, entry *AuditLogEntry) error

	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)

	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error)

	// ApplyDecision writes the adjudicated claim and its audit entry in one
	// transaction. The update is conditional on the stored status still
	// being submitted; when a concurrent adjudicator got there first it
	// returns ErrAlreadyAdjudicated and writes nothing.
	ApplyDecision(ctx context.Context, c *Claim, entry *AuditLogEntry) error

	// AuditTrail returns a claim's audit entries ordered by creation time
	// ascending.
	AuditTrail(ctx context.Context, claimID uuid.UUID) ([]*AuditLogEntry, error)
}
