package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated actor: provider staff submitting claims or a
// payer processor adjudicating them.
type User struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Email      string     `db:"email" json:"email"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	Role       string     `db:"role" json:"role"`
	ProviderID *uuid.UUID `db:"provider_id" json:"provider_id,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// DisplayName returns the user's full name for audit trails and summaries.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// Provider is a billing organization that submits claims.
type Provider struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	NPI       string    `db:"npi" json:"npi"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
