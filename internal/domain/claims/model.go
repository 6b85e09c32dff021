package claims

import (
	"time"

	"github.com/google/uuid"
)

// Priority is the processing tier assigned to a claim at intake.
type Priority string

const (
	PriorityUrgent   Priority = "URGENT"
	PriorityStandard Priority = "STANDARD"
	PriorityRoutine  Priority = "ROUTINE"
)

// Priorities lists all tiers in descending urgency order.
var Priorities = []Priority{PriorityUrgent, PriorityStandard, PriorityRoutine}

func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityStandard, PriorityRoutine:
		return true
	}
	return false
}

// Status is the lifecycle state of a claim. The only transitions are
// submitted -> approved and submitted -> denied; both are terminal.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusDenied    Status = "denied"
)

// Decision is the adjudicator's verdict.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

// DenialReasonCodes is the closed set of accepted denial reasons.
var DenialReasonCodes = map[string]bool{
	"INVALID_CPT":        true,
	"INVALID_DIAGNOSIS":  true,
	"NOT_COVERED":        true,
	"PATIENT_INELIGIBLE": true,
	"DUPLICATE_CLAIM":    true,
	"INSUFFICIENT_DOCS":  true,
	"OTHER":              true,
}

// Claim maps to the claim table.
type Claim struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	ClaimNumber         string     `db:"claim_number" json:"claim_number"`
	ProviderID          uuid.UUID  `db:"provider_id" json:"provider_id"`
	SubmittedByUserID   uuid.UUID  `db:"submitted_by_user_id" json:"submitted_by_user_id"`
	AdjudicatedByUserID *uuid.UUID `db:"adjudicated_by_user_id" json:"adjudicated_by_user_id,omitempty"`
	Status              Status     `db:"status" json:"status"`
	PatientFirstName    string     `db:"patient_first_name" json:"patient_first_name"`
	PatientLastName     string     `db:"patient_last_name" json:"patient_last_name"`
	PatientDOB          time.Time  `db:"patient_dob" json:"patient_dob"`
	PatientMemberID     string     `db:"patient_member_id" json:"patient_member_id"`
	CPTCode             string     `db:"cpt_code" json:"cpt_code"`
	ICD10Code           string     `db:"icd10_code" json:"icd10_code"`
	ServiceDate         time.Time  `db:"service_date" json:"service_date"`
	BilledAmount        float64    `db:"billed_amount" json:"billed_amount"`
	Priority            Priority   `db:"priority" json:"priority"`
	PriorityConfidence  float64    `db:"priority_confidence" json:"priority_confidence"`
	PriorityReasoning   string     `db:"priority_reasoning" json:"priority_reasoning"`
	ApprovedAmount      *float64   `db:"approved_amount" json:"approved_amount,omitempty"`
	AdjudicationNotes   *string    `db:"adjudication_notes" json:"adjudication_notes,omitempty"`
	DenialReasonCode    *string    `db:"denial_reason_code" json:"denial_reason_code,omitempty"`
	DenialExplanation   *string    `db:"denial_explanation" json:"denial_explanation,omitempty"`
	SubmittedAt         time.Time  `db:"submitted_at" json:"submitted_at"`
	AdjudicatedAt       *time.Time `db:"adjudicated_at" json:"adjudicated_at,omitempty"`
}

// Decided reports whether the claim has reached a terminal state.
func (c *Claim) Decided() bool {
	return c.Status == StatusApproved || c.Status == StatusDenied
}

// AuditLogEntry maps to the audit_log table. Entries are append-only; one is
// written in the same transaction as the claim mutation it documents.
type AuditLogEntry struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	ClaimID   uuid.UUID         `db:"claim_id" json:"claim_id"`
	UserID    uuid.UUID         `db:"user_id" json:"user_id"`
	Action    string            `db:"action" json:"action"`
	OldStatus *Status           `db:"old_status" json:"old_status,omitempty"`
	NewStatus Status            `db:"new_status" json:"new_status"`
	Details   map[string]string `db:"details" json:"details"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

// CreateInput is the already-validated request shape handed in by the intake
// boundary.
type CreateInput struct {
	Patient struct {
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		DateOfBirth string `json:"dateOfBirth"`
		MemberID    string `json:"memberId"`
	} `json:"patient"`
	Service struct {
		CPTCode      string  `json:"cptCode"`
		ICD10Code    string  `json:"icd10Code"`
		ServiceDate  string  `json:"serviceDate"`
		BilledAmount float64 `json:"billedAmount"`
	} `json:"service"`
}

// AdjudicationInput carries an approve/deny decision and its payload.
type AdjudicationInput struct {
	Decision          Decision `json:"decision"`
	ApprovedAmount    *float64 `json:"approved_amount,omitempty"`
	Notes             *string  `json:"notes,omitempty"`
	DenialReasonCode  *string  `json:"denial_reason_code,omitempty"`
	DenialExplanation *string  `json:"denial_explanation,omitempty"`
}

// ListFilter narrows claim listings.
type ListFilter struct {
	ProviderID *uuid.UUID
	Status     *Status
	Priority   *Priority
}

// Summary is the listing row shape.
type Summary struct {
	ID                  uuid.UUID  `json:"id"`
	ClaimNumber         string     `json:"claim_number"`
	Status              Status     `json:"status"`
	Priority            Priority   `json:"priority"`
	PriorityConfidence  float64    `json:"priority_confidence"`
	PatientName         string     `json:"patient_name"`
	ServiceDate         time.Time  `json:"service_date"`
	BilledAmount        float64    `json:"billed_amount"`
	ApprovedAmount      *float64   `json:"approved_amount,omitempty"`
	ProviderName        string     `json:"provider_name"`
	SubmittedAt         time.Time  `json:"submitted_at"`
	AdjudicatedAt       *time.Time `json:"adjudicated_at,omitempty"`
	DaysSinceSubmission int        `json:"days_since_submission"`
}

// ActorRef identifies a user in API output.
type ActorRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// DecisionSummary is returned from adjudication.
type DecisionSummary struct {
	ID                uuid.UUID `json:"id"`
	ClaimNumber       string    `json:"claim_number"`
	Status            Status    `json:"status"`
	ApprovedAmount    *float64  `json:"approved_amount,omitempty"`
	DenialReasonCode  *string   `json:"denial_reason_code,omitempty"`
	DenialExplanation *string   `json:"denial_explanation,omitempty"`
	AdjudicationNotes *string   `json:"adjudication_notes,omitempty"`
	AdjudicatedBy     ActorRef  `json:"adjudicated_by"`
	AdjudicatedAt     time.Time `json:"adjudicated_at"`
}

// AuditTrailEntry is the audit view embedded in claim detail.
type AuditTrailEntry struct {
	Action      string            `json:"action"`
	PerformedBy string            `json:"performed_by"`
	Timestamp   time.Time         `json:"timestamp"`
	Details     map[string]string `json:"details"`
}

// Detail is the full single-claim view including the audit trail.
type Detail struct {
	Claim         *Claim            `json:"claim"`
	Provider      ActorProvider     `json:"provider"`
	SubmittedBy   ActorRef          `json:"submitted_by"`
	AdjudicatedBy *ActorRef         `json:"adjudicated_by,omitempty"`
	AuditTrail    []AuditTrailEntry `json:"audit_trail"`
}

// ActorProvider identifies a provider organization in API output.
type ActorProvider struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	NPI  string    `json:"npi"`
}
