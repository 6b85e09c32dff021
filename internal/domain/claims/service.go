package claims

import (
	"context"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/claimwise/claimwise/internal/domain/identity"
	"github.com/claimwise/claimwise/internal/platform/auth"
	"github.com/claimwise/claimwise/internal/platform/metrics"
	"github.com/claimwise/claimwise/internal/platform/triage"
)

const (
	maxNotesLen       = 500
	minExplanationLen = 20
	maxExplanationLen = 1000
)

var (
	cptPattern   = regexp.MustCompile(`^\d{5}$`)
	icd10Pattern = regexp.MustCompile(`^[A-TV-Z]\d{2}(\.\d{1,4})?$`)
)

// Classifier assigns a priority tier to an incoming claim.
type Classifier interface {
	Classify(ctx context.Context, req triage.Request) (triage.Result, error)
}

// Service implements claim intake, retrieval, and adjudication.
type Service struct {
	repo       Repository
	issuer     NumberIssuer
	users      identity.UserRepository
	providers  identity.ProviderRepository
	classifier Classifier
	logger     zerolog.Logger
	now        func() time.Time
}

func NewService(repo Repository, issuer NumberIssuer, users identity.UserRepository, providers identity.ProviderRepository, classifier Classifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		issuer:     issuer,
		users:      users,
		providers:  providers,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Create validates and persists a newly submitted claim. The claim number is
// issued from the daily sequence, the priority comes from the triage
// classifier, and the initial audit entry is written in the same transaction
// as the claim row.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*Claim, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load submitting user: %w", err)
	}
	if user.ProviderID == nil {
		return nil, ErrNoProvider
	}

	dob, serviceDate, err := s.validateCreate(in)
	if err != nil {
		return nil, err
	}

	verdict, err := s.classifier.Classify(ctx, triage.Request{
		CPTCode:      in.Service.CPTCode,
		ICD10Code:    in.Service.ICD10Code,
		BilledAmount: in.Service.BilledAmount,
		PatientDOB:   &dob,
	})
	if err != nil {
		// Classifier input errors mean our own validation and the
		// classifier's disagree; treat as a caller problem.
		return nil, inputErr("service", err.Error())
	}

	number, err := s.issuer.Issue(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("issue claim number: %w", err)
	}

	claim := &Claim{
		ID:                 uuid.New(),
		ClaimNumber:        number,
		ProviderID:         *user.ProviderID,
		SubmittedByUserID:  user.ID,
		Status:             StatusSubmitted,
		PatientFirstName:   in.Patient.FirstName,
		PatientLastName:    in.Patient.LastName,
		PatientDOB:         dob,
		PatientMemberID:    in.Patient.MemberID,
		CPTCode:            in.Service.CPTCode,
		ICD10Code:          in.Service.ICD10Code,
		ServiceDate:        serviceDate,
		BilledAmount:       in.Service.BilledAmount,
		Priority:           Priority(verdict.Priority),
		PriorityConfidence: verdict.Confidence,
		PriorityReasoning:  verdict.Reasoning,
		SubmittedAt:        s.now(),
	}

	entry := &AuditLogEntry{
		ID:        uuid.New(),
		ClaimID:   claim.ID,
		UserID:    user.ID,
		Action:    "submitted",
		NewStatus: StatusSubmitted,
		Details: map[string]string{
			"claim_number":  claim.ClaimNumber,
			"billed_amount": fmt.Sprintf("%.2f", claim.BilledAmount),
			"priority":      string(claim.Priority),
		},
		CreatedAt: claim.SubmittedAt,
	}

	if err := s.repo.CreateWithAudit(ctx, claim, entry); err != nil {
		return nil, fmt.Errorf("persist claim: %w", err)
	}

	metrics.ClaimsSubmitted.WithLabelValues(string(claim.Priority)).Inc()
	s.logger.Info().
		Str("claim_id", claim.ID.String()).
		Str("claim_number", claim.ClaimNumber).
		Str("priority", string(claim.Priority)).
		Float64("billed_amount", claim.BilledAmount).
		Msg("claim submitted")

	return claim, nil
}

func (s *Service) validateCreate(in CreateInput) (dob, serviceDate time.Time, err error) {
	if in.Patient.FirstName == "" {
		return dob, serviceDate, inputErr("patient.firstName", "is required")
	}
	if in.Patient.LastName == "" {
		return dob, serviceDate, inputErr("patient.lastName", "is required")
	}
	if in.Patient.MemberID == "" {
		return dob, serviceDate, inputErr("patient.memberId", "is required")
	}
	dob, err = time.Parse("2006-01-02", in.Patient.DateOfBirth)
	if err != nil {
		return dob, serviceDate, inputErr("patient.dateOfBirth", "must be a valid date in YYYY-MM-DD format")
	}
	if dob.After(s.now()) {
		return dob, serviceDate, inputErr("patient.dateOfBirth", "must not be in the future")
	}

	if !cptPattern.MatchString(in.Service.CPTCode) {
		return dob, serviceDate, inputErr("service.cptCode", "must be a 5-digit CPT code")
	}
	if !icd10Pattern.MatchString(in.Service.ICD10Code) {
		return dob, serviceDate, inputErr("service.icd10Code", "must be a valid ICD-10 code")
	}
	serviceDate, err = time.Parse("2006-01-02", in.Service.ServiceDate)
	if err != nil {
		return dob, serviceDate, inputErr("service.serviceDate", "must be a valid date in YYYY-MM-DD format")
	}
	if serviceDate.After(s.now()) {
		return dob, serviceDate, inputErr("service.serviceDate", "must not be in the future")
	}
	if in.Service.BilledAmount <= 0 {
		return dob, serviceDate, inputErr("service.billedAmount", "must be a positive amount")
	}
	if in.Service.BilledAmount > 9999999.99 {
		return dob, serviceDate, inputErr("service.billedAmount", "exceeds the maximum billable amount")
	}
	return dob, serviceDate, nil
}

// Adjudicate applies an approve or deny decision to a submitted claim. The
// status check and write are atomic in the repository, so of two concurrent
// decisions exactly one wins and the other observes ErrAlreadyAdjudicated.
func (s *Service) Adjudicate(ctx context.Context, adjudicatorID, claimID uuid.UUID, in AdjudicationInput) (*DecisionSummary, error) {
	claim, err := s.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Decided() {
		return nil, ErrAlreadyAdjudicated
	}
	if err := validateDecision(claim, in); err != nil {
		return nil, err
	}

	decidedAt := s.now()
	oldStatus := claim.Status
	entry := &AuditLogEntry{
		ID:        uuid.New(),
		ClaimID:   claim.ID,
		UserID:    adjudicatorID,
		OldStatus: &oldStatus,
		CreatedAt: decidedAt,
	}

	claim.AdjudicatedByUserID = &adjudicatorID
	claim.AdjudicatedAt = &decidedAt
	claim.AdjudicationNotes = in.Notes

	switch in.Decision {
	case DecisionApprove:
		claim.Status = StatusApproved
		claim.ApprovedAmount = in.ApprovedAmount
		entry.Action = "approved"
		entry.NewStatus = StatusApproved
		entry.Details = map[string]string{
			"approved_amount": fmt.Sprintf("%.2f", *in.ApprovedAmount),
			"billed_amount":   fmt.Sprintf("%.2f", claim.BilledAmount),
		}
	case DecisionDeny:
		claim.Status = StatusDenied
		claim.DenialReasonCode = in.DenialReasonCode
		claim.DenialExplanation = in.DenialExplanation
		entry.Action = "denied"
		entry.NewStatus = StatusDenied
		entry.Details = map[string]string{
			"denial_reason_code": *in.DenialReasonCode,
		}
	}

	if err := s.repo.ApplyDecision(ctx, claim, entry); err != nil {
		return nil, err
	}

	adjudicator, err := s.users.GetByID(ctx, adjudicatorID)
	if err != nil {
		return nil, fmt.Errorf("load adjudicator: %w", err)
	}

	metrics.ClaimsAdjudicated.WithLabelValues(string(in.Decision)).Inc()
	s.logger.Info().
		Str("claim_id", claim.ID.String()).
		Str("claim_number", claim.ClaimNumber).
		Str("decision", string(in.Decision)).
		Str("adjudicator_id", adjudicatorID.String()).
		Msg("claim adjudicated")

	return &DecisionSummary{
		ID:                claim.ID,
		ClaimNumber:       claim.ClaimNumber,
		Status:            claim.Status,
		ApprovedAmount:    claim.ApprovedAmount,
		DenialReasonCode:  claim.DenialReasonCode,
		DenialExplanation: claim.DenialExplanation,
		AdjudicationNotes: claim.AdjudicationNotes,
		AdjudicatedBy: ActorRef{
			ID:    adjudicator.ID,
			Name:  adjudicator.DisplayName(),
			Email: adjudicator.Email,
		},
		AdjudicatedAt: decidedAt,
	}, nil
}

func validateDecision(claim *Claim, in AdjudicationInput) error {
	switch in.Decision {
	case DecisionApprove:
		if in.ApprovedAmount == nil {
			return inputErr("approved_amount", "is required when approving")
		}
		if *in.ApprovedAmount <= 0 {
			return inputErr("approved_amount", "must be a positive amount")
		}
		if *in.ApprovedAmount > claim.BilledAmount {
			return inputErr("approved_amount", "must not exceed the billed amount")
		}
		if in.DenialReasonCode != nil || in.DenialExplanation != nil {
			return inputErr("decision", "denial fields are not allowed when approving")
		}
	case DecisionDeny:
		if in.DenialReasonCode == nil {
			return inputErr("denial_reason_code", "is required when denying")
		}
		if !DenialReasonCodes[*in.DenialReasonCode] {
			return inputErr("denial_reason_code", "is not a recognized denial reason")
		}
		if in.DenialExplanation == nil {
			return inputErr("denial_explanation", "is required when denying")
		}
		if n := utf8.RuneCountInString(*in.DenialExplanation); n < minExplanationLen || n > maxExplanationLen {
			return inputErr("denial_explanation", fmt.Sprintf("must be between %d and %d characters", minExplanationLen, maxExplanationLen))
		}
		if in.ApprovedAmount != nil {
			return inputErr("approved_amount", "is not allowed when denying")
		}
	default:
		return inputErr("decision", "must be approve or deny")
	}
	if in.Notes != nil && utf8.RuneCountInString(*in.Notes) > maxNotesLen {
		return inputErr("notes", fmt.Sprintf("must be at most %d characters", maxNotesLen))
	}
	return nil
}

// Get returns a claim with its actors and audit trail. Provider staff can
// only see claims belonging to their own provider organization.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, role string, claimID uuid.UUID) (*Detail, error) {
	claim, err := s.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if role == auth.RoleProviderStaff {
		caller, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load caller: %w", err)
		}
		if caller.ProviderID == nil || *caller.ProviderID != claim.ProviderID {
			return nil, ErrForbidden
		}
	}

	provider, err := s.providers.GetByID(ctx, claim.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("load provider: %w", err)
	}
	submitter, err := s.users.GetByID(ctx, claim.SubmittedByUserID)
	if err != nil {
		return nil, fmt.Errorf("load submitter: %w", err)
	}

	detail := &Detail{
		Claim: claim,
		Provider: ActorProvider{
			ID:   provider.ID,
			Name: provider.Name,
			NPI:  provider.NPI,
		},
		SubmittedBy: ActorRef{
			ID:    submitter.ID,
			Name:  submitter.DisplayName(),
			Email: submitter.Email,
		},
	}

	if claim.AdjudicatedByUserID != nil {
		adjudicator, err := s.users.GetByID(ctx, *claim.AdjudicatedByUserID)
		if err != nil {
			return nil, fmt.Errorf("load adjudicator: %w", err)
		}
		detail.AdjudicatedBy = &ActorRef{
			ID:    adjudicator.ID,
			Name:  adjudicator.DisplayName(),
			Email: adjudicator.Email,
		}
	}

	entries, err := s.repo.AuditTrail(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("load audit trail: %w", err)
	}
	detail.AuditTrail = make([]AuditTrailEntry, 0, len(entries))
	actorNames := map[uuid.UUID]string{submitter.ID: submitter.DisplayName()}
	if detail.AdjudicatedBy != nil {
		actorNames[detail.AdjudicatedBy.ID] = detail.AdjudicatedBy.Name
	}
	for _, e := range entries {
		name, ok := actorNames[e.UserID]
		if !ok {
			u, err := s.users.GetByID(ctx, e.UserID)
			if err != nil {
				return nil, fmt.Errorf("load audit actor: %w", err)
			}
			name = u.DisplayName()
			actorNames[e.UserID] = name
		}
		detail.AuditTrail = append(detail.AuditTrail, AuditTrailEntry{
			Action:      e.Action,
			PerformedBy: name,
			Timestamp:   e.CreatedAt,
			Details:     e.Details,
		})
	}

	return detail, nil
}

// List returns claim summaries for the caller. Provider staff are pinned to
// their own provider regardless of the requested filter; payer processors see
// everything and may filter freely.
func (s *Service) List(ctx context.Context, userID uuid.UUID, role string, filter ListFilter, limit, offset int) ([]*Summary, int, error) {
	if role == auth.RoleProviderStaff {
		caller, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, 0, fmt.Errorf("load caller: %w", err)
		}
		if caller.ProviderID == nil {
			return nil, 0, ErrNoProvider
		}
		filter.ProviderID = caller.ProviderID
	}

	rows, total, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	providerNames := make(map[uuid.UUID]string)
	summaries := make([]*Summary, 0, len(rows))
	for _, c := range rows {
		name, ok := providerNames[c.ProviderID]
		if !ok {
			p, err := s.providers.GetByID(ctx, c.ProviderID)
			if err != nil {
				return nil, 0, fmt.Errorf("load provider: %w", err)
			}
			name = p.Name
			providerNames[c.ProviderID] = name
		}
		summaries = append(summaries, &Summary{
			ID:                  c.ID,
			ClaimNumber:         c.ClaimNumber,
			Status:              c.Status,
			Priority:            c.Priority,
			PriorityConfidence:  c.PriorityConfidence,
			PatientName:         c.PatientFirstName + " " + c.PatientLastName,
			ServiceDate:         c.ServiceDate,
			BilledAmount:        c.BilledAmount,
			ApprovedAmount:      c.ApprovedAmount,
			ProviderName:        name,
			SubmittedAt:         c.SubmittedAt,
			AdjudicatedAt:       c.AdjudicatedAt,
			DaysSinceSubmission: int(now.Sub(c.SubmittedAt).Hours() / 24),
		})
	}
	return summaries, total, nil
}
