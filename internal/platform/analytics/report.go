package analytics

// Period bounds a report. Dates are inclusive calendar days.
type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

// TierVolume is the claim count and share for one priority tier. Every tier
// appears in the report even when its count is zero.
type TierVolume struct {
	Priority   string  `json:"priority"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TierProcessing summarizes decision latency for one tier over its
// adjudicated claims.
type TierProcessing struct {
	Priority          string  `json:"priority"`
	AdjudicatedCount  int     `json:"adjudicated_count"`
	AvgHours          float64 `json:"avg_hours"`
	MinHours          float64 `json:"min_hours"`
	MaxHours          float64 `json:"max_hours"`
	SLATargetHours    int     `json:"sla_target_hours"`
	SLAComplianceRate float64 `json:"sla_compliance_rate"`
}

// TierApprovals is the decision breakdown for one tier, restricted to
// decided claims. AvgApprovedAmount is the mean payout per approved claim
// and is zero when the tier has no approvals.
type TierApprovals struct {
	Priority          string  `json:"priority"`
	Approved          int     `json:"approved"`
	Denied            int     `json:"denied"`
	ApprovalRate      float64 `json:"approval_rate"`
	AvgApprovedAmount float64 `json:"avg_approved_amount"`
}

// ApprovalsSection carries per-tier decision rates plus the overall rate
// across all decided claims.
type ApprovalsSection struct {
	Tiers       []TierApprovals `json:"tiers"`
	OverallRate float64         `json:"overall_rate"`
}

// ConfidenceBucket is one band of the triage confidence distribution.
type ConfidenceBucket struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TierConfidence is the mean triage confidence for one tier, on a 0-100
// scale with one decimal.
type TierConfidence struct {
	Priority      string  `json:"priority"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// ConfidenceSection reports triage confidence overall, per tier, and
// bucketed into high (>= 0.90), medium ([0.70, 0.90)), and low (< 0.70).
// Avg, min, and max are on a 0-100 scale with one decimal; the bucket
// thresholds apply to the raw 0-1 scores.
type ConfidenceSection struct {
	AvgConfidence float64          `json:"avg_confidence"`
	MinConfidence float64          `json:"min_confidence"`
	MaxConfidence float64          `json:"max_confidence"`
	ByPriority    []TierConfidence `json:"by_priority"`
	High          ConfidenceBucket `json:"high"`
	Medium        ConfidenceBucket `json:"medium"`
	Low           ConfidenceBucket `json:"low"`
}

// TierFinancial is the money picture for one tier.
type TierFinancial struct {
	Priority      string  `json:"priority"`
	TotalBilled   float64 `json:"total_billed"`
	TotalApproved float64 `json:"total_approved"`
	AvgBilled     float64 `json:"avg_billed"`
	BilledShare   float64 `json:"billed_share"`
}

// FinancialSection totals money through the pipeline over the period.
type FinancialSection struct {
	TotalBilled     float64         `json:"total_billed"`
	TotalApproved   float64         `json:"total_approved"`
	AvgBilled       float64         `json:"avg_billed"`
	ApprovedPercent float64         `json:"approved_percent"`
	ByPriority      []TierFinancial `json:"by_priority"`
}

// TierImprovement quantifies what prioritized processing buys a tier over
// the simulated baseline.
type TierImprovement struct {
	TimeSavedHours   float64 `json:"time_saved_hours"`
	TimeSavedPercent float64 `json:"time_saved_percent"`
	SLAImprovement   float64 `json:"sla_improvement"`
}

// BaselineTier compares observed per-tier performance against the simulated
// first-in-first-out figures for the same tier. Improvement is nil for the
// routine tier, which a strict queue serves no worse than prioritization.
type BaselineTier struct {
	Priority              string           `json:"priority"`
	ActualAvgHours        float64          `json:"actual_avg_hours"`
	ActualSLACompliance   float64          `json:"actual_sla_compliance"`
	BaselineAvgHours      float64          `json:"baseline_avg_hours"`
	BaselineSLACompliance float64          `json:"baseline_sla_compliance"`
	Improvement           *TierImprovement `json:"improvement,omitempty"`
}

// BaselineSection is the simulated FIFO comparison. It is an estimate
// derived from observed volumes, never a measurement, and says so.
type BaselineSection struct {
	Note  string         `json:"note"`
	Tiers []BaselineTier `json:"tiers"`
}

// Overview is the full analytics report for a period.
type Overview struct {
	Period       Period            `json:"period"`
	TotalClaims  int               `json:"total_claims"`
	Volume       []TierVolume      `json:"priority_distribution"`
	Processing   []TierProcessing  `json:"processing"`
	Approvals    ApprovalsSection  `json:"approvals"`
	Confidence   ConfidenceSection `json:"confidence"`
	Financial    FinancialSection  `json:"financial"`
	FIFOBaseline BaselineSection   `json:"fifo_baseline"`
}

// TrendPoint is one submission day's claim counts by tier. Only dates with
// at least one submission appear in a trend series.
type TrendPoint struct {
	Date       string         `json:"date"`
	Total      int            `json:"total"`
	ByPriority map[string]int `json:"by_priority"`
}
