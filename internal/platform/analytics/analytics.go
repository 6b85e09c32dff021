// Package analytics aggregates claim volume, processing latency, decision
// rates, triage confidence, and financial totals over a reporting window,
// and contrasts observed latency with a simulated first-in-first-out
// baseline. Reports are computed on demand from the claim store; the package
// keeps no state of its own, so identical inputs always yield identical
// reports.
package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Tier order used in every report section.
var tiers = []string{"URGENT", "STANDARD", "ROUTINE"}

// slaTargetHours is the decision deadline per tier.
var slaTargetHours = map[string]int{
	"URGENT":   24,
	"STANDARD": 72,
	"ROUTINE":  168,
}

// ClaimSample is the per-claim slice of data the aggregator consumes.
type ClaimSample struct {
	Priority       string
	Status         string
	BilledAmount   float64
	ApprovedAmount *float64
	Confidence     float64
	SubmittedAt    time.Time
	AdjudicatedAt  *time.Time
}

// Source supplies claim samples submitted in [from, to).
type Source interface {
	Samples(ctx context.Context, from, to time.Time) ([]ClaimSample, error)
}

type Service struct {
	source Source
	logger zerolog.Logger
}

func NewService(source Source, logger zerolog.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// Overview builds the full report for the window [from, to). The to bound is
// exclusive so adjacent windows tile without double counting.
func (s *Service) Overview(ctx context.Context, from, to time.Time) (*Overview, error) {
	samples, err := s.source.Samples(ctx, from, to)
	if err != nil {
		return nil, err
	}

	ov := &Overview{
		Period: Period{
			StartDate: from.Format("2006-01-02"),
			EndDate:   to.AddDate(0, 0, -1).Format("2006-01-02"),
			Days:      int(to.Sub(from).Hours() / 24),
		},
		TotalClaims: len(samples),
	}

	byTier := make(map[string][]ClaimSample, len(tiers))
	for _, c := range samples {
		byTier[c.Priority] = append(byTier[c.Priority], c)
	}

	var totalApproved, totalDenied int
	for _, tier := range tiers {
		group := byTier[tier]

		pct := 0.0
		if len(samples) > 0 {
			pct = float64(len(group)) / float64(len(samples)) * 100
		}
		ov.Volume = append(ov.Volume, TierVolume{
			Priority:   tier,
			Count:      len(group),
			Percentage: round1(pct),
		})

		ov.Processing = append(ov.Processing, processingStats(tier, group))

		approved, denied := 0, 0
		var approvedSum float64
		for _, c := range group {
			switch c.Status {
			case "approved":
				approved++
				if c.ApprovedAmount != nil {
					approvedSum += *c.ApprovedAmount
				}
			case "denied":
				denied++
			}
		}
		totalApproved += approved
		totalDenied += denied
		rate, avgApproved := 0.0, 0.0
		if approved+denied > 0 {
			rate = float64(approved) / float64(approved+denied) * 100
		}
		if approved > 0 {
			avgApproved = round2(approvedSum / float64(approved))
		}
		ov.Approvals.Tiers = append(ov.Approvals.Tiers, TierApprovals{
			Priority:          tier,
			Approved:          approved,
			Denied:            denied,
			ApprovalRate:      round1(rate),
			AvgApprovedAmount: avgApproved,
		})
	}
	if totalApproved+totalDenied > 0 {
		ov.Approvals.OverallRate = round1(float64(totalApproved) / float64(totalApproved+totalDenied) * 100)
	}

	ov.Confidence = confidenceStats(samples, byTier)
	ov.Financial = financialStats(samples, byTier)
	ov.FIFOBaseline = simulateFIFOBaseline(ov.Processing)

	return ov, nil
}

// Trends returns one point per distinct submission date in [from, to),
// with per-tier counts, ordered by date ascending. Days with no submissions
// do not appear.
func (s *Service) Trends(ctx context.Context, from, to time.Time) ([]TrendPoint, error) {
	samples, err := s.source.Samples(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]map[string]int)
	for _, c := range samples {
		key := c.SubmittedAt.UTC().Format("2006-01-02")
		if byDate[key] == nil {
			byDate[key] = make(map[string]int)
		}
		byDate[key][c.Priority]++
	}

	points := make([]TrendPoint, 0, len(byDate))
	for date, counts := range byDate {
		total := 0
		for _, n := range counts {
			total += n
		}
		points = append(points, TrendPoint{Date: date, Total: total, ByPriority: counts})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// processingStats summarizes decision latency over the group's adjudicated
// claims only. Min and max are zero when nothing has been decided.
func processingStats(tier string, group []ClaimSample) TierProcessing {
	target := slaTargetHours[tier]
	stats := TierProcessing{Priority: tier, SLATargetHours: target}

	var totalHours, minHours, maxHours float64
	var withinTarget int
	for _, c := range group {
		if c.AdjudicatedAt == nil {
			continue
		}
		hours := c.AdjudicatedAt.Sub(c.SubmittedAt).Hours()
		if stats.AdjudicatedCount == 0 || hours < minHours {
			minHours = hours
		}
		if hours > maxHours {
			maxHours = hours
		}
		stats.AdjudicatedCount++
		totalHours += hours
		if hours <= float64(target) {
			withinTarget++
		}
	}
	if stats.AdjudicatedCount == 0 {
		return stats
	}
	stats.AvgHours = round1(totalHours / float64(stats.AdjudicatedCount))
	stats.MinHours = round1(minHours)
	stats.MaxHours = round1(maxHours)
	stats.SLAComplianceRate = round1(float64(withinTarget) / float64(stats.AdjudicatedCount) * 100)
	return stats
}

// confidenceStats reports triage confidence on a 0-100 scale. Bucket
// thresholds are applied to the raw scores before scaling.
func confidenceStats(samples []ClaimSample, byTier map[string][]ClaimSample) ConfidenceSection {
	var section ConfidenceSection
	var total, min, max float64
	var high, medium, low int
	for i, c := range samples {
		total += c.Confidence
		if i == 0 || c.Confidence < min {
			min = c.Confidence
		}
		if c.Confidence > max {
			max = c.Confidence
		}
		switch {
		case c.Confidence >= 0.90:
			high++
		case c.Confidence >= 0.70:
			medium++
		default:
			low++
		}
	}
	if len(samples) > 0 {
		n := float64(len(samples))
		section.AvgConfidence = round1(total / n * 100)
		section.MinConfidence = round1(min * 100)
		section.MaxConfidence = round1(max * 100)
		section.High = ConfidenceBucket{Count: high, Percentage: round1(float64(high) / n * 100)}
		section.Medium = ConfidenceBucket{Count: medium, Percentage: round1(float64(medium) / n * 100)}
		section.Low = ConfidenceBucket{Count: low, Percentage: round1(float64(low) / n * 100)}
	}

	for _, tier := range tiers {
		group := byTier[tier]
		var sum float64
		for _, c := range group {
			sum += c.Confidence
		}
		avg := 0.0
		if len(group) > 0 {
			avg = round1(sum / float64(len(group)) * 100)
		}
		section.ByPriority = append(section.ByPriority, TierConfidence{Priority: tier, AvgConfidence: avg})
	}
	return section
}

func financialStats(samples []ClaimSample, byTier map[string][]ClaimSample) FinancialSection {
	var section FinancialSection
	var totalBilled float64
	for _, c := range samples {
		totalBilled += c.BilledAmount
		if c.Status == "approved" && c.ApprovedAmount != nil {
			section.TotalApproved += *c.ApprovedAmount
		}
	}

	for _, tier := range tiers {
		group := byTier[tier]
		var billed, approved float64
		for _, c := range group {
			billed += c.BilledAmount
			if c.Status == "approved" && c.ApprovedAmount != nil {
				approved += *c.ApprovedAmount
			}
		}
		tf := TierFinancial{
			Priority:      tier,
			TotalBilled:   round2(billed),
			TotalApproved: round2(approved),
		}
		if len(group) > 0 {
			tf.AvgBilled = round2(billed / float64(len(group)))
		}
		if totalBilled > 0 {
			tf.BilledShare = round1(billed / totalBilled * 100)
		}
		section.ByPriority = append(section.ByPriority, tf)
	}

	if totalBilled > 0 {
		section.ApprovedPercent = round1(section.TotalApproved / totalBilled * 100)
	}
	if len(samples) > 0 {
		section.AvgBilled = round2(totalBilled / float64(len(samples)))
	}
	section.TotalBilled = round2(totalBilled)
	section.TotalApproved = round2(section.TotalApproved)
	return section
}

// round1 rounds to one decimal; used for percentages and hour averages.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimals; used for currency amounts.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
