package claims

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// maxDailySequence is the highest claim number issuable per calendar day.
// Running past it is a configuration problem, not something to wrap around.
const maxDailySequence = 9999

// ErrSequenceExhausted is returned when a day's 9999 claim numbers run out.
var ErrSequenceExhausted = errors.New("daily claim number sequence exhausted")

// NumberIssuer hands out claim numbers of the form CLM-YYYYMMDD-NNNN.
// Implementations must guarantee that concurrent callers on the same date
// never receive the same number.
type NumberIssuer interface {
	Issue(ctx context.Context, date time.Time) (string, error)
}

// FormatClaimNumber renders a claim number for the given date and sequence.
func FormatClaimNumber(date time.Time, seq int) string {
	return fmt.Sprintf("CLM-%s-%04d", date.Format("20060102"), seq)
}

// MemoryNumberIssuer issues claim numbers from an in-process counter per
// date. It backs tests and local development; production issuance goes
// through the database counter so numbers survive restarts.
type MemoryNumberIssuer struct {
	mu   sync.Mutex
	last map[string]int
}

func NewMemoryNumberIssuer() *MemoryNumberIssuer {
	return &MemoryNumberIssuer{last: make(map[string]int)}
}

func (m *MemoryNumberIssuer) Issue(_ context.Context, date time.Time) (string, error) {
	key := date.Format("20060102")

	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.last[key] + 1
	if next > maxDailySequence {
		return "", ErrSequenceExhausted
	}
	m.last[key] = next
	return FormatClaimNumber(date, next), nil
}
