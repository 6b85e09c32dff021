package claims

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestFormatClaimNumber(t *testing.T) {
	date := time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC)
	if got := FormatClaimNumber(date, 1); got != "CLM-20250307-0001" {
		t.Errorf("got %s, want CLM-20250307-0001", got)
	}
	if got := FormatClaimNumber(date, 9999); got != "CLM-20250307-9999" {
		t.Errorf("got %s, want CLM-20250307-9999", got)
	}
}

func TestMemoryIssuerSequential(t *testing.T) {
	issuer := NewMemoryNumberIssuer()
	date := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		got, err := issuer.Issue(context.Background(), date)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		want := fmt.Sprintf("CLM-20250307-%04d", i)
		if got != want {
			t.Errorf("issue %d = %s, want %s", i, got, want)
		}
	}
}

func TestMemoryIssuerResetsPerDate(t *testing.T) {
	issuer := NewMemoryNumberIssuer()
	day1 := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	if _, err := issuer.Issue(context.Background(), day1); err != nil {
		t.Fatal(err)
	}
	got, err := issuer.Issue(context.Background(), day2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "CLM-20250308-0001" {
		t.Errorf("got %s, want sequence restarted at 0001", got)
	}
}

func TestMemoryIssuerConcurrentUniqueness(t *testing.T) {
	issuer := NewMemoryNumberIssuer()
	date := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

	const n = 200
	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := issuer.Issue(context.Background(), date)
			if err != nil {
				t.Errorf("Issue: %v", err)
				return
			}
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, n)
	for num := range results {
		if seen[num] {
			t.Fatalf("duplicate claim number issued: %s", num)
		}
		seen[num] = true
	}
	if len(seen) != n {
		t.Fatalf("issued %d distinct numbers, want %d", len(seen), n)
	}
	// The set must be exactly 0001..n with no gaps.
	for i := 1; i <= n; i++ {
		want := FormatClaimNumber(date, i)
		if !seen[want] {
			t.Errorf("missing %s from issued set", want)
		}
	}
}

func TestMemoryIssuerExhaustion(t *testing.T) {
	issuer := NewMemoryNumberIssuer()
	date := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	issuer.last[date.Format("20060102")] = maxDailySequence

	if _, err := issuer.Issue(context.Background(), date); !errors.Is(err, ErrSequenceExhausted) {
		t.Errorf("err = %v, want ErrSequenceExhausted", err)
	}
}
