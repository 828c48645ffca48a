package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apetrov/zenimport/internal/models"
)

// Category labels for transactions with no category and for the top-N
// remainder bucket.
const (
	NoCategoryLabel = "Без категории"
	OtherLabel      = "Остальное"
)

// Period selects the aggregation bucket size.
type Period string

const (
	PeriodDay  Period = "day"
	PeriodWeek Period = "week"
)

// Summary totals a transaction set.
type Summary struct {
	Income  decimal.Decimal
	Outcome decimal.Decimal
}

// Balance is income minus outcome.
func (s Summary) Balance() decimal.Decimal {
	return s.Income.Sub(s.Outcome)
}

// Summarize sums income and outcome over the given transactions.
func Summarize(transactions []models.RemoteTransaction) Summary {
	s := Summary{Income: decimal.Zero, Outcome: decimal.Zero}
	for _, t := range transactions {
		s.Income = s.Income.Add(t.Income)
		s.Outcome = s.Outcome.Add(t.Outcome)
	}
	return s
}

// CategoryTotal is one category's total outcome.
type CategoryTotal struct {
	Category string
	Outcome  decimal.Decimal
}

// TopCategories groups outcome transactions by category and returns the
// top-N categories by total outcome plus one remainder bucket summing
// everything else. Ordering is deterministic: higher total wins, equal
// totals break by category name ascending.
func TopCategories(transactions []models.RemoteTransaction, n int) []CategoryTotal {
	totals := categoryTotals(transactions)
	if len(totals) <= n {
		return totals
	}

	top := totals[:n]
	other := decimal.Zero
	for _, ct := range totals[n:] {
		other = other.Add(ct.Outcome)
	}
	return append(top, CategoryTotal{Category: OtherLabel, Outcome: other})
}

func categoryTotals(transactions []models.RemoteTransaction) []CategoryTotal {
	byCategory := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if !t.Outcome.IsPositive() {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = NoCategoryLabel
		}
		byCategory[cat] = byCategory[cat].Add(t.Outcome)
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for cat, sum := range byCategory {
		totals = append(totals, CategoryTotal{Category: cat, Outcome: sum})
	}
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Outcome.Equal(totals[j].Outcome) {
			return totals[i].Outcome.GreaterThan(totals[j].Outcome)
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}

// PeriodBucket is one day or week of outcome, broken down by category.
type PeriodBucket struct {
	Start      time.Time
	Categories []CategoryTotal
}

// OutcomeByPeriod groups outcome transactions into day or week buckets and
// totals each category within a bucket. Buckets are sorted by start date,
// categories by name, so the output is stable.
func OutcomeByPeriod(transactions []models.RemoteTransaction, period Period) []PeriodBucket {
	buckets := make(map[time.Time]map[string]decimal.Decimal)
	for _, t := range transactions {
		if !t.Outcome.IsPositive() {
			continue
		}
		start := bucketStart(t.Date, period)
		if buckets[start] == nil {
			buckets[start] = make(map[string]decimal.Decimal)
		}
		cat := t.Category
		if cat == "" {
			cat = NoCategoryLabel
		}
		buckets[start][cat] = buckets[start][cat].Add(t.Outcome)
	}

	out := make([]PeriodBucket, 0, len(buckets))
	for start, byCategory := range buckets {
		bucket := PeriodBucket{Start: start}
		for cat, sum := range byCategory {
			bucket.Categories = append(bucket.Categories, CategoryTotal{Category: cat, Outcome: sum})
		}
		sort.Slice(bucket.Categories, func(i, j int) bool {
			return bucket.Categories[i].Category < bucket.Categories[j].Category
		})
		out = append(out, bucket)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// bucketStart truncates a date to its bucket start: the date itself for
// daily buckets, the Monday of its ISO week for weekly ones.
func bucketStart(date time.Time, period Period) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if period != PeriodWeek {
		return day
	}
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
