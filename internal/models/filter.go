package models

import (
	"errors"
	"time"
)

var (
	// ErrFilterEmpty means no deletion mode was selected at all.
	ErrFilterEmpty = errors.New("deletion filter is empty: set an account, a date range, or --all")

	// ErrFilterAllExclusive means --all was combined with another constraint.
	ErrFilterAllExclusive = errors.New("--all cannot be combined with an account or date range")

	// ErrFilterDateOrder means the start date is after the end date.
	ErrFilterDateOrder = errors.New("start date is after end date")
)

// DeletionFilter selects which remote transactions to delete. Exactly one
// mode is active: by account, by date range, by account+date range, or All.
// All is the destructive opt-in and is exclusive with everything else.
type DeletionFilter struct {
	AccountName string
	StartDate   *time.Time
	EndDate     *time.Time
	All         bool
}

func (f DeletionFilter) Validate() error {
	if f.All {
		if f.AccountName != "" || f.StartDate != nil || f.EndDate != nil {
			return ErrFilterAllExclusive
		}
		return nil
	}
	if f.AccountName == "" && f.StartDate == nil && f.EndDate == nil {
		return ErrFilterEmpty
	}
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return ErrFilterDateOrder
	}
	return nil
}

// Matches reports whether a remote transaction date falls inside the
// filter's date range. Bounds are inclusive.
func (f DeletionFilter) MatchesDate(date time.Time) bool {
	if f.StartDate != nil && date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && date.After(*f.EndDate) {
		return false
	}
	return true
}
