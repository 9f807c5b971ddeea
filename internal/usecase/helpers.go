package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"slices"
	"time"

	"hospital-scheduling/internal/domain/entity"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// storePageSize is the page size used when walking the store lazily.
	storePageSize = 100

	// Status only moves forward (open -> booked -> completed), so a cancel
	// can observe at most this many different states.
	maxCancelAttempts = 3
)

// requireRole returns the current user when it acts in one of roles.
func requireRole(ctx context.Context, roles ...entity.Role) (entity.Principal, error) {
	principal, ok := entity.CurrentUser(ctx)
	if !ok {
		return entity.Principal{}, entity.ErrUnauthorized
	}
	if len(roles) > 0 && !slices.Contains(roles, principal.Role) {
		return entity.Principal{}, entity.ErrUnauthorized
	}
	return principal, nil
}

// parseDate parses YYYY-MM-DD into midnight UTC of that calendar date.
func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(entity.DateLayout, value)
	if err != nil {
		return time.Time{}, entity.ErrInvalidDate
	}
	return date, nil
}

// startOfDay is local midnight in loc of date's calendar day.
func startOfDay(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}

// parseDateRange parses optional inclusive bounds. Empty means unbounded.
func parseDateRange(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = parseDate(from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to != "" {
		if end, err = parseDate(to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return time.Time{}, time.Time{}, entity.ErrInvalidDateRange
	}
	return start, end, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// generateBookingCode generates a booking code: BK-YYYYMMDD-XXXXXX
func generateBookingCode(slotDate time.Time) string {
	dateStr := slotDate.Format("20060102")
	randomBytes := make([]byte, 3)
	rand.Read(randomBytes)
	randomStr := fmt.Sprintf("%06X", randomBytes)
	return fmt.Sprintf("BK-%s-%s", dateStr, randomStr)
}
