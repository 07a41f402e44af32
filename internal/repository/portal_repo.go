package repository

import (
	"context"

	"github.com/user/schedule-capture-service/internal/entity"
)

// PortalRepository defines the contract for driving the institutional web
// portal. Implementations own exactly one browser instance for the life of
// the run; Close releases it and must be called exactly once.
type PortalRepository interface {
	// Login performs the single-sign-on flow with the given credentials.
	// Failures are reported as *NavigationError naming the control that
	// could not be reached.
	Login(ctx context.Context, creds entity.Credentials) error

	// OpenSchedule navigates from the authenticated root to the schedule
	// view and switches into its content frame when present.
	OpenSchedule(ctx context.Context) error

	// CaptureWeek triggers the portal's print action for the week of
	// targetDate (YYYYMMDD) and returns the raw PDF bytes produced by the
	// browser's print-to-file capability.
	CaptureWeek(ctx context.Context, targetDate string) ([]byte, error)

	// Close releases the browser.
	Close() error
}
