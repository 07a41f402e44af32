package chromedp_portal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/user/schedule-capture-service/internal/repository"
)

// OpenSchedule navigates from the authenticated root to the schedule
// application and switches the active context into its "content" frame
// when one exists.
func (p *Portal) OpenSchedule(ctx context.Context) error {
	slog.Info("Opening schedule view")
	_ = chromedp.Run(p.tab, chromedp.Sleep(500*time.Millisecond))

	if err := chromedp.Run(p.tab, chromedp.Navigate(scheduleEntryURL)); err != nil {
		return &repository.NavigationError{Step: "schedule entry", Err: err}
	}
	slog.Info("Schedule entry page reached")

	// Readiness signals the portal does expose are polled with a bound
	// instead of slept through; both are best-effort.
	if err := p.poll(`document.readyState === "complete"`, readyPollTimeout); err != nil {
		slog.Warn("Page load check timed out, continuing anyway", "error", err)
	} else {
		slog.Info("Page fully loaded")
	}
	if err := p.poll(`typeof jQuery !== "undefined"`, readyPollTimeout); err != nil {
		slog.Warn("jQuery not found or timeout, continuing", "error", err)
	} else {
		slog.Info("jQuery loaded")
	}

	_ = chromedp.Run(p.tab, chromedp.Sleep(settleAfterEntry))

	frames, err := p.listFrames()
	if err != nil {
		slog.Warn("Error checking frames structure", "error", err)
		return nil
	}
	slog.Info("Enumerated frames", "count", len(frames))
	for i, f := range frames {
		slog.Info("Frame", "index", i+1, "name", f.Name, "src", f.Src)
	}

	if hasFrame(frames, contentFrameName) {
		p.frame = contentFrameName
		// Frame content loads asynchronously with no completion signal.
		_ = chromedp.Run(p.tab, chromedp.Sleep(settleAfterFrameEnter))
		slog.Info("Switched to content frame")
	} else {
		p.frame = ""
		slog.Warn("No content frame found, staying in main context")
	}

	slog.Info("Schedule page ready")
	return nil
}

// listFrames enumerates the immediate child frames of the active tab's
// top-level document.
func (p *Portal) listFrames() ([]frameInfo, error) {
	var frames []frameInfo
	tctx, cancel := context.WithTimeout(p.tab, p.lookupTimeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Evaluate(listFramesJS, &frames)); err != nil {
		return nil, err
	}
	return frames, nil
}

// poll evaluates a JS predicate until it is truthy or the bound elapses.
func (p *Portal) poll(expr string, timeout time.Duration) error {
	var ok bool
	tctx, cancel := context.WithTimeout(p.tab, timeout+time.Second)
	defer cancel()
	err := chromedp.Run(tctx, chromedp.Poll(expr, &ok, chromedp.WithPollingTimeout(timeout)))
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("predicate not satisfied")
	}
	return nil
}
