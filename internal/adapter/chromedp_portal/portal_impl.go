// Package chromedp_portal drives the institutional portal through a real
// Chrome instance. It implements the authentication, navigation and capture
// stages of the pipeline on top of chromedp, with every element lookup
// bounded by the session's explicit wait policy.
package chromedp_portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/user/schedule-capture-service/internal/entity"
	"github.com/user/schedule-capture-service/internal/repository"
)

const (
	portalRootURL    = "https://pass.imt-atlantique.fr"
	portalDomain     = "pass.imt-atlantique.fr"
	scheduleEntryURL = "https://pass.imt-atlantique.fr/OpDotNet/Noyau/Default.aspx?"

	contentFrameName = "content"
	agendaMarker     = "Agenda.asp"
)

// Fixed settle delays for actions whose asynchronous side effects expose no
// observable completion signal (client-side redirects, frame loading).
const (
	settleAfterRootLoad   = 2 * time.Second
	settleAfterSSO        = 3 * time.Second
	settleAfterSubmit     = 4 * time.Second
	settleAfterConfirm    = 3 * time.Second
	settleAfterEntry      = 2 * time.Second
	settleAfterFrameEnter = 5 * time.Second
	settleBeforeCapture   = 3 * time.Second
	settleAfterAgendaLoad = 8 * time.Second
	settleAfterDateJump   = 3 * time.Second
	settleAfterOverride   = 1 * time.Second
	settleAfterTrigger    = 3 * time.Second

	readyPollTimeout = 10 * time.Second
)

// Portal owns one browser instance for the duration of a run.
type Portal struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	// tab is the active top-level browsing context; frame is the active
	// frame inside it ("" means top-level). Context transitions are always
	// explicit, no operation assumes a context implicitly.
	tab        context.Context
	frame      string
	tabCancels []context.CancelFunc

	lookupTimeout time.Duration
}

// NewPortal starts Chrome with the portal's automation profile. The caller
// owns the returned Portal and must Close it exactly once.
func NewPortal(lookupTimeout time.Duration) (repository.PortalRepository, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// The portal's print flow is interactive; the session runs headful
		// with the system print dialog suppressed.
		chromedp.Flag("headless", false),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("kiosk-printing", true),
		chromedp.Flag("disable-print-preview", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			slog.Debug(fmt.Sprintf(format, args...))
		}),
	)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Portal{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		tab:           browserCtx,
		lookupTimeout: lookupTimeout,
	}, nil
}

// Close releases every tab and the browser itself. Safe to call once on any
// exit route.
func (p *Portal) Close() error {
	for _, cancel := range p.tabCancels {
		cancel()
	}
	p.browserCancel()
	p.allocCancel()
	return nil
}

// Login performs the portal's single-sign-on flow.
func (p *Portal) Login(ctx context.Context, creds entity.Credentials) error {
	if creds.Username == "" || creds.Password == "" {
		return &repository.NavigationError{Step: "credentials", Err: errors.New("username and password are required")}
	}

	slog.Info("Connecting to portal")
	if err := chromedp.Run(p.tab,
		chromedp.Navigate(portalRootURL),
		chromedp.Sleep(settleAfterRootLoad),
	); err != nil {
		return &repository.NavigationError{Step: "portal root", Err: err}
	}
	slog.Info("Portal root reached")

	slog.Info("Looking for SSO button")
	if err := p.click(`//button[span[text()='SSO']]`, chromedp.BySearch); err != nil {
		return &repository.NavigationError{Step: "sso button", Err: err}
	}
	_ = chromedp.Run(p.tab, chromedp.Sleep(settleAfterSSO))
	slog.Info("SSO button clicked")

	slog.Info("Looking for login form")
	if err := p.waitVisible("#username", "#password"); err != nil {
		return &repository.NavigationError{Step: "login form", Err: err}
	}
	if err := chromedp.Run(p.tab,
		chromedp.Clear("#username", chromedp.ByQuery),
		chromedp.SendKeys("#username", creds.Username, chromedp.ByQuery),
		chromedp.Clear("#password", chromedp.ByQuery),
		chromedp.SendKeys("#password", creds.Password, chromedp.ByQuery),
	); err != nil {
		return &repository.NavigationError{Step: "credential entry", Err: err}
	}
	slog.Info("Credentials entered")

	if err := p.click(".btn-submit", chromedp.ByQuery); err != nil {
		return &repository.NavigationError{Step: "submit button", Err: err}
	}
	_ = chromedp.Run(p.tab, chromedp.Sleep(settleAfterSubmit))
	slog.Info("Login form submitted")

	if err := p.click(`[name="_eventId_proceed"]`, chromedp.ByQuery); err != nil {
		return &repository.NavigationError{Step: "confirmation button", Err: err}
	}
	_ = chromedp.Run(p.tab, chromedp.Sleep(settleAfterConfirm))
	slog.Info("Login confirmed")

	// Some post-login redirects are benign, so an off-domain location is
	// only a warning. A genuinely failed login surfaces later with a less
	// specific navigation error.
	var location string
	if err := chromedp.Run(p.tab, chromedp.Location(&location)); err != nil {
		slog.Warn("Could not verify login success", "error", err)
	} else if !strings.Contains(location, portalDomain) {
		slog.Warn("Unexpected redirect after login", "url", location)
	}

	slog.Info("Login completed successfully")
	return nil
}

// click waits for the element to be visible and clicks it, bounded by the
// session's lookup timeout.
func (p *Portal) click(sel string, opts ...chromedp.QueryOption) error {
	ctx, cancel := context.WithTimeout(p.tab, p.lookupTimeout)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.WaitVisible(sel, opts...),
		chromedp.Click(sel, opts...),
	)
}

// waitVisible waits for each selector to become visible, bounded by the
// session's lookup timeout.
func (p *Portal) waitVisible(sels ...string) error {
	ctx, cancel := context.WithTimeout(p.tab, p.lookupTimeout)
	defer cancel()
	actions := make([]chromedp.Action, 0, len(sels))
	for _, sel := range sels {
		actions = append(actions, chromedp.WaitVisible(sel, chromedp.ByQuery))
	}
	return chromedp.Run(ctx, actions...)
}
