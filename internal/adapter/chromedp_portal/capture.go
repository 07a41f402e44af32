package chromedp_portal

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/schedule-capture-service/internal/repository"
	"github.com/user/schedule-capture-service/pkg/utils"
)

// Print layout handed to the browser's native print-to-file capability:
// A4 landscape, inches.
const (
	printScale      = 0.8
	printPaperW     = 11.69
	printPaperH     = 8.27
	printMargin     = 0.4
	printPageRanges = "1"
)

// printTriggerSelectors are the structural heuristics for the portal's
// print control, in priority order. The first one matching wins.
var printTriggerSelectors = []string{
	`//a[@onclick and contains(@onclick, 'Imprimer')]`,
	`//a[contains(@onclick, 'Imprimer()')]`,
	`//img[@src='/dataop/visuel/icones/16x16/Imprimer.gif']/..`,
	`//img[contains(@src, 'Imprimer.gif')]/..`,
	`//a[@title='Imprimer cette visualisation']`,
	`//img[contains(@src, 'print')]/..`,
	`//a[contains(@onclick, 'print')]`,
	`//a[contains(text(), 'Imprimer')]`,
}

// CaptureWeek obtains the schedule for the week of targetDate as raw PDF
// bytes. It prefers opening the embedded agenda document in its own tab,
// since the browser's native print cannot reliably target nested frames;
// when no agenda frame is found it proceeds best-effort in the current
// context. The two hard gates are the print trigger lookup and the
// print-to-file payload.
func (p *Portal) CaptureWeek(ctx context.Context, targetDate string) ([]byte, error) {
	slog.Info("Generating schedule PDF")
	_ = chromedp.Run(p.tab, chromedp.Sleep(settleBeforeCapture))

	p.enterAgendaContext(targetDate)

	sel, node, err := p.findPrintTrigger()
	if err != nil {
		return nil, err
	}
	slog.Info("Found print button", "selector", sel)

	// Replace the page's print entry point before activating the trigger,
	// so the platform print dialog never opens.
	if err := chromedp.Run(p.tab, chromedp.Evaluate(inFrame(p.frame, printOverrideJS), nil)); err != nil {
		slog.Warn("Could not install print override", "error", err)
	} else {
		slog.Info("Print override installed")
	}
	_ = chromedp.Run(p.tab, chromedp.Sleep(settleAfterOverride))

	slog.Info("Clicking print button")
	if err := chromedp.Run(p.tab, chromedp.MouseClickNode(node)); err != nil {
		return nil, &repository.NavigationError{Step: "print trigger click", Err: err}
	}
	_ = chromedp.Run(p.tab, chromedp.Sleep(settleAfterTrigger))

	slog.Info("Invoking print-to-PDF")
	var buf []byte
	err = chromedp.Run(p.tab, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithLandscape(true).
			WithDisplayHeaderFooter(false).
			WithPrintBackground(true).
			WithScale(printScale).
			WithPaperWidth(printPaperW).
			WithPaperHeight(printPaperH).
			WithMarginTop(printMargin).
			WithMarginBottom(printMargin).
			WithMarginLeft(printMargin).
			WithMarginRight(printMargin).
			WithPageRanges(printPageRanges).
			WithPreferCSSPageSize(false).
			Do(ctx)
		if err != nil {
			return err
		}
		buf = data
		return nil
	}))
	if err != nil {
		return nil, &repository.ProcessingError{Op: "print-to-pdf", Err: err}
	}
	if len(buf) == 0 {
		return nil, &repository.ProcessingError{Op: "print-to-pdf", Err: repository.ErrNoDocumentData}
	}

	slog.Info("PDF captured", "bytes", len(buf))
	return buf, nil
}

// enterAgendaContext re-enters the content frame defensively, locates the
// embedded agenda document and, when found, opens it in a new tab and jumps
// to the target week. Every failure in here is non-fatal: the default view
// in the current context may already be acceptable.
func (p *Portal) enterAgendaContext(targetDate string) {
	if frames, err := p.listFrames(); err == nil && hasFrame(frames, contentFrameName) {
		p.frame = contentFrameName
		slog.Info("Re-entered content frame")
	}

	iframes, err := p.listIframes()
	if err != nil {
		slog.Warn("Error looking for agenda iframe", "error", err)
		return
	}
	slog.Info("Enumerated iframes", "count", len(iframes))
	for i, f := range iframes {
		slog.Info("Iframe", "index", i+1, "src", f.Src)
	}

	src := agendaFrameSrc(iframes)
	if src == "" {
		slog.Warn("No agenda iframe found, staying in current context")
		return
	}
	slog.Info("Found agenda iframe", "src", src)

	var location string
	if err := chromedp.Run(p.tab, chromedp.Location(&location)); err == nil {
		if base, perr := url.Parse(location); perr == nil {
			if abs, aerr := utils.ToAbsoluteURL(base, src); aerr == nil {
				src = abs
			}
		}
	}

	slog.Info("Opening agenda in new tab", "url", src)
	tabCtx, tabCancel := chromedp.NewContext(p.browserCtx)
	p.tabCancels = append(p.tabCancels, tabCancel)

	loadCtx, cancel := context.WithTimeout(tabCtx, p.lookupTimeout)
	err = chromedp.Run(loadCtx,
		chromedp.Navigate(src),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleAfterAgendaLoad),
	)
	cancel()
	if err != nil {
		slog.Warn("Agenda tab did not load, staying in current context", "error", err)
		return
	}

	// New tab becomes the active top-level context.
	p.tab = tabCtx
	p.frame = ""

	var pageLen, linkCount int
	_ = chromedp.Run(p.tab, chromedp.Evaluate(`document.documentElement.outerHTML.length`, &pageLen))
	_ = chromedp.Run(p.tab, chromedp.Evaluate(`document.getElementsByTagName('a').length`, &linkCount))
	slog.Info("Agenda page loaded", "page_length", pageLen, "links", linkCount)

	if targetDate != "" {
		slog.Info("Jumping to target week", "date", targetDate)
		expr := fmt.Sprintf("NavDat(%q);", targetDate)
		if err := chromedp.Run(p.tab, chromedp.Evaluate(expr, nil)); err != nil {
			slog.Warn("Could not jump to target date", "date", targetDate, "error", err)
		} else {
			_ = chromedp.Run(p.tab, chromedp.Sleep(settleAfterDateJump))
			slog.Info("Jumped to target week", "date", targetDate)
		}
	}
}

// listIframes enumerates embedded iframes of the active context.
func (p *Portal) listIframes() ([]frameInfo, error) {
	var iframes []frameInfo
	tctx, cancel := context.WithTimeout(p.tab, p.lookupTimeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Evaluate(inFrame(p.frame, listIframesJS), &iframes)); err != nil {
		return nil, err
	}
	return iframes, nil
}

// findPrintTrigger tests the trigger heuristics in order and returns the
// first match. Exhaustion is a hard failure: no document can be produced
// without the portal's own print action.
func (p *Portal) findPrintTrigger() (string, *cdp.Node, error) {
	for _, sel := range printTriggerSelectors {
		slog.Info("Trying print selector", "selector", sel)
		var nodes []*cdp.Node
		tctx, cancel := context.WithTimeout(p.tab, 2*time.Second)
		err := chromedp.Run(tctx, chromedp.Nodes(sel, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
		cancel()
		if err != nil || len(nodes) == 0 {
			continue
		}
		if onclick := nodes[0].AttributeValue("onclick"); onclick != "" {
			slog.Info("Print trigger onclick", "value", onclick)
		}
		return sel, nodes[0], nil
	}
	return "", nil, &repository.NavigationError{Step: "print trigger", Err: repository.ErrNoPrintTrigger}
}
