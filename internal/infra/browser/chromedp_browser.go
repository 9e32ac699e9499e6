package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"job-autopilot/internal/config"
	"job-autopilot/internal/domain"
	"job-autopilot/internal/domain/ports/adapter"
)

var _ adapter.Browser = (*ChromeBrowser)(nil)

// ChromeBrowser owns one headless Chrome process and hands out one tab per
// submission. The allocator is shared; browsing contexts are not.
type ChromeBrowser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	navTimeout  time.Duration
	log         *zerolog.Logger
}

func NewChromeBrowser(cfg *config.BrowserConfig, logger *zerolog.Logger) *ChromeBrowser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1366, 900),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	l := logger.With().Str("component", "ChromeBrowser").Logger()
	return &ChromeBrowser{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		navTimeout:  cfg.NavTimeout,
		log:         &l,
	}
}

func (b *ChromeBrowser) NewSession(ctx context.Context) (adapter.BrowserSession, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.allocCtx)
	// Starting the browser lazily on first Run surprises the idle watchdog;
	// do it here where a failure is still a clean session-open error.
	// Lifecycle events are off by default and Navigate waits on networkIdle.
	if err := chromedp.Run(tabCtx, page.SetLifecycleEventsEnabled(true)); err != nil {
		tabCancel()
		return nil, domain.Transient(fmt.Errorf("start browser tab: %w", err))
	}

	s := &chromeSession{
		ctx:        tabCtx,
		cancel:     tabCancel,
		navTimeout: b.navTimeout,
		log:        b.log,
	}
	chromedp.ListenTarget(tabCtx, s.onTargetEvent)
	return s, nil
}

// Close shuts the shared allocator down. Call once, on process shutdown.
func (b *ChromeBrowser) Close() {
	b.allocCancel()
}

type chromeSession struct {
	ctx        context.Context
	cancel     context.CancelFunc
	navTimeout time.Duration
	log        *zerolog.Logger

	mu        sync.Mutex
	lastEvent time.Time
	closeOnce sync.Once
}

var _ adapter.BrowserSession = (*chromeSession)(nil)

// onTargetEvent timestamps page lifecycle traffic. Takeover detection compares
// this against the driver's own last action.
func (s *chromeSession) onTargetEvent(ev interface{}) {
	switch ev.(type) {
	case *page.EventLifecycleEvent, *page.EventFrameNavigated, *page.EventJavascriptDialogOpening:
		s.mu.Lock()
		s.lastEvent = time.Now()
		s.mu.Unlock()
	}
}

// runScope derives the context for one CDP call. It descends from the tab
// context so chromedp can find the session, and is additionally cancelled
// when the caller's ctx dies, so driver teardown interrupts in-flight calls.
func (s *chromeSession) runScope(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.runScope(ctx, s.navTimeout)
	defer cancel()

	idle := make(chan struct{}, 1)
	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		if lc, ok := ev.(*page.EventLifecycleEvent); ok && lc.Name == "networkIdle" {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return domain.Transient(fmt.Errorf("navigate %s: %w", url, err))
	}

	// Challenge widgets often land after DOM-ready. Hold for network-idle
	// within the nav budget so the challenge check reads the settled page.
	select {
	case <-idle:
	case <-runCtx.Done():
		return domain.Transient(fmt.Errorf("navigate %s: %w", url, runCtx.Err()))
	}
	return nil
}

func (s *chromeSession) Title(ctx context.Context) (string, error) {
	runCtx, cancel := s.runScope(ctx, 0)
	defer cancel()
	var title string
	if err := chromedp.Run(runCtx, chromedp.Title(&title)); err != nil {
		return "", domain.Transient(err)
	}
	return title, nil
}

func (s *chromeSession) Content(ctx context.Context) (string, error) {
	runCtx, cancel := s.runScope(ctx, 0)
	defer cancel()
	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", domain.Transient(err)
	}
	return html, nil
}

// perSelectorTimeout bounds each candidate probe so a missing selector fails
// fast instead of eating the whole submission budget.
const perSelectorTimeout = 3 * time.Second

func (s *chromeSession) FillFirst(ctx context.Context, selectors []string, value string) (string, error) {
	return s.firstMatch(ctx, selectors, func(sel string, runCtx context.Context) error {
		return chromedp.Run(runCtx,
			chromedp.WaitVisible(sel, chromedp.ByQuery),
			chromedp.Clear(sel, chromedp.ByQuery),
			chromedp.SendKeys(sel, value, chromedp.ByQuery),
		)
	})
}

func (s *chromeSession) UploadFirst(ctx context.Context, selectors []string, path string) (string, error) {
	return s.firstMatch(ctx, selectors, func(sel string, runCtx context.Context) error {
		return chromedp.Run(runCtx,
			chromedp.SetUploadFiles(sel, []string{path}, chromedp.ByQuery),
		)
	})
}

func (s *chromeSession) ClickFirst(ctx context.Context, selectors []string) (string, error) {
	return s.firstMatch(ctx, selectors, func(sel string, runCtx context.Context) error {
		return chromedp.Run(runCtx,
			chromedp.WaitVisible(sel, chromedp.ByQuery),
			chromedp.Click(sel, chromedp.ByQuery),
		)
	})
}

func (s *chromeSession) firstMatch(ctx context.Context, selectors []string, action func(sel string, runCtx context.Context) error) (string, error) {
	for _, sel := range selectors {
		if err := ctx.Err(); err != nil {
			return "", domain.Transient(err)
		}
		runCtx, cancel := s.runScope(ctx, perSelectorTimeout)
		err := action(sel, runCtx)
		cancel()
		if err == nil {
			return sel, nil
		}
		s.log.Debug().Str("selector", sel).Err(err).Msg("selector candidate failed")
	}
	return "", fmt.Errorf("%w: no candidate matched out of %d", domain.ErrNotFound, len(selectors))
}

func (s *chromeSession) Screenshot(ctx context.Context) ([]byte, error) {
	runCtx, cancel := s.runScope(ctx, 0)
	defer cancel()
	var png []byte
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&png)); err != nil {
		return nil, err
	}
	return png, nil
}

func (s *chromeSession) LastEventAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEvent
}

func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
	})
	return nil
}
