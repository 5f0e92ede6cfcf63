package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetimport/internal/config"
)

const playwrightInstallTimeout = 5 * time.Minute

// Launcher owns the browser process lifecycle. The driver and the Chromium
// instance are started lazily on the first session request and shared across
// sessions; each session gets its own isolated browser context and page, so
// concurrent runs share no mutable page state.
type Launcher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	pw      *playwright.Playwright
	browser playwright.Browser

	initOnce sync.Once
	initErr  error
}

// NewLauncher creates a launcher. Initialization is deferred until the first
// session is requested.
func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger) *Launcher {
	return &Launcher{
		cfg:    cfg,
		logger: logger.Named("browser_launcher"),
	}
}

// initialize starts the playwright driver and launches the browser instance.
func (l *Launcher) initialize(ctx context.Context) error {
	l.initOnce.Do(func() {
		l.logger.Info("Initializing playwright and launching browser...",
			zap.Bool("headless", l.cfg.Headless))

		if err := l.ensureInstallation(ctx); err != nil {
			l.initErr = err
			return
		}

		pw, err := playwright.Run()
		if err != nil {
			l.initErr = fmt.Errorf("failed to start playwright driver: %w", err)
			return
		}
		l.pw = pw

		browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(l.cfg.Headless),
			Timeout:  playwright.Float(60000),
			Args: []string{
				"--disable-gpu",
				"--no-sandbox",
				"--disable-dev-shm-usage",
			},
		})
		if err != nil {
			pw.Stop()
			l.initErr = fmt.Errorf("failed to launch browser instance: %w", err)
			return
		}
		l.browser = browser

		l.logger.Info("Browser launched.", zap.String("version", browser.Version()))
	})
	return l.initErr
}

func (l *Launcher) ensureInstallation(ctx context.Context) error {
	installCtx, cancel := context.WithTimeout(ctx, playwrightInstallTimeout)
	defer cancel()

	// Install blocks; run it in a goroutine so the timeout holds.
	errCh := make(chan error, 1)
	go func() {
		errCh <- playwright.Install(&playwright.RunOptions{
			Browsers: []string{"chromium"},
		})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to install playwright browsers: %w", err)
		}
		return nil
	case <-installCtx.Done():
		return fmt.Errorf("timeout waiting for playwright installation: %w", installCtx.Err())
	}
}

// NewSession allocates an isolated browser context and page for one workflow
// run. The caller owns the session and must Close it on every exit path.
func (l *Launcher) NewSession(ctx context.Context) (*Session, error) {
	if err := l.initialize(ctx); err != nil {
		return nil, err
	}

	bc, err := l.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  l.cfg.ViewportWidth,
			Height: l.cfg.ViewportHeight,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	pwPage, err := bc.NewPage()
	if err != nil {
		bc.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	id := uuid.New().String()
	s := &Session{
		id:     id,
		bc:     bc,
		page:   newPage(pwPage, l.cfg),
		logger: l.logger.Named("session").With(zap.String("session_id", id)),
	}
	s.logger.Debug("Session created.")
	return s, nil
}

// Shutdown tears down the shared browser and driver. Safe to call when the
// launcher never initialized.
func (l *Launcher) Shutdown() {
	if l.browser != nil {
		if err := l.browser.Close(); err != nil {
			l.logger.Warn("Browser close failed during shutdown.", zap.Error(err))
		}
	}
	if l.pw != nil {
		if err := l.pw.Stop(); err != nil {
			l.logger.Warn("Playwright stop failed during shutdown.", zap.Error(err))
		}
	}
}

// Session is one isolated browser context plus its page, owned end-to-end by
// a single workflow run.
type Session struct {
	id     string
	bc     playwright.BrowserContext
	page   Page
	logger *zap.Logger

	mu       sync.Mutex
	isClosed bool
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string {
	return s.id
}

// Page returns the session's page.
func (s *Session) Page() Page {
	return s.page
}

// Close releases the browser context. Idempotent; safe on every exit path.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")
	if err := s.bc.Close(); err != nil {
		return fmt.Errorf("closing browser context: %w", err)
	}
	return nil
}
