package browser

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/xkilldash9x/fleetimport/internal/config"
)

// pwPage adapts playwright.Page to the Page interface.
type pwPage struct {
	page playwright.Page
	cfg  config.BrowserConfig
}

var _ Page = (*pwPage)(nil)

func newPage(page playwright.Page, cfg config.BrowserConfig) Page {
	return &pwPage{page: page, cfg: cfg}
}

func (p *pwPage) Name() string { return "page" }

func (p *pwPage) Query(selector string) (Element, error) {
	eh, err := p.page.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if eh == nil {
		return nil, nil
	}
	return &pwElement{eh: eh}, nil
}

func (p *pwPage) Content() (string, error) {
	return p.page.Content()
}

func (p *pwPage) WaitFor(selector string, timeout time.Duration) (Element, error) {
	eh, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, err
	}
	return &pwElement{eh: eh}, nil
}

// Targets returns the page itself followed by its live frames. The main frame
// is the page's own document and is skipped to avoid probing it twice.
func (p *pwPage) Targets() []Target {
	targets := []Target{p}
	main := p.page.MainFrame()
	for _, frame := range p.page.Frames() {
		if frame == main {
			continue
		}
		targets = append(targets, &pwFrame{frame: frame, cfg: p.cfg})
	}
	return targets
}

func (p *pwPage) Navigate(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(float64(p.cfg.NavigationTimeout.Milliseconds())),
	})
	return err
}

func (p *pwPage) WaitLoaded(state LoadState, timeout time.Duration) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   loadState(state),
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *pwPage) ExpectPopup(trigger func() error, timeout time.Duration) (Page, error) {
	popup, err := p.page.ExpectPopup(trigger, playwright.PageExpectPopupOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, err
	}
	return newPage(popup, p.cfg), nil
}

func (p *pwPage) ExpectFileChooser(trigger func() error) (FileChooser, error) {
	fc, err := p.page.ExpectFileChooser(trigger)
	if err != nil {
		return nil, err
	}
	return &pwFileChooser{fc: fc}, nil
}

func (p *pwPage) URL() string { return p.page.URL() }

func (p *pwPage) Title() (string, error) { return p.page.Title() }

func (p *pwPage) Close() error { return p.page.Close() }

func loadState(state LoadState) *playwright.LoadState {
	switch state {
	case LoadStateDOMContentLoaded:
		return playwright.LoadStateDomcontentloaded
	case LoadStateNetworkIdle:
		return playwright.LoadStateNetworkidle
	default:
		return playwright.LoadStateLoad
	}
}

// pwFrame adapts playwright.Frame to the Target interface.
type pwFrame struct {
	frame playwright.Frame
	cfg   config.BrowserConfig
}

var _ Target = (*pwFrame)(nil)

func (f *pwFrame) Name() string {
	if url := f.frame.URL(); url != "" {
		return "frame:" + url
	}
	return "frame"
}

func (f *pwFrame) Query(selector string) (Element, error) {
	eh, err := f.frame.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if eh == nil {
		return nil, nil
	}
	return &pwElement{eh: eh}, nil
}

func (f *pwFrame) Content() (string, error) {
	return f.frame.Content()
}

func (f *pwFrame) WaitFor(selector string, timeout time.Duration) (Element, error) {
	eh, err := f.frame.WaitForSelector(selector, playwright.FrameWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, err
	}
	return &pwElement{eh: eh}, nil
}

// pwElement adapts playwright.ElementHandle to the Element interface.
type pwElement struct {
	eh playwright.ElementHandle
}

var _ Element = (*pwElement)(nil)

func (e *pwElement) Fill(text string) error {
	return e.eh.Fill(text)
}

func (e *pwElement) Click(mode ClickMode) error {
	switch mode {
	case ClickDouble:
		return e.eh.Dblclick()
	case ClickForced:
		return e.eh.Click(playwright.ElementHandleClickOptions{
			Force: playwright.Bool(true),
		})
	default:
		return e.eh.Click()
	}
}

func (e *pwElement) Hover() error {
	return e.eh.Hover()
}

func (e *pwElement) ScrollIntoView() error {
	return e.eh.ScrollIntoViewIfNeeded()
}

func (e *pwElement) IsDisabled() (bool, error) {
	return e.eh.IsDisabled()
}

func (e *pwElement) Attr(name string) (string, error) {
	return e.eh.GetAttribute(name)
}

func (e *pwElement) Text() (string, error) {
	return e.eh.InnerText()
}

func (e *pwElement) InputValue() (string, error) {
	return e.eh.InputValue()
}

func (e *pwElement) SetFiles(path string) error {
	files, err := inputFiles(path)
	if err != nil {
		return err
	}
	return e.eh.SetInputFiles(files)
}

// pwFileChooser adapts playwright.FileChooser.
type pwFileChooser struct {
	fc playwright.FileChooser
}

var _ FileChooser = (*pwFileChooser)(nil)

func (c *pwFileChooser) SetFiles(path string) error {
	files, err := inputFiles(path)
	if err != nil {
		return err
	}
	return c.fc.SetFiles(files)
}

func inputFiles(path string) ([]playwright.InputFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading upload file %q: %w", path, err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return []playwright.InputFile{{
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Buffer:   data,
	}}, nil
}
