package browser

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Tracker enumerates live search contexts and captures transient popup
// windows. It holds no state of its own: context lists are produced fresh on
// demand because the remote page creates and destroys frames outside this
// system's control.
type Tracker struct {
	logger *zap.Logger
}

// NewTracker builds a context tracker.
func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{logger: logger.Named("tracker")}
}

// Targets returns the page's current search contexts, primary document first.
func (t *Tracker) Targets(p Page) []Target {
	return p.Targets()
}

// CapturePopup registers interest in the next popup window, runs trigger, and
// waits for the window to materialize and finish its initial load. A missing
// popup is reported as ErrPopupTimeout, deliberately distinct from
// ErrNotFound; callers usually treat it as soft unless the step is critical.
func (t *Tracker) CapturePopup(p Page, trigger func() error, timeout time.Duration) (Page, error) {
	popup, err := p.ExpectPopup(trigger, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPopupTimeout, err)
	}

	if err := popup.WaitLoaded(LoadStateDOMContentLoaded, timeout); err != nil {
		// The window exists; a slow initial load is not fatal.
		t.logger.Debug("Popup load wait did not complete.", zap.Error(err))
	}

	t.logger.Info("Popup window captured.", zap.String("url", popup.URL()))
	return popup, nil
}

// Probe scans the page's contexts for one whose content contains marker,
// returning the first hit. The popup's internal frame layout is not stable
// across releases, so locating the interesting context by content is more
// reliable than assuming a frame index or name. Contexts whose content cannot
// be read (mid-navigation, already gone) are skipped.
func (t *Tracker) Probe(p Page, marker string) (Target, bool) {
	for _, target := range p.Targets() {
		content, err := target.Content()
		if err != nil {
			t.logger.Debug("Context content unreadable during probe.",
				zap.String("context", target.Name()), zap.Error(err))
			continue
		}
		if strings.Contains(content, marker) {
			t.logger.Debug("Content probe matched.",
				zap.String("context", target.Name()), zap.String("marker", marker))
			return target, true
		}
	}
	return nil, false
}

// WaitAnywhere falls back to a direct bounded wait against the top-level
// document, for elements that render outside any frame, delayed.
func (t *Tracker) WaitAnywhere(p Page, selector string, timeout time.Duration) (Element, error) {
	el, err := p.WaitFor(selector, timeout)
	if err != nil {
		return nil, fmt.Errorf("waiting for %q on top-level document: %w", selector, err)
	}
	return el, nil
}
