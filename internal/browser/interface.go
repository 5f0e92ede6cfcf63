// Package browser drives a remote browser session through narrow capability
// interfaces. The locator engine and context tracker operate on these
// interfaces only; the playwright adapter at the bottom of the package is the
// single place that knows about the concrete driver.
package browser

import (
	"errors"
	"time"
)

var (
	// ErrNotFound reports that no candidate selector resolved in any search
	// context. Callers decide severity; most workflow steps treat it as soft.
	ErrNotFound = errors.New("no candidate selector matched in any context")

	// ErrNotClickable reports that an element resolved but every click mode
	// in the fallback graduation failed.
	ErrNotClickable = errors.New("element resolved but could not be clicked")

	// ErrPopupTimeout reports that no popup window materialized within the
	// configured bound. Distinct from ErrNotFound: the trigger element was
	// found and clicked, the window never arrived.
	ErrPopupTimeout = errors.New("popup window did not appear within timeout")
)

// ClickMode selects one stage of the click fallback graduation.
type ClickMode int

const (
	// ClickPlain is a standard click honoring visibility and actionability.
	ClickPlain ClickMode = iota
	// ClickDouble is a double-click, tried when a plain click fails.
	ClickDouble
	// ClickForced bypasses visibility and actionability checks entirely. The
	// target surface is a legacy UI whose controls are sometimes obscured or
	// mid-animation; forcing trades strictness for workflow completion.
	ClickForced
)

func (m ClickMode) String() string {
	switch m {
	case ClickPlain:
		return "click"
	case ClickDouble:
		return "dblclick"
	case ClickForced:
		return "force-click"
	default:
		return "unknown"
	}
}

// LoadState names a page readiness milestone to wait for.
type LoadState string

const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

// Element is a live handle onto one page element. Handles go stale when the
// owning context navigates or closes; operations on a stale handle fail with
// the driver's error, which callers surface or swallow per step policy.
type Element interface {
	Fill(text string) error
	Click(mode ClickMode) error
	Hover() error
	ScrollIntoView() error
	IsDisabled() (bool, error)
	Attr(name string) (string, error)
	Text() (string, error)
	InputValue() (string, error)
	SetFiles(path string) error
}

// Target is one queryable search context: the top-level document, an iframe,
// or a popup window's document.
type Target interface {
	// Name identifies the context for diagnostics (e.g. "page", a frame URL).
	Name() string
	// Query returns the first element matching selector, or (nil, nil) when
	// the context is live but nothing matches.
	Query(selector string) (Element, error)
	// Content returns the context's current HTML, used for content probes.
	Content() (string, error)
	// WaitFor blocks until selector matches or the timeout elapses.
	WaitFor(selector string, timeout time.Duration) (Element, error)
}

// FileChooser is the native file-picker dialog captured from a triggering
// click.
type FileChooser interface {
	SetFiles(path string) error
}

// Page is a full browser page: a Target itself, plus frame enumeration,
// navigation, and event capture.
type Page interface {
	Target

	// Targets returns the current search contexts, primary document first,
	// then live frames in discovery order. The list is computed fresh on
	// every call; frames come and go under the remote page's control and
	// must never be cached across steps.
	Targets() []Target

	Navigate(url string) error
	WaitLoaded(state LoadState, timeout time.Duration) error

	// ExpectPopup registers interest in the next popup window, runs trigger,
	// and returns the popup once it materializes, bounded by timeout.
	ExpectPopup(trigger func() error, timeout time.Duration) (Page, error)

	// ExpectFileChooser registers interest in the next file-chooser dialog,
	// runs trigger, and returns the chooser.
	ExpectFileChooser(trigger func() error) (FileChooser, error)

	URL() string
	Title() (string, error)
	Close() error
}
