package browser

import (
	"fmt"

	"go.uber.org/zap"
)

// CandidateSet is an ordered sequence of selector expressions for one logical
// target. Order encodes preference. Sets are immutable configuration data.
type CandidateSet struct {
	Name      string
	Selectors []string
}

// Match records the winning (context, candidate) pair of a resolution, plus
// the click mode that succeeded when the operation was a click.
type Match struct {
	Element  Element
	Selector string
	Context  string
	Mode     ClickMode
}

// Engine resolves candidate sets against search contexts and performs
// interactions with graduated fallback.
type Engine struct {
	logger *zap.Logger
}

// NewEngine builds a locator resolution engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Named("locator")}
}

// Resolve returns the first (context, candidate) pair in iteration order that
// yields a live element: every candidate is tried within a context before
// moving to the next context. Only the winner is returned; remaining
// combinations are not probed. Query faults on individual candidates are
// tolerated (a context may have gone stale mid-scan) and scanning continues.
func (e *Engine) Resolve(targets []Target, set CandidateSet) (*Match, error) {
	for _, target := range targets {
		for _, selector := range set.Selectors {
			el, err := target.Query(selector)
			if err != nil {
				e.logger.Debug("Candidate probe failed, continuing.",
					zap.String("target", set.Name),
					zap.String("selector", selector),
					zap.String("context", target.Name()),
					zap.Error(err))
				continue
			}
			if el == nil {
				continue
			}
			e.logger.Debug("Candidate resolved.",
				zap.String("target", set.Name),
				zap.String("selector", selector),
				zap.String("context", target.Name()))
			return &Match{Element: el, Selector: selector, Context: target.Name()}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", set.Name, ErrNotFound)
}

// Fill resolves the set and writes text into the winning element. A miss is
// reported as ErrNotFound; a fault from the fill itself (stale handle, not
// editable) is propagated raw so the calling step decides severity.
func (e *Engine) Fill(targets []Target, set CandidateSet, text string) (*Match, error) {
	m, err := e.Resolve(targets, set)
	if err != nil {
		return nil, err
	}
	if err := m.Element.Fill(text); err != nil {
		return nil, fmt.Errorf("filling %s via %q: %w", set.Name, m.Selector, err)
	}
	return m, nil
}

// Click resolves the set and clicks the winning element through the fallback
// graduation: plain click, then double-click, then forced click. The first
// mode that succeeds wins and prior failures are not surfaced. Scrolling the
// element into view beforehand is best-effort; scroll failures are ignored.
func (e *Engine) Click(targets []Target, set CandidateSet) (*Match, error) {
	m, err := e.Resolve(targets, set)
	if err != nil {
		return nil, err
	}

	if err := m.Element.ScrollIntoView(); err != nil {
		e.logger.Debug("Scroll into view failed, clicking anyway.",
			zap.String("target", set.Name), zap.Error(err))
	}

	var lastErr error
	for _, mode := range []ClickMode{ClickPlain, ClickDouble, ClickForced} {
		if err := m.Element.Click(mode); err != nil {
			lastErr = err
			e.logger.Debug("Click attempt failed.",
				zap.String("target", set.Name),
				zap.Stringer("mode", mode),
				zap.Error(err))
			continue
		}
		m.Mode = mode
		if mode != ClickPlain {
			e.logger.Info("Click succeeded on fallback mode.",
				zap.String("target", set.Name),
				zap.Stringer("mode", mode))
		}
		return m, nil
	}
	return nil, fmt.Errorf("%s via %q: %w: %v", set.Name, m.Selector, ErrNotClickable, lastErr)
}
