package browser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubElement implements Element with scriptable failures.
type stubElement struct {
	fillErr      error
	filledWith   string
	clickErrs    map[ClickMode]error
	clicks       []ClickMode
	scrollErr    error
	scrolled     bool
	disabled     bool
	disabledErr  error
	attrs        map[string]string
	text         string
	textErr      error
	inputValue   string
	setFilesPath string
}

func (s *stubElement) Fill(text string) error {
	if s.fillErr != nil {
		return s.fillErr
	}
	s.filledWith = text
	return nil
}

func (s *stubElement) Click(mode ClickMode) error {
	s.clicks = append(s.clicks, mode)
	if err, ok := s.clickErrs[mode]; ok {
		return err
	}
	return nil
}

func (s *stubElement) Hover() error { return nil }

func (s *stubElement) ScrollIntoView() error {
	s.scrolled = true
	return s.scrollErr
}

func (s *stubElement) IsDisabled() (bool, error) { return s.disabled, s.disabledErr }

func (s *stubElement) Attr(name string) (string, error) {
	if v, ok := s.attrs[name]; ok {
		return v, nil
	}
	return "", nil
}

func (s *stubElement) Text() (string, error) { return s.text, s.textErr }

func (s *stubElement) InputValue() (string, error) { return s.inputValue, nil }

func (s *stubElement) SetFiles(path string) error {
	s.setFilesPath = path
	return nil
}

// stubTarget implements Target over a selector -> element map.
type stubTarget struct {
	name      string
	elements  map[string]*stubElement
	queryErrs map[string]error
	queried   []string
	content   string
}

func (s *stubTarget) Name() string { return s.name }

func (s *stubTarget) Query(selector string) (Element, error) {
	s.queried = append(s.queried, selector)
	if err, ok := s.queryErrs[selector]; ok {
		return nil, err
	}
	if el, ok := s.elements[selector]; ok {
		return el, nil
	}
	return nil, nil
}

func (s *stubTarget) Content() (string, error) { return s.content, nil }

func (s *stubTarget) WaitFor(selector string, timeout time.Duration) (Element, error) {
	if el, ok := s.elements[selector]; ok {
		return el, nil
	}
	return nil, errors.New("timeout waiting for selector")
}

func testEngine() *Engine {
	return NewEngine(zap.NewNop())
}

func TestResolveIterationOrder(t *testing.T) {
	// Candidates within a context are exhausted before the next context is
	// tried: (ctx0,c0),(ctx0,c1),(ctx1,c0),...
	first := &stubTarget{name: "page"}
	second := &stubTarget{name: "frame:a", elements: map[string]*stubElement{
		"#primary": {},
	}}
	set := CandidateSet{Name: "save button", Selectors: []string{"#primary", ".fallback"}}

	m, err := testEngine().Resolve([]Target{first, second}, set)
	require.NoError(t, err)
	assert.Equal(t, "#primary", m.Selector)
	assert.Equal(t, "frame:a", m.Context)
	assert.Equal(t, []string{"#primary", ".fallback"}, first.queried)
	assert.Equal(t, []string{"#primary"}, second.queried)
}

func TestResolveFirstWinnerStopsScan(t *testing.T) {
	el := &stubElement{}
	first := &stubTarget{name: "page", elements: map[string]*stubElement{"#a": el}}
	second := &stubTarget{name: "frame:b", elements: map[string]*stubElement{"#a": {}}}
	set := CandidateSet{Name: "field", Selectors: []string{"#a", "#b"}}

	m, err := testEngine().Resolve([]Target{first, second}, set)
	require.NoError(t, err)
	assert.Same(t, el, m.Element.(*stubElement))
	assert.Empty(t, second.queried, "remaining combinations must not be probed")
}

func TestResolveMissReportsNotFound(t *testing.T) {
	target := &stubTarget{name: "page"}
	set := CandidateSet{Name: "field", Selectors: []string{"#a"}}

	_, err := testEngine().Resolve([]Target{target}, set)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveToleratesQueryFaults(t *testing.T) {
	// A stale-context fault on one candidate must not abort the scan.
	target := &stubTarget{
		name:      "page",
		queryErrs: map[string]error{"#broken": errors.New("execution context destroyed")},
		elements:  map[string]*stubElement{"#ok": {}},
	}
	set := CandidateSet{Name: "field", Selectors: []string{"#broken", "#ok"}}

	m, err := testEngine().Resolve([]Target{target}, set)
	require.NoError(t, err)
	assert.Equal(t, "#ok", m.Selector)
}

func TestFillSoftMissAndRawFaultPropagation(t *testing.T) {
	engine := testEngine()

	_, err := engine.Fill([]Target{&stubTarget{name: "page"}},
		CandidateSet{Name: "username", Selectors: []string{"#u"}}, "ben")
	assert.ErrorIs(t, err, ErrNotFound)

	fillFault := errors.New("element is not editable")
	target := &stubTarget{name: "page", elements: map[string]*stubElement{
		"#u": {fillErr: fillFault},
	}}
	_, err = engine.Fill([]Target{target},
		CandidateSet{Name: "username", Selectors: []string{"#u"}}, "ben")
	assert.ErrorIs(t, err, fillFault)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFillWritesText(t *testing.T) {
	el := &stubElement{}
	target := &stubTarget{name: "page", elements: map[string]*stubElement{"#u": el}}

	m, err := testEngine().Fill([]Target{target},
		CandidateSet{Name: "username", Selectors: []string{"#u"}}, "ben")
	require.NoError(t, err)
	assert.Equal(t, "ben", el.filledWith)
	assert.Equal(t, "#u", m.Selector)
}

func TestClickGraduation(t *testing.T) {
	// Plain and double click fail; forced click succeeds and is recorded,
	// with no prior failure surfaced.
	el := &stubElement{clickErrs: map[ClickMode]error{
		ClickPlain:  errors.New("element is covered"),
		ClickDouble: errors.New("element is covered"),
	}}
	target := &stubTarget{name: "page", elements: map[string]*stubElement{"#save": el}}

	m, err := testEngine().Click([]Target{target},
		CandidateSet{Name: "save", Selectors: []string{"#save"}})
	require.NoError(t, err)
	assert.Equal(t, ClickForced, m.Mode)
	assert.Equal(t, []ClickMode{ClickPlain, ClickDouble, ClickForced}, el.clicks)
	assert.True(t, el.scrolled)
}

func TestClickPlainWinsFirst(t *testing.T) {
	el := &stubElement{}
	target := &stubTarget{name: "page", elements: map[string]*stubElement{"#save": el}}

	m, err := testEngine().Click([]Target{target},
		CandidateSet{Name: "save", Selectors: []string{"#save"}})
	require.NoError(t, err)
	assert.Equal(t, ClickPlain, m.Mode)
	assert.Equal(t, []ClickMode{ClickPlain}, el.clicks)
}

func TestClickAllModesFail(t *testing.T) {
	boom := errors.New("detached")
	el := &stubElement{clickErrs: map[ClickMode]error{
		ClickPlain:  boom,
		ClickDouble: boom,
		ClickForced: boom,
	}}
	target := &stubTarget{name: "page", elements: map[string]*stubElement{"#save": el}}

	_, err := testEngine().Click([]Target{target},
		CandidateSet{Name: "save", Selectors: []string{"#save"}})
	assert.ErrorIs(t, err, ErrNotClickable)
}

func TestClickScrollFailureIgnored(t *testing.T) {
	el := &stubElement{scrollErr: errors.New("cannot scroll")}
	target := &stubTarget{name: "page", elements: map[string]*stubElement{"#save": el}}

	m, err := testEngine().Click([]Target{target},
		CandidateSet{Name: "save", Selectors: []string{"#save"}})
	require.NoError(t, err)
	assert.Equal(t, ClickPlain, m.Mode)
}
