// Package workflow drives the fleet card-transaction import sequence against
// the remote application: login, menu navigation, import, search popup, file
// upload, gross validation, then save, check, and post. Each invocation is a
// single stateless pass ending in a classified Result.
package workflow

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetimport/internal/amount"
	"github.com/xkilldash9x/fleetimport/internal/browser"
	"github.com/xkilldash9x/fleetimport/internal/config"
	"github.com/xkilldash9x/fleetimport/internal/storage"
)

const (
	// menuHoverDelay lets the legacy menu scripts render a dropdown after a
	// hover; the render is not otherwise observable.
	menuHoverDelay = 1 * time.Second
	// postBrowseDelay mirrors the settle the target needs after the upload
	// dialog interaction.
	postBrowseDelay = 3 * time.Second
	// loadSettleTimeout bounds the network-idle waits between steps.
	loadSettleTimeout = 10 * time.Second
)

// Session is the slice of a browser session the workflow consumes.
type Session interface {
	ID() string
	Page() browser.Page
	Close() error
}

// SessionFactory allocates one isolated session per run.
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}

// SessionFactoryFunc adapts a function to the SessionFactory interface.
type SessionFactoryFunc func(ctx context.Context) (Session, error)

// NewSession implements SessionFactory.
func (f SessionFactoryFunc) NewSession(ctx context.Context) (Session, error) {
	return f(ctx)
}

// ArtifactFetcher resolves and stages the invoice file to attach.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, name, dir string) (*storage.Artifact, error)
}

// Runner executes the workflow state machine. It holds no per-run state;
// every Run allocates its own session, scratch path, and trace.
type Runner struct {
	sessions  SessionFactory
	artifacts ArtifactFetcher
	engine    *browser.Engine
	tracker   *browser.Tracker

	browserCfg  config.BrowserConfig
	workflowCfg config.WorkflowConfig
	scratchDir  string
	logger      *zap.Logger

	// sleep is injectable so tests run without wall-clock delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner builds a workflow runner.
func NewRunner(
	sessions SessionFactory,
	artifacts ArtifactFetcher,
	browserCfg config.BrowserConfig,
	workflowCfg config.WorkflowConfig,
	logger *zap.Logger,
) *Runner {
	log := logger.Named("workflow")
	return &Runner{
		sessions:    sessions,
		artifacts:   artifacts,
		engine:      browser.NewEngine(log),
		tracker:     browser.NewTracker(log),
		browserCfg:  browserCfg,
		workflowCfg: workflowCfg,
		scratchDir:  os.TempDir(),
		logger:      log,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run carries the mutable state of one invocation.
type run struct {
	r   *Runner
	req Request
	log *zap.Logger

	page  browser.Page
	popup browser.Page

	// dzOwner is the page whose file-chooser event fires when the dropzone
	// browse link is clicked; dzTarget is the context holding the dropzone.
	dzOwner  browser.Page
	dzTarget browser.Target

	artifact *storage.Artifact
	trace    Trace
	data     Data
}

// Run executes one full workflow pass. It never raises: every fault resolves
// to a Result, and the session plus any staged scratch file are released on
// all exit paths.
func (r *Runner) Run(ctx context.Context, req Request) (res Result) {
	if req.URL == "" {
		req.URL = r.workflowCfg.DefaultURL
	}

	st := &run{
		r:   r,
		req: req,
		log: r.logger.With(zap.String("username", req.Username)),
	}

	defer func() {
		if rec := recover(); rec != nil {
			st.log.Error("Workflow panicked.", zap.Any("panic", rec), zap.Stack("stack"))
			res = st.fail(classified(KeyAutomationFailed, "unexpected fault: %v", rec))
		}
	}()
	defer func() {
		st.artifact.Cleanup()
	}()

	st.log.Info("Workflow run starting.", zap.String("url", req.URL))

	session, err := r.sessions.NewSession(ctx)
	if err != nil {
		st.log.Error("Could not allocate browser session.", zap.Error(err))
		return st.fail(classified(KeyAutomationFailed, "browser session unavailable: %v", err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			st.log.Warn("Session close failed.", zap.Error(err))
		}
	}()
	st.page = session.Page()

	if failure := st.execute(ctx); failure != nil {
		st.log.Warn("Workflow stopped.", zap.String("key", failure.Key), zap.String("message", failure.Message))
		return st.fail(failure)
	}

	st.log.Info("Workflow run completed.")
	return st.complete()
}

// execute walks the state machine in program order. A nil return means the
// run reached a terminal success state; a non-nil return is a hard gate.
func (s *run) execute(ctx context.Context) *Error {
	if failure := s.stageArtifact(ctx); failure != nil {
		return failure
	}
	if failure := s.login(ctx); failure != nil {
		return failure
	}
	s.navigateMenus(ctx)
	s.openImport(ctx)
	s.searchAndCapturePopup(ctx)
	s.locateDropzone()
	s.upload(ctx)
	if failure := s.fillInvoice(ctx); failure != nil {
		return failure
	}
	if failure := s.validateGross(ctx); failure != nil {
		return failure
	}
	s.save(ctx)
	if failure := s.check(ctx); failure != nil {
		return failure
	}
	return s.post(ctx)
}

// stageArtifact resolves and downloads the invoice file before any page
// navigation commits to it. A resolver miss is a hard gate.
func (s *run) stageArtifact(ctx context.Context) *Error {
	if s.req.S3Filename == "" {
		s.trace.Skipped("stage_file", "no filename supplied; simple variant")
		return nil
	}

	artifact, err := s.r.artifacts.Fetch(ctx, s.req.S3Filename, s.r.scratchDir)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return classified(KeyS3NotFound, "file %q not found in object storage", s.req.S3Filename)
		}
		return classified(KeyAutomationFailed, "staging %q failed: %v", s.req.S3Filename, err)
	}

	s.artifact = artifact
	s.data.FileStaged = true
	s.trace.Advanced("stage_file", nil, "staged "+artifact.Key)
	return nil
}

func (s *run) login(ctx context.Context) *Error {
	if err := s.page.Navigate(s.req.URL); err != nil {
		return classified(KeyAutomationFailed, "navigation to login page failed: %v", err)
	}
	if err := s.page.WaitLoaded(browser.LoadStateNetworkIdle, loadSettleTimeout); err != nil {
		s.log.Debug("Login page never went network-idle, continuing.", zap.Error(err))
	}
	s.trace.Advanced("open_login", nil, "")

	s.data.UsernameFilled = s.fillStep("fill_username", usernameField, s.req.Username)
	s.data.PasswordFilled = s.fillStep("fill_password", passwordField, s.req.Password)
	s.data.SubmitClicked = s.clickStep("submit_login", submitButton)

	if err := s.page.WaitLoaded(browser.LoadStateNetworkIdle, loadSettleTimeout); err != nil {
		s.log.Debug("Post-login load wait timed out, continuing.", zap.Error(err))
	}
	return nil
}

// navigateMenus hovers Fleet then Card Services, then clicks Transactions.
// Every miss here is soft: later steps may still succeed against a partially
// loaded page.
func (s *run) navigateMenus(ctx context.Context) {
	if s.hoverStep("hover_fleet", fleetMenu) {
		_ = s.r.sleep(ctx, menuHoverDelay)
	}
	if s.hoverStep("hover_card_services", cardServicesMenu) {
		_ = s.r.sleep(ctx, menuHoverDelay)
	}
	if s.clickStep("open_transactions", transactionsLink) {
		if err := s.page.WaitLoaded(browser.LoadStateNetworkIdle, loadSettleTimeout); err != nil {
			s.log.Debug("Transactions load wait timed out, continuing.", zap.Error(err))
		}
	}
}

func (s *run) openImport(ctx context.Context) {
	if s.clickStep("open_import", importButton) {
		if err := s.page.WaitLoaded(browser.LoadStateNetworkIdle, loadSettleTimeout); err != nil {
			s.log.Debug("Import load wait timed out, continuing.", zap.Error(err))
		}
	}
	if s.fillStep("fill_interface_code", interfaceCodeField, s.r.workflowCfg.InterfaceCode) {
		_ = s.r.sleep(ctx, s.r.browserCfg.SettleDelay)
	}
}

// searchAndCapturePopup clicks the search icon while watching for the popup
// window it spawns. A popup timeout is soft; the record may have been
// selected without one.
func (s *run) searchAndCapturePopup(ctx context.Context) {
	m, err := s.r.engine.Resolve(s.page.Targets(), searchButton)
	if err != nil {
		s.trace.Skipped("open_search", err.Error())
		return
	}

	popup, err := s.r.tracker.CapturePopup(s.page, func() error {
		_, clickErr := s.r.engine.Click(s.page.Targets(), searchButton)
		return clickErr
	}, s.r.browserCfg.PopupTimeout)
	if err != nil {
		s.trace.Skipped("capture_popup", err.Error())
		_ = s.r.sleep(ctx, s.r.browserCfg.SettleDelay)
		return
	}

	s.popup = popup
	s.trace.Advanced("capture_popup", m, "popup at "+popup.URL())
	// Give the page's onblur scripts time to select the record.
	_ = s.r.sleep(ctx, s.r.browserCfg.SettleDelay)
	s.trace.Advanced("record_selected", nil, "")
}

// locateDropzone probes the popup and the main page for the context holding
// the upload dropzone, falling back to a direct wait on the top-level
// document: the dropzone sometimes renders outside any frame, delayed.
func (s *run) locateDropzone() {
	if s.popup != nil {
		if target, ok := s.r.tracker.Probe(s.popup, dropzoneMarker); ok {
			s.dzOwner, s.dzTarget = s.popup, target
			s.trace.Advanced("locate_dropzone", nil, "found in "+target.Name())
			return
		}
	}
	if target, ok := s.r.tracker.Probe(s.page, dropzoneMarker); ok {
		s.dzOwner, s.dzTarget = s.page, target
		s.trace.Advanced("locate_dropzone", nil, "found in "+target.Name())
		return
	}

	if _, err := s.r.tracker.WaitAnywhere(s.page, dropzoneBrowseLink, s.r.browserCfg.SelectorTimeout); err != nil {
		s.trace.Skipped("locate_dropzone", err.Error())
		return
	}
	s.dzOwner, s.dzTarget = s.page, s.page
	s.trace.Advanced("locate_dropzone", nil, "found on top-level document after wait")
}

// upload attaches the staged file through the native file chooser spawned by
// the dropzone browse link. Without a staged file (simple variant) the browse
// link is clicked on its own, as the legacy flow expects. Upload faults are
// soft; the scratch file is removed as soon as this step concludes.
func (s *run) upload(ctx context.Context) {
	defer s.artifact.Cleanup()

	if s.dzTarget == nil {
		s.trace.Skipped("upload_file", "no dropzone context available")
		return
	}

	browseLink, err := s.dzTarget.WaitFor(dropzoneBrowseLink, s.r.browserCfg.SelectorTimeout)
	if err != nil {
		s.trace.Skipped("upload_file", "browse link never appeared: "+err.Error())
		return
	}

	if s.artifact == nil {
		if err := browseLink.Click(browser.ClickPlain); err != nil {
			s.trace.Skipped("upload_file", "browse click failed: "+err.Error())
		} else {
			s.trace.Advanced("upload_file", nil, "browse clicked, no file to attach")
		}
		_ = s.r.sleep(ctx, postBrowseDelay)
		return
	}

	chooser, err := s.dzOwner.ExpectFileChooser(func() error {
		return browseLink.Click(browser.ClickPlain)
	})
	if err != nil {
		s.trace.Skipped("upload_file", "file chooser did not open: "+err.Error())
		return
	}
	if err := chooser.SetFiles(s.artifact.LocalPath); err != nil {
		s.trace.Skipped("upload_file", "attaching file failed: "+err.Error())
		return
	}

	s.data.FileUploaded = true
	s.trace.Advanced("upload_file", nil, "attached "+s.artifact.Key)
	_ = s.r.sleep(ctx, s.r.browserCfg.SettleDelay)
}

// fillInvoice writes the caller's invoice number. When a number was supplied
// and the input is absent after the upload, the target record already exists
// upstream: a hard gate.
func (s *run) fillInvoice(ctx context.Context) *Error {
	if s.req.InvoiceNo == "" {
		s.trace.Skipped("fill_invoice", "no invoice number supplied")
		return nil
	}

	m, err := s.r.engine.Resolve(s.targets(), invoiceField)
	if err != nil {
		return classified(KeyRecordExists, "invoice number input absent after upload; record already exists")
	}
	if err := m.Element.Fill(s.req.InvoiceNo); err != nil {
		s.trace.Skipped("fill_invoice", "fill failed: "+err.Error())
		return nil
	}

	s.data.InvoiceFilled = true
	s.trace.Advanced("fill_invoice", m, "")
	// The form runs a validation script on input; let it settle.
	_ = s.r.sleep(ctx, s.r.browserCfg.SettleDelay)
	return nil
}

// validateGross compares the displayed total against the caller's expected
// amount. All three failure modes are hard gates; Save must never run on an
// unvalidated amount.
func (s *run) validateGross(ctx context.Context) *Error {
	if s.req.ExpectedGross == "" {
		s.trace.Skipped("validate_gross", "no expected amount supplied")
		return nil
	}

	want, ok := amount.Normalize(s.req.ExpectedGross)
	if !ok {
		return classified(KeyGrossInvalid, "expected gross %q is not a parsable amount", s.req.ExpectedGross)
	}

	displayed, ok := s.pollGross(ctx)
	if !ok {
		return classified(KeyGrossNotFound, "displayed total not readable after polling")
	}

	if !amount.Equal(displayed, want) {
		return classified(KeyGrossMismatch, "displayed gross %s does not match expected %s", displayed, want)
	}

	s.data.GrossValidated = true
	s.trace.Advanced("validate_gross", nil, "gross "+displayed+" matches")
	return nil
}

// pollGross repeatedly reads the total field at a fixed interval up to a cap.
// Render timing is not otherwise observable, so this is the one place the
// machine polls instead of sleeping a fixed settle delay.
func (s *run) pollGross(ctx context.Context) (string, bool) {
	deadline := time.Now().Add(s.r.browserCfg.GrossPollTimeout)
	for {
		if m, err := s.r.engine.Resolve(s.targets(), totalGross); err == nil {
			if norm, ok := amount.Normalize(readAmount(m.Element)); ok {
				return norm, true
			}
		}
		if time.Now().After(deadline) {
			return "", false
		}
		if err := s.r.sleep(ctx, s.r.browserCfg.GrossPollInterval); err != nil {
			return "", false
		}
	}
}

// readAmount prefers the input value (the total renders as a form field) and
// falls back to the element text.
func readAmount(el browser.Element) string {
	if v, err := el.InputValue(); err == nil && strings.TrimSpace(v) != "" {
		return v
	}
	if v, err := el.Text(); err == nil {
		return v
	}
	return ""
}

func (s *run) save(ctx context.Context) {
	if !s.clickStep("save", saveButton) {
		return
	}
	s.data.SaveClicked = true
	if err := s.page.WaitLoaded(browser.LoadStateNetworkIdle, loadSettleTimeout); err != nil {
		s.log.Debug("Post-save load wait timed out, continuing.", zap.Error(err))
	}
	_ = s.r.sleep(ctx, s.r.browserCfg.SettleDelay)
}

// check clicks the Check control and then inspects the page for a surfaced
// error message; any such message stops the run with its text verbatim. The
// scan only runs after an actual click: without one, any text in the error
// containers predates Check and is not its verdict.
func (s *run) check(ctx context.Context) *Error {
	if !s.clickStep("check", checkButton) {
		return nil
	}
	s.data.CheckClicked = true
	if err := s.page.WaitLoaded(browser.LoadStateNetworkIdle, loadSettleTimeout); err != nil {
		s.log.Debug("Post-check load wait timed out, continuing.", zap.Error(err))
	}
	_ = s.r.sleep(ctx, s.r.browserCfg.SettleDelay)

	m, err := s.r.engine.Resolve(s.targets(), checkErrorText)
	if err != nil {
		return nil
	}
	text, err := m.Element.Text()
	if err != nil {
		return nil
	}
	if msg := strings.TrimSpace(text); msg != "" {
		return classified(KeyCheckFailed, "%s", msg)
	}
	return nil
}

// post clicks the Post control when it is enabled. A disabled control is a
// hard gate, preceded by a best-effort Abort click. Either the driver's
// disabled check or the DOM attribute is authoritative on its own.
func (s *run) post(ctx context.Context) *Error {
	m, err := s.r.engine.Resolve(s.targets(), postButton)
	if err != nil {
		s.trace.Skipped("post", err.Error())
		return nil
	}

	if postDisabled(m.Element) {
		s.trace.Stopped("post", "post control present but disabled")
		if _, abortErr := s.r.engine.Click(s.targets(), abortButton); abortErr != nil {
			s.trace.Skipped("abort", abortErr.Error())
		} else {
			s.data.AbortClicked = true
			s.trace.Advanced("abort", nil, "")
		}
		return classified(KeyPostButtonDisabled, "post control disabled after check; aborted")
	}

	if !s.clickStep("post", postButton) {
		return nil
	}
	s.data.PostClicked = true
	_ = s.r.sleep(ctx, s.r.browserCfg.SettleDelay)
	return nil
}

func postDisabled(el browser.Element) bool {
	if disabled, err := el.IsDisabled(); err == nil && disabled {
		return true
	}
	if v, err := el.Attr("disabled"); err == nil {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "disabled", "true", "1":
			return true
		}
	}
	return false
}

// -- step helpers and reporting --

// targets returns the live search contexts for the current stage: the main
// document and its frames, plus the popup's contexts while it is open. The
// list is enumerated fresh on every call.
func (s *run) targets() []browser.Target {
	targets := s.page.Targets()
	if s.popup != nil {
		targets = append(targets, s.popup.Targets()...)
	}
	return targets
}

func (s *run) fillStep(step string, set browser.CandidateSet, text string) bool {
	m, err := s.r.engine.Fill(s.page.Targets(), set, text)
	if err != nil {
		s.trace.Skipped(step, err.Error())
		return false
	}
	s.trace.Advanced(step, m, "")
	return true
}

func (s *run) clickStep(step string, set browser.CandidateSet) bool {
	m, err := s.r.engine.Click(s.targets(), set)
	if err != nil {
		s.trace.Skipped(step, err.Error())
		return false
	}
	detail := ""
	if m.Mode != browser.ClickPlain {
		detail = "via " + m.Mode.String()
	}
	s.trace.Advanced(step, m, detail)
	return true
}

func (s *run) hoverStep(step string, set browser.CandidateSet) bool {
	m, err := s.r.engine.Resolve(s.page.Targets(), set)
	if err != nil {
		s.trace.Skipped(step, err.Error())
		return false
	}
	if err := m.Element.Hover(); err != nil {
		s.trace.Skipped(step, "hover failed: "+err.Error())
		return false
	}
	s.trace.Advanced(step, m, "")
	return true
}

// complete assembles the success Result.
func (s *run) complete() Result {
	s.finalPageInfo()
	return Result{
		Success: true,
		Status:  StatusCompleted,
		Data:    s.data,
	}
}

// fail assembles a classified error Result. The trace keeps everything
// recorded up to the stop.
func (s *run) fail(e *Error) Result {
	s.trace.Stopped(e.Key, e.Message)
	s.finalPageInfo()
	return Result{
		Success: false,
		Status:  StatusError,
		Error:   e,
		Data:    s.data,
	}
}

func (s *run) finalPageInfo() {
	if s.page != nil {
		s.data.FinalURL = s.page.URL()
		if title, err := s.page.Title(); err == nil {
			s.data.PageTitle = title
		}
	}
	s.data.NavigationSteps = s.trace.Records()
}
