package workflow

// Status tokens for the coarse run outcome.
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Request is the structured input for one workflow run. Username and password
// are always required; the remaining fields select between the simple variant
// (login and navigation only) and the full import workflow.
type Request struct {
	URL           string `json:"url"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	S3Filename    string `json:"s3_filename"`
	ExpectedGross string `json:"expected_gross"`
	InvoiceNo     string `json:"invoice_no"`
}

// FullWorkflow reports whether the request carries everything the import,
// validation, and posting steps need.
func (r Request) FullWorkflow() bool {
	return r.S3Filename != "" && r.ExpectedGross != "" && r.InvoiceNo != ""
}

// Data carries the per-step booleans, the navigation trace, and the final
// page metadata of one run.
type Data struct {
	UsernameFilled bool `json:"username_filled"`
	PasswordFilled bool `json:"password_filled"`
	SubmitClicked  bool `json:"submit_clicked"`
	FileStaged     bool `json:"file_staged"`
	FileUploaded   bool `json:"file_uploaded"`
	InvoiceFilled  bool `json:"invoice_filled"`
	GrossValidated bool `json:"gross_validated"`
	SaveClicked    bool `json:"save_clicked"`
	CheckClicked   bool `json:"check_clicked"`
	PostClicked    bool `json:"post_clicked"`
	AbortClicked   bool `json:"abort_clicked"`

	NavigationSteps []StepRecord `json:"navigation_steps"`
	FinalURL        string       `json:"final_url"`
	PageTitle       string       `json:"page_title"`
}

// Result is the terminal artifact of one invocation, immutable after
// construction and never persisted beyond the response.
type Result struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Error   *Error `json:"error,omitempty"`
	Data    Data   `json:"data"`
}
