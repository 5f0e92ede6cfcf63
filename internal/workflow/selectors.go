package workflow

import "github.com/xkilldash9x/fleetimport/internal/browser"

// Candidate selector sets for the target application. Order encodes
// preference; the site's markup varies across releases, so each logical
// control carries several known representations.

var (
	usernameField = browser.CandidateSet{Name: "username field", Selectors: []string{
		"input[name='username']",
		"input[name='user']",
		"input[name='email']",
		"input[name='login']",
		"input[type='text']",
		"#username",
		"#user",
		"#email",
	}}

	passwordField = browser.CandidateSet{Name: "password field", Selectors: []string{
		"input[name='password']",
		"input[type='password']",
		"#password",
	}}

	submitButton = browser.CandidateSet{Name: "submit button", Selectors: []string{
		"button[type='submit']",
		"input[type='submit']",
		"button:has-text('Login')",
		"button:has-text('Sign in')",
		"input[value*='Login']",
	}}

	fleetMenu = browser.CandidateSet{Name: "fleet menu", Selectors: []string{
		`td[id="HM_Menu1_top"]`,
		`td:has-text("Fleet")`,
		`[onmouseover*="HM_Menu1"]`,
		`.top_menu_off:has-text("Fleet")`,
	}}

	cardServicesMenu = browser.CandidateSet{Name: "card services menu", Selectors: []string{
		`text="Card Services"`,
		`td:has-text("Card Services")`,
		`[onmouseover]:has-text("Card Services")`,
	}}

	transactionsLink = browser.CandidateSet{Name: "transactions link", Selectors: []string{
		`text="Transactions"`,
		`td:has-text("Transactions")`,
		`a:has-text("Transactions")`,
	}}

	importButton = browser.CandidateSet{Name: "import button", Selectors: []string{
		`input[name="button_import"]`,
		`input[id="button_import"]`,
		`input[value="Import"]`,
		`.formbutton[value="Import"]`,
	}}

	interfaceCodeField = browser.CandidateSet{Name: "interface code field", Selectors: []string{
		`input[name="fm_int_interface_code"]`,
		`input[id="fm_int_interface_code"]`,
		`.forminput.border_input[name="fm_int_interface_code"]`,
	}}

	searchButton = browser.CandidateSet{Name: "search button", Selectors: []string{
		`i.catch_e_icon_search`,
		`i.catch-e-icon-lookingglass1`,
		`i[title="Find"]`,
		`.catch_e_icon_search`,
		`.catch-e-icon-lookingglass1`,
		`i[class*="catch_e_icon_search"]`,
		`i[class*="lookingglass"]`,
	}}

	invoiceField = browser.CandidateSet{Name: "invoice number field", Selectors: []string{
		`input#invoice_no`,
		`input[name="invoice_no"]`,
		`input.forminput#invoice_no`,
	}}

	totalGross = browser.CandidateSet{Name: "total gross", Selectors: []string{
		`#total_gross`,
	}}

	saveButton = browser.CandidateSet{Name: "save button", Selectors: []string{
		`#button_save_preview`,
		`input#button_save_preview`,
		`input[name="button_save_preview"]`,
		`input.formbutton#button_save_preview`,
		`input.formbutton[value="Save"]`,
	}}

	checkButton = browser.CandidateSet{Name: "check button", Selectors: []string{
		`#button_pre_check`,
		`input#button_pre_check`,
		`input[name="button_pre_check"]`,
		`input.formbutton#button_pre_check`,
		`input[value="Check"]`,
		`#button_check`,
		`input#button_check`,
		`input[name="button_check"]`,
	}}

	// Enabled-only representations first, bare ones last, so a disabled Post
	// control still resolves and can be inspected.
	postButton = browser.CandidateSet{Name: "post button", Selectors: []string{
		`#button_post:not([disabled])`,
		`input#button_post:not([disabled])`,
		`input[name="button_post"]:not([disabled])`,
		`input.formbutton#button_post:not([disabled])`,
		`input[value=" Post "]:not([disabled])`,
		`#button_post`,
		`input#button_post`,
		`input[name="button_post"]`,
	}}

	abortButton = browser.CandidateSet{Name: "abort button", Selectors: []string{
		`#button_pre_abort`,
		`input#button_pre_abort`,
		`input[name="button_pre_abort"]`,
		`input.formbutton#button_pre_abort`,
		`input[name="button_pre_abort"][value="Abort"]`,
		`input[type="button"][name="button_pre_abort"]`,
	}}

	checkErrorText = browser.CandidateSet{Name: "check error text", Selectors: []string{
		`#error_msg`,
		`.error_message`,
		`td.error`,
		`.errmsg`,
		`div.error`,
	}}
)

// dropzoneMarker identifies the upload container when probing contexts; the
// popup's internal frame layout is not stable across releases.
const (
	dropzoneMarker     = "file-attachment-dropzone"
	dropzoneBrowseLink = "#file-attachment-dropzone a"
)
