package library

import "errors"

// Column names of the three backing tables. Column order in a file is kept
// as loaded; these only name the columns the tool reads or writes.
const (
	ColID          = "id"
	ColTitle       = "title"
	ColAuthor      = "author"
	ColGenre       = "genre"
	ColType        = "type"
	ColAvailable   = "available"
	ColDownloadURL = "download_url"

	ColName   = "name"
	ColEmail  = "email"
	ColActive = "active"
	ColPIN    = "pin"

	ColLoanID   = "loan_id"
	ColMemberID = "member_id"
	ColBookID   = "book_id"
	ColLoanDate = "loan_date"
	ColDueDate  = "due_date"
	ColReturned = "returned"
)

// Default headers used when a table is created from scratch.
var (
	BookHeader   = []string{ColID, ColTitle, ColAuthor, ColGenre, ColType, ColAvailable, ColDownloadURL}
	MemberHeader = []string{ColID, ColName, ColEmail, ColType, ColActive, ColPIN}
	LoanHeader   = []string{ColLoanID, ColMemberID, ColBookID, ColLoanDate, ColDueDate, ColReturned}
)

// Flag and discriminator values stored in the tables.
const (
	Yes = "yes"
	No  = "no"

	TypePhysical = "physical"
	TypeDigital  = "digital"
	TypeStandard = "standard"
	TypePremium  = "premium"
)

// DateLayout is the YYYY-MM-DD format of loan_date and due_date.
const DateLayout = "2006-01-02"

const (
	DefaultLoanDays      = 14
	DefaultExtensionDays = 7
	PremiumBorrowLimit   = 5
)

var (
	ErrNotFound      = errors.New("not found")
	ErrMissingColumn = errors.New("missing column")
	ErrInvalidDate   = errors.New("invalid date")
)

// BookRecord is one row of the catalog table.
type BookRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Type        string `json:"type"`
	Available   string `json:"available"`
	DownloadURL string `json:"download_url,omitempty"`
}

// MemberRecord is one row of the member table. The PIN is plaintext.
type MemberRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Type   string `json:"type"`
	Active string `json:"active"`
	PIN    string `json:"-"`
}

// LoanRecord is one row of the loan ledger.
type LoanRecord struct {
	LoanID   string `json:"loan_id"`
	MemberID string `json:"member_id"`
	BookID   string `json:"book_id"`
	LoanDate string `json:"loan_date"`
	DueDate  string `json:"due_date"`
	Returned string `json:"returned"`

	// row is the ledger row this record was read from or appended as.
	// Loan ids can repeat, so edits go through the row, not the id.
	row int
}
