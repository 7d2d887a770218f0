package library

import (
	"fmt"
	"strings"
	"time"
)

// ------------------ Books ------------------

// Book is a catalog row plus the behaviors that mutate it. Digital is set
// only for rows whose type is "digital".
type Book struct {
	*BookRecord
	Digital *DigitalExtension

	catalog *CatalogStore
}

// DigitalExtension carries what a digital book adds over a physical one.
type DigitalExtension struct {
	Title       string
	DownloadURL string
}

// NewBook wraps rec, attaching the digital extension when the row says so.
func NewBook(catalog *CatalogStore, rec *BookRecord) *Book {
	b := &Book{BookRecord: rec, catalog: catalog}
	if rec.Type == TypeDigital {
		b.Digital = &DigitalExtension{Title: rec.Title, DownloadURL: rec.DownloadURL}
	}
	return b
}

func (b *Book) IsAvailable() bool { return b.catalog.IsAvailable(b.ID) }

// Borrow marks the book as on loan and rewrites the catalog.
func (b *Book) Borrow() error {
	if err := b.catalog.SetAvailability(b.ID, No); err != nil {
		return err
	}
	b.Available = No
	return nil
}

// ReturnBook marks the book as available again and rewrites the catalog.
func (b *Book) ReturnBook() error {
	if err := b.catalog.SetAvailability(b.ID, Yes); err != nil {
		return err
	}
	b.Available = Yes
	return nil
}

// Download simulates fetching the digital copy.
func (d *DigitalExtension) Download() string {
	return fmt.Sprintf("📱 Downloading: %s from %s", d.Title, d.DownloadURL)
}

// ------------------ Members ------------------

// Member is a member row plus its behaviors. Premium is set only for rows
// whose type is "premium".
type Member struct {
	*MemberRecord
	Premium *PremiumExtension

	members *MemberStore
}

// PremiumExtension lets a member push back the due date of an open loan.
type PremiumExtension struct {
	// BorrowLimit is informational; nothing enforces it.
	BorrowLimit   int
	ExtensionDays int

	memberID string
	ledger   *Ledger
}

// NewMember wraps rec. extensionDays applies to premium members only.
func NewMember(members *MemberStore, ledger *Ledger, rec *MemberRecord, extensionDays int) *Member {
	m := &Member{MemberRecord: rec, members: members}
	if rec.Type == TypePremium {
		m.Premium = &PremiumExtension{
			BorrowLimit:   PremiumBorrowLimit,
			ExtensionDays: extensionDays,
			memberID:      rec.ID,
			ledger:        ledger,
		}
	}
	return m
}

// IsValid reports whether the member is active.
func (m *Member) IsValid() bool { return m.members.IsActive(m.ID) }

// BorrowedBooks returns the book ids of the member's open loans.
func (m *Member) BorrowedBooks() []string { return m.members.BorrowedBookIDs(m.ID) }

// ExtendLoan adds ExtensionDays to the due date of the member's open loan
// for bookID. A missing loan is reported in the returned message, not as an
// error.
func (p *PremiumExtension) ExtendLoan(bookID string) (string, *LoanRecord, error) {
	loan, ok := p.ledger.FindOpenLoan(p.memberID, bookID)
	if !ok {
		return fmt.Sprintf("❌ No open loan found for book %s.", bookID), nil, nil
	}
	if err := p.ledger.ExtendDueDate(loan, p.ExtensionDays); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("✅ Loan %s extended by %d days. New due date: %s", loan.LoanID, p.ExtensionDays, loan.DueDate), loan, nil
}

// ------------------ Library card ------------------

// LibraryCard pairs a member id with the PIN typed at the prompt.
type LibraryCard struct {
	MemberID string
	PIN      string

	members *MemberStore
}

func NewLibraryCard(members *MemberStore, memberID, pin string) *LibraryCard {
	return &LibraryCard{MemberID: memberID, PIN: pin, members: members}
}

// Authenticate compares the submitted PIN with the stored one byte for byte.
// Unknown members never authenticate.
func (c *LibraryCard) Authenticate() bool {
	rec, ok := c.members.Lookup(c.MemberID)
	if !ok {
		return false
	}
	return rec.PIN == c.PIN
}

// ------------------ Receipt ------------------

// LoanReceipt is the printed confirmation of a loan.
type LoanReceipt struct {
	MemberName string
	BookTitle  string
	LoanDate   string
	DueDate    string
}

// NewLoanReceipt stamps the receipt with now as the loan date.
func NewLoanReceipt(memberName, bookTitle, dueDate string, now time.Time) *LoanReceipt {
	return &LoanReceipt{
		MemberName: memberName,
		BookTitle:  bookTitle,
		LoanDate:   now.Format(DateLayout),
		DueDate:    dueDate,
	}
}

func (r *LoanReceipt) String() string {
	var sb strings.Builder
	sb.WriteString("═════════════════ LOAN RECEIPT ═════════════════\n")
	fmt.Fprintf(&sb, "Member:    %s\n", r.MemberName)
	fmt.Fprintf(&sb, "Book:      %s\n", r.BookTitle)
	fmt.Fprintf(&sb, "Loan date: %s\n", r.LoanDate)
	fmt.Fprintf(&sb, "Due date:  %s\n", r.DueDate)
	sb.WriteString("Please return the book by the due date.\n")
	sb.WriteString("════════════════════════════════════════════════")
	return sb.String()
}
