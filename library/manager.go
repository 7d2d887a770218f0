package library

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Options locates the three tables and the journal and sets loan lengths.
type Options struct {
	BooksPath   string
	MembersPath string
	LoansPath   string
	// JournalPath is the SQLite audit trail; empty disables it.
	JournalPath string
	// Recorder, when set, receives the audit entries instead of the journal.
	Recorder Recorder

	LoanDays      int
	ExtensionDays int
}

// LibraryManager is a thin façade over the stores, keeping CLI code simple.
// It is built once per process and owns every table for that lifetime.
type LibraryManager struct {
	Catalog *CatalogStore
	Members *MemberStore
	Ledger  *Ledger

	journal       *Journal
	recorder      Recorder
	loanDays      int
	extensionDays int
}

// NewLibraryManager loads the catalog, ledger and member tables. Nothing is
// written until a mutation happens.
func NewLibraryManager(opts Options) (*LibraryManager, error) {
	catalog, err := OpenCatalog(opts.BooksPath)
	if err != nil {
		return nil, err
	}
	ledger, err := OpenLedger(opts.LoansPath)
	if err != nil {
		return nil, err
	}
	members, err := OpenMembers(opts.MembersPath, ledger)
	if err != nil {
		return nil, err
	}

	lm := &LibraryManager{
		Catalog:       catalog,
		Members:       members,
		Ledger:        ledger,
		loanDays:      opts.LoanDays,
		extensionDays: opts.ExtensionDays,
	}
	if lm.loanDays <= 0 {
		lm.loanDays = DefaultLoanDays
	}
	if lm.extensionDays <= 0 {
		lm.extensionDays = DefaultExtensionDays
	}
	if opts.JournalPath != "" {
		lm.journal = NewJournal(opts.JournalPath)
		lm.recorder = lm.journal
	}
	if opts.Recorder != nil {
		lm.recorder = opts.Recorder
	}
	return lm, nil
}

// Close closes the journal if one was opened.
func (lm *LibraryManager) Close() error {
	if lm.journal == nil {
		return nil
	}
	return lm.journal.Close()
}

// Journal returns the circulation journal, or nil when it is disabled.
func (lm *LibraryManager) Journal() *Journal { return lm.journal }

// ------------------ Entities ------------------

func (lm *LibraryManager) Book(id string) (*Book, bool) {
	rec, ok := lm.Catalog.Lookup(id)
	if !ok {
		return nil, false
	}
	return NewBook(lm.Catalog, rec), true
}

func (lm *LibraryManager) Member(id string) (*Member, bool) {
	rec, ok := lm.Members.Lookup(id)
	if !ok {
		return nil, false
	}
	return NewMember(lm.Members, lm.Ledger, rec, lm.extensionDays), true
}

func (lm *LibraryManager) Card(memberID, pin string) *LibraryCard {
	return NewLibraryCard(lm.Members, memberID, pin)
}

// ------------------ Circulation ------------------

// BorrowBook marks book as on loan for member.
func (lm *LibraryManager) BorrowBook(member *Member, book *Book) error {
	if err := book.Borrow(); err != nil {
		return fmt.Errorf("borrow %s: %w", book.ID, err)
	}
	lm.record(JournalEntry{Kind: KindBorrow, MemberID: member.ID, BookID: book.ID, TableDigest: lm.Catalog.Digest()}, book.BookRecord)
	return nil
}

// OpenLoan appends a loan starting today (per now) and due LoanDays later.
func (lm *LibraryManager) OpenLoan(member *Member, book *Book, now time.Time) (*LoanRecord, error) {
	loan, err := lm.Ledger.Append(LoanRecord{
		MemberID: member.ID,
		BookID:   book.ID,
		LoanDate: now.Format(DateLayout),
		DueDate:  now.AddDate(0, 0, lm.loanDays).Format(DateLayout),
		Returned: No,
	})
	if err != nil {
		return nil, fmt.Errorf("record loan: %w", err)
	}
	lm.record(JournalEntry{Kind: KindLoan, MemberID: member.ID, BookID: book.ID, LoanID: loan.LoanID, TableDigest: lm.Ledger.Digest()}, loan)
	return loan, nil
}

// ExtendLoan applies the premium extension to the member's open loan for
// bookID and returns the message to show.
func (lm *LibraryManager) ExtendLoan(member *Member, bookID string) (string, error) {
	if member.Premium == nil {
		return "", fmt.Errorf("member %s cannot extend loans", member.ID)
	}
	msg, loan, err := member.Premium.ExtendLoan(bookID)
	if err != nil {
		return "", fmt.Errorf("extend loan: %w", err)
	}
	if loan != nil {
		lm.record(JournalEntry{Kind: KindExtend, MemberID: member.ID, BookID: bookID, LoanID: loan.LoanID, TableDigest: lm.Ledger.Digest()}, loan)
	}
	return msg, nil
}

// ReturnLoan closes the member's open loan for book and makes the book
// available again. The returned loan is nil when no open loan exists.
func (lm *LibraryManager) ReturnLoan(member *Member, book *Book) (*LoanRecord, error) {
	loan, ok := lm.Ledger.FindOpenLoan(member.ID, book.ID)
	if !ok {
		return nil, nil
	}
	if err := lm.Ledger.MarkReturned(loan); err != nil {
		return nil, fmt.Errorf("return loan: %w", err)
	}
	if err := book.ReturnBook(); err != nil {
		return nil, fmt.Errorf("return %s: %w", book.ID, err)
	}
	lm.record(JournalEntry{Kind: KindReturn, MemberID: member.ID, BookID: book.ID, LoanID: loan.LoanID, TableDigest: lm.Ledger.Digest()}, loan)
	return loan, nil
}

// record hands entry to the recorder, if any. A failed write is logged and
// does not undo the table mutation it describes.
func (lm *LibraryManager) record(entry JournalEntry, detail any) {
	if lm.recorder == nil {
		return
	}
	if err := lm.recorder.Record(entry, detail); err != nil {
		slog.Warn("journal write failed", "kind", entry.Kind, "err", err)
	}
}

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b *BookRecord) string {
	return fmt.Sprintf("%-6s %-30s %-22s %-12s %-9s %-9s", b.ID, truncate(b.Title, 30), truncate(b.Author, 22), truncate(b.Genre, 12), b.Type, b.Available)
}

// CatalogHeader is the column line printed above PrettyBook rows.
func CatalogHeader() string {
	return fmt.Sprintf("%-6s %-30s %-22s %-12s %-9s %-9s", "ID", "Title", "Author", "Genre", "Type", "Available")
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}
