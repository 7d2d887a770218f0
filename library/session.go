package library

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// PINReader prompts for and reads a PIN.
type PINReader func(prompt string) (string, error)

// Session runs one interactive flow against a LibraryManager. Every stop
// condition prints a message and returns nil; only I/O failures are errors.
type Session struct {
	lm      *LibraryManager
	in      *bufio.Scanner
	out     io.Writer
	readPIN PINReader
	now     func() time.Time
}

// NewSession reads answers line by line from in and prints to out. PINs are
// read from in as well until WithPINReader says otherwise.
func NewSession(lm *LibraryManager, in io.Reader, out io.Writer) *Session {
	s := &Session{
		lm:  lm,
		in:  bufio.NewScanner(in),
		out: out,
		now: time.Now,
	}
	s.readPIN = s.promptLine
	return s
}

// WithPINReader replaces how PINs are read, e.g. without terminal echo.
func (s *Session) WithPINReader(r PINReader) *Session {
	s.readPIN = r
	return s
}

// WithClock replaces the source of the current date.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// Scanner exposes the line reader so a PINReader can share it.
func (s *Session) Scanner() *bufio.Scanner { return s.in }

// ShowCatalog prints every book and the known member ids.
func (s *Session) ShowCatalog() {
	fmt.Fprintln(s.out, "📚 Library catalog")
	fmt.Fprintln(s.out, CatalogHeader())
	fmt.Fprintln(s.out, strings.Repeat("-", 93))
	for _, b := range s.lm.Catalog.All() {
		fmt.Fprintln(s.out, PrettyBook(b))
	}

	var ids []string
	for _, m := range s.lm.Members.All() {
		ids = append(ids, m.ID)
	}
	fmt.Fprintf(s.out, "\n👥 Members: %s\n", strings.Join(ids, ", "))
}

// ShowMembers prints each member with the books they currently hold.
func (s *Session) ShowMembers() {
	fmt.Fprintf(s.out, "%-6s %-25s %-9s %-7s %s\n", "ID", "Name", "Type", "Active", "Borrowed")
	fmt.Fprintln(s.out, strings.Repeat("-", 70))
	for _, rec := range s.lm.Members.All() {
		borrowed := s.lm.Members.BorrowedBookIDs(rec.ID)
		held := "None"
		if len(borrowed) > 0 {
			held = strings.Join(borrowed, ", ")
		}
		fmt.Fprintf(s.out, "%-6s %-25s %-9s %-7s %s\n", rec.ID, truncate(rec.Name, 25), rec.Type, rec.Active, held)
	}
}

// Borrow runs the borrow flow: authenticate, pick a book, record the loan,
// print the receipt and, for premium members, offer an extension.
func (s *Session) Borrow() error {
	s.ShowCatalog()
	fmt.Fprintln(s.out)

	member, err := s.authenticate()
	if err != nil || member == nil {
		return err
	}

	if member.Premium != nil {
		fmt.Fprintf(s.out, "👋 Welcome, %s (premium member)!\n", member.Name)
	} else {
		fmt.Fprintf(s.out, "👋 Welcome, %s!\n", member.Name)
	}
	if !member.IsValid() {
		fmt.Fprintf(s.out, "❌ Membership of %s is not active.\n", member.Name)
		return nil
	}

	bookID, err := s.prompt("Book ID: ")
	if err != nil {
		return err
	}
	book, ok := s.lm.Book(bookID)
	if !ok {
		fmt.Fprintf(s.out, "❌ Book %s not found.\n", bookID)
		return nil
	}
	if book.Digital != nil {
		fmt.Fprintln(s.out, book.Digital.Download())
	}
	if !book.IsAvailable() {
		fmt.Fprintf(s.out, "❌ '%s' is currently on loan.\n", book.Title)
		return nil
	}

	if err := s.lm.BorrowBook(member, book); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "✅ '%s' borrowed by %s.\n", book.Title, member.Name)

	now := s.now()
	loan, err := s.lm.OpenLoan(member, book, now)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, NewLoanReceipt(member.Name, book.Title, loan.DueDate, now))

	if member.Premium == nil {
		return nil
	}
	answer, err := s.prompt(fmt.Sprintf("Extend this loan by %d days? (y/n): ", member.Premium.ExtensionDays))
	if err != nil {
		return err
	}
	if !isYes(answer) {
		return nil
	}
	msg, err := s.lm.ExtendLoan(member, book.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, msg)
	return nil
}

// Return runs the return flow: authenticate, pick a book, close its open loan.
func (s *Session) Return() error {
	member, err := s.authenticate()
	if err != nil || member == nil {
		return err
	}

	bookID, err := s.prompt("Book ID: ")
	if err != nil {
		return err
	}
	book, ok := s.lm.Book(bookID)
	if !ok {
		fmt.Fprintf(s.out, "❌ Book %s not found.\n", bookID)
		return nil
	}

	loan, err := s.lm.ReturnLoan(member, book)
	if err != nil {
		return err
	}
	if loan == nil {
		fmt.Fprintf(s.out, "❌ %s has no open loan for '%s'.\n", member.Name, book.Title)
		return nil
	}
	fmt.Fprintf(s.out, "✅ '%s' returned by %s (loan %s).\n", book.Title, member.Name, loan.LoanID)
	return nil
}

// authenticate prompts for member id and PIN. A nil member with a nil error
// means the flow already printed why it stopped.
func (s *Session) authenticate() (*Member, error) {
	memberID, err := s.prompt("Member ID: ")
	if err != nil {
		return nil, err
	}
	member, ok := s.lm.Member(memberID)
	if !ok {
		fmt.Fprintf(s.out, "❌ Member %s not found.\n", memberID)
		return nil, nil
	}

	pin, err := s.readPIN("PIN: ")
	if err != nil {
		return nil, fmt.Errorf("failed to read PIN: %w", err)
	}
	if !s.lm.Card(memberID, pin).Authenticate() {
		fmt.Fprintln(s.out, "❌ Authentication failed.")
		return nil, nil
	}
	return member, nil
}

// prompt reads one trimmed line. End of input reads as an empty answer.
func (s *Session) prompt(label string) (string, error) {
	line, err := s.promptLine(label)
	return strings.TrimSpace(line), err
}

// promptLine reads one line without trimming anything but the line ending.
func (s *Session) promptLine(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSuffix(s.in.Text(), "\r"), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
