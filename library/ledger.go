package library

import (
	"fmt"
	"time"
)

// Ledger holds the loan table. Rows are appended and never removed; only
// due_date and returned are edited in place.
type Ledger struct {
	table *Table
}

// OpenLedger loads the loan table at path.
func OpenLedger(path string) (*Ledger, error) {
	t, err := LoadTable(path, LoanHeader)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &Ledger{table: t}, nil
}

// NextLoanID is "L" followed by the row count plus one, zero padded to three
// digits. Deleting rows from the file can make this collide with an existing id.
func (l *Ledger) NextLoanID() string {
	return fmt.Sprintf("L%03d", l.table.Len()+1)
}

// Append stores rec under a freshly generated loan id, rewrites the ledger
// file and returns the stored record.
func (l *Ledger) Append(rec LoanRecord) (*LoanRecord, error) {
	rec.LoanID = l.NextLoanID()
	row := l.table.Append(map[string]string{
		ColLoanID:   rec.LoanID,
		ColMemberID: rec.MemberID,
		ColBookID:   rec.BookID,
		ColLoanDate: rec.LoanDate,
		ColDueDate:  rec.DueDate,
		ColReturned: rec.Returned,
	})
	rec.row = row
	if err := l.table.Save(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindOpenLoan returns the first loan for member and book that has not been
// returned.
func (l *Ledger) FindOpenLoan(memberID, bookID string) (*LoanRecord, bool) {
	row := l.findOpenRow(memberID, bookID)
	if row < 0 {
		return nil, false
	}
	return l.record(row), true
}

// OpenLoans returns every unreturned loan of the member in ledger order.
func (l *Ledger) OpenLoans(memberID string) []*LoanRecord {
	var loans []*LoanRecord
	for i := 0; i < l.table.Len(); i++ {
		if l.table.Get(i, ColMemberID) == memberID && l.table.Get(i, ColReturned) == No {
			loans = append(loans, l.record(i))
		}
	}
	return loans
}

// All returns every loan in ledger order.
func (l *Ledger) All() []*LoanRecord {
	loans := make([]*LoanRecord, 0, l.table.Len())
	for i := 0; i < l.table.Len(); i++ {
		loans = append(loans, l.record(i))
	}
	return loans
}

// ExtendDueDate pushes the due date of the loan forward by days and rewrites
// the ledger file. loan must come from this ledger; it is updated to the new
// due date.
func (l *Ledger) ExtendDueDate(loan *LoanRecord, days int) error {
	row, err := l.rowOf(loan)
	if err != nil {
		return err
	}

	due, err := time.Parse(DateLayout, l.table.Get(row, ColDueDate))
	if err != nil {
		return fmt.Errorf("loan %s due date: %w", loan.LoanID, ErrInvalidDate)
	}
	next := due.AddDate(0, 0, days).Format(DateLayout)

	l.table.Set(row, ColDueDate, next)
	if err := l.table.Save(); err != nil {
		return err
	}
	loan.DueDate = next
	return nil
}

// MarkReturned flags the loan as returned and rewrites the ledger file.
func (l *Ledger) MarkReturned(loan *LoanRecord) error {
	row, err := l.rowOf(loan)
	if err != nil {
		return err
	}
	l.table.Set(row, ColReturned, Yes)
	if err := l.table.Save(); err != nil {
		return err
	}
	loan.Returned = Yes
	return nil
}

// Digest returns the digest of the ledger file as last read or written.
func (l *Ledger) Digest() string { return l.table.Digest() }

// rowOf returns the row loan was read from, checking it still carries the
// same loan id.
func (l *Ledger) rowOf(loan *LoanRecord) (int, error) {
	if loan.row < 0 || loan.row >= l.table.Len() || l.table.Get(loan.row, ColLoanID) != loan.LoanID {
		return -1, fmt.Errorf("loan %s: %w", loan.LoanID, ErrNotFound)
	}
	return loan.row, nil
}

func (l *Ledger) findOpenRow(memberID, bookID string) int {
	for i := 0; i < l.table.Len(); i++ {
		if l.table.Get(i, ColMemberID) == memberID &&
			l.table.Get(i, ColBookID) == bookID &&
			l.table.Get(i, ColReturned) == No {
			return i
		}
	}
	return -1
}

func (l *Ledger) record(row int) *LoanRecord {
	t := l.table
	return &LoanRecord{
		LoanID:   t.Get(row, ColLoanID),
		MemberID: t.Get(row, ColMemberID),
		BookID:   t.Get(row, ColBookID),
		LoanDate: t.Get(row, ColLoanDate),
		DueDate:  t.Get(row, ColDueDate),
		Returned: t.Get(row, ColReturned),
		row:      row,
	}
}
