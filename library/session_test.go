package library

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runBorrow drives one borrow session with scripted answers, one per line.
func runBorrow(t *testing.T, opts Options, answers ...string) string {
	t.Helper()
	mgr := newManager(t, opts)
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(answers, "\n") + "\n")
	err := NewSession(mgr, in, &out).WithClock(func() time.Time { return fixedNow }).Borrow()
	require.NoError(t, err)
	return out.String()
}

type snapshot map[string]string

func takeSnapshot(t *testing.T, opts Options) snapshot {
	t.Helper()
	return snapshot{
		opts.BooksPath:   readFile(t, opts.BooksPath),
		opts.MembersPath: readFile(t, opts.MembersPath),
		opts.LoansPath:   readFile(t, opts.LoansPath),
	}
}

func assertUnchanged(t *testing.T, opts Options, before snapshot) {
	t.Helper()
	for path, content := range before {
		assert.Equal(t, content, readFile(t, path), path)
	}
	_, err := os.Stat(opts.JournalPath)
	assert.ErrorIs(t, err, os.ErrNotExist, "journal must not be created")
}

func TestBorrowStandardMember(t *testing.T) {
	opts := writeFixtures(t, nil)
	members := readFile(t, opts.MembersPath)

	out := runBorrow(t, opts, "M001", "1234", "B001")

	assert.Contains(t, out, "Welcome, Alice Martin!")
	assert.Contains(t, out, "'1984' borrowed by Alice Martin.")
	assert.Contains(t, out, "Due date:  2026-11-02")
	assert.NotContains(t, out, "Extend this loan")

	catalog, err := OpenCatalog(opts.BooksPath)
	require.NoError(t, err)
	assert.False(t, catalog.IsAvailable("B001"))

	ledger, err := OpenLedger(opts.LoansPath)
	require.NoError(t, err)
	loans := ledger.All()
	require.Len(t, loans, 1)
	assert.Equal(t, LoanRecord{
		LoanID:   "L001",
		MemberID: "M001",
		BookID:   "B001",
		LoanDate: "2026-10-19",
		DueDate:  "2026-11-02",
		Returned: No,
	}, *loans[0])

	assert.Equal(t, members, readFile(t, opts.MembersPath))
}

func TestBorrowWrongPIN(t *testing.T) {
	opts := writeFixtures(t, nil)
	before := takeSnapshot(t, opts)

	out := runBorrow(t, opts, "M001", "9999", "B001")

	assert.Contains(t, out, "Authentication failed.")
	assert.NotContains(t, out, "Book ID:")
	assertUnchanged(t, opts, before)
}

func TestBorrowDigitalBookPrintsDownloadFirst(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		opts := writeFixtures(t, nil)
		out := runBorrow(t, opts, "M001", "1234", "B002")

		download := strings.Index(out, "📱 Downloading: The Art of War from https://library.example/art-of-war.epub")
		borrowed := strings.Index(out, "borrowed by")
		require.GreaterOrEqual(t, download, 0)
		assert.Less(t, download, borrowed)
	})

	t.Run("on loan", func(t *testing.T) {
		opts := writeFixtures(t, nil)
		before := takeSnapshot(t, opts)
		out := runBorrow(t, opts, "M001", "1234", "B005")

		assert.Contains(t, out, "📱 Downloading: Romeo and Juliet from https://library.example/romeo.epub")
		assert.Contains(t, out, "'Romeo and Juliet' is currently on loan.")
		assertUnchanged(t, opts, before)
	})
}

func TestBorrowPremiumMemberAcceptsExtension(t *testing.T) {
	opts := writeFixtures(t, nil)

	out := runBorrow(t, opts, "M002", "5678", "B003", "y")

	assert.Contains(t, out, "Welcome, Bruno Costa (premium member)!")
	assert.Contains(t, out, "Extend this loan by 7 days? (y/n): ")
	assert.Contains(t, out, "New due date: 2026-11-09")

	ledger, err := OpenLedger(opts.LoansPath)
	require.NoError(t, err)
	loans := ledger.All()
	require.Len(t, loans, 1)
	assert.Equal(t, "2026-10-19", loans[0].LoanDate)
	assert.Equal(t, "2026-11-09", loans[0].DueDate)

	journal := NewJournal(opts.JournalPath)
	defer journal.Close()
	entries, err := journal.Entries("M002")
	require.NoError(t, err)
	var kinds []string
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{KindBorrow, KindLoan, KindExtend}, kinds)
	assert.Equal(t, ledger.Digest(), entries[2].TableDigest)
}

func TestBorrowPremiumMemberDeclinesExtension(t *testing.T) {
	opts := writeFixtures(t, nil)

	out := runBorrow(t, opts, "M002", "5678", "B003", "n")
	assert.NotContains(t, out, "New due date")

	ledger, err := OpenLedger(opts.LoansPath)
	require.NoError(t, err)
	assert.Equal(t, "2026-11-02", ledger.All()[0].DueDate)
}

func TestBorrowUnknownMember(t *testing.T) {
	opts := writeFixtures(t, nil)
	before := takeSnapshot(t, opts)

	out := runBorrow(t, opts, "M404")

	assert.Contains(t, out, "Member M404 not found.")
	assert.NotContains(t, out, "PIN:")
	assertUnchanged(t, opts, before)
}

func TestBorrowStopsEarly(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    string
	}{
		{"inactive member", []string{"M003", "0000"}, "Membership of Chen Wei is not active."},
		{"unknown book", []string{"M001", "1234", "B404"}, "Book B404 not found."},
		{"book on loan", []string{"M001", "1234", "B004"}, "'Animal Farm' is currently on loan."},
		{"end of input", nil, "Member  not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := writeFixtures(t, nil)
			before := takeSnapshot(t, opts)

			out := runBorrow(t, opts, tt.answers...)

			assert.Contains(t, out, tt.want)
			assertUnchanged(t, opts, before)
		})
	}
}

func TestBorrowShowsCatalogFirst(t *testing.T) {
	opts := writeFixtures(t, nil)
	out := runBorrow(t, opts, "M404")

	assert.True(t, strings.HasPrefix(out, "📚 Library catalog"))
	assert.Contains(t, out, "Members: M001, M002, M003")
	assert.Less(t, strings.Index(out, "The Fellowship of the Ring"), strings.Index(out, "Member ID:"))
}

func TestBorrowUsesPINReader(t *testing.T) {
	opts := writeFixtures(t, nil)
	mgr := newManager(t, opts)

	var prompted string
	var out bytes.Buffer
	session := NewSession(mgr, strings.NewReader("M001\nB001\n"), &out).
		WithClock(func() time.Time { return fixedNow }).
		WithPINReader(func(prompt string) (string, error) {
			prompted = prompt
			return "1234", nil
		})
	require.NoError(t, session.Borrow())

	assert.Equal(t, "PIN: ", prompted)
	assert.Contains(t, out.String(), "'1984' borrowed by Alice Martin.")
}

func TestReturnClosesOpenLoan(t *testing.T) {
	opts := writeFixtures(t, [][]string{
		{"L001", "M001", "B004", "2026-10-01", "2026-10-15", No},
	})
	mgr := newManager(t, opts)

	var out bytes.Buffer
	err := NewSession(mgr, strings.NewReader("M001\n1234\nB004\n"), &out).Return()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "'Animal Farm' returned by Alice Martin (loan L001).")

	catalog, err := OpenCatalog(opts.BooksPath)
	require.NoError(t, err)
	assert.True(t, catalog.IsAvailable("B004"))

	ledger, err := OpenLedger(opts.LoansPath)
	require.NoError(t, err)
	assert.Equal(t, Yes, ledger.All()[0].Returned)
}

func TestReturnWithoutOpenLoan(t *testing.T) {
	opts := writeFixtures(t, nil)
	before := takeSnapshot(t, opts)
	mgr := newManager(t, opts)

	var out bytes.Buffer
	err := NewSession(mgr, strings.NewReader("M001\n1234\nB001\n"), &out).Return()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Alice Martin has no open loan for '1984'.")
	assertUnchanged(t, opts, before)
}

func TestBorrowExtendReturnWithRepeatedLoanID(t *testing.T) {
	opts := writeFixtures(t, [][]string{
		{"L002", "M001", "B004", "2026-09-01", "2026-09-15", Yes},
	})

	out := runBorrow(t, opts, "M002", "5678", "B003", "y")
	assert.Contains(t, out, "Loan L002 extended by 7 days. New due date: 2026-11-09")

	mgr := newManager(t, opts)
	member, _ := mgr.Member("M002")
	book, _ := mgr.Book("B003")
	loan, err := mgr.ReturnLoan(member, book)
	require.NoError(t, err)
	require.NotNil(t, loan)

	ledger, err := OpenLedger(opts.LoansPath)
	require.NoError(t, err)
	all := ledger.All()
	require.Len(t, all, 2)
	assert.Equal(t, "2026-09-15", all[0].DueDate)
	assert.Equal(t, "2026-11-09", all[1].DueDate)
	assert.Equal(t, Yes, all[1].Returned)

	reloaded := newManager(t, opts)
	assert.True(t, reloaded.Catalog.IsAvailable("B003"))
	assert.Empty(t, reloaded.Members.BorrowedBookIDs("M002"))
}
