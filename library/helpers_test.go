package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)

func fixtureBooks() [][]string {
	return [][]string{
		{"B001", "1984", "George Orwell", "Dystopia", TypePhysical, Yes, ""},
		{"B002", "The Art of War", "Sun Tzu", "Strategy", TypeDigital, Yes, "https://library.example/art-of-war.epub"},
		{"B003", "The Fellowship of the Ring", "J.R.R. Tolkien", "Fantasy", TypePhysical, Yes, ""},
		{"B004", "Animal Farm", "George Orwell", "Satire", TypePhysical, No, ""},
		{"B005", "Romeo and Juliet", "William Shakespeare", "Drama", TypeDigital, No, "https://library.example/romeo.epub"},
	}
}

func fixtureMembers() [][]string {
	return [][]string{
		{"M001", "Alice Martin", "alice@example.com", TypeStandard, Yes, "1234"},
		{"M002", "Bruno Costa", "bruno@example.com", TypePremium, Yes, "5678"},
		{"M003", "Chen Wei", "chen@example.com", TypeStandard, No, "0000"},
	}
}

// writeFixtures creates the three tables in a temp dir and returns options
// pointing at them. The journal lives in the same dir.
func writeFixtures(t *testing.T, loans [][]string) Options {
	t.Helper()
	dir := t.TempDir()
	opts := Options{
		BooksPath:     filepath.Join(dir, "books.csv"),
		MembersPath:   filepath.Join(dir, "members.csv"),
		LoansPath:     filepath.Join(dir, "loans.csv"),
		JournalPath:   filepath.Join(dir, "circulation.db"),
		LoanDays:      DefaultLoanDays,
		ExtensionDays: DefaultExtensionDays,
	}
	_, err := WriteTable(opts.BooksPath, BookHeader, fixtureBooks())
	require.NoError(t, err)
	_, err = WriteTable(opts.MembersPath, MemberHeader, fixtureMembers())
	require.NoError(t, err)
	_, err = WriteTable(opts.LoansPath, LoanHeader, loans)
	require.NoError(t, err)
	return opts
}

func newManager(t *testing.T, opts Options) *LibraryManager {
	t.Helper()
	mgr, err := NewLibraryManager(opts)
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
