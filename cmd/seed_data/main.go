package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"library-circulation/library"
)

// Sample catalog (id, title, author, genre, type, available, download_url).
var sampleBooks = [][]string{
	{"B001", "1984", "George Orwell", "Dystopia", library.TypePhysical, library.Yes, ""},
	{"B002", "The Art of War", "Sun Tzu", "Strategy", library.TypeDigital, library.Yes, "https://library.example/ebooks/art-of-war.epub"},
	{"B003", "The Fellowship of the Ring", "J.R.R. Tolkien", "Fantasy", library.TypePhysical, library.Yes, ""},
	{"B004", "Animal Farm", "George Orwell", "Satire", library.TypePhysical, library.Yes, ""},
	{"B005", "Romeo and Juliet", "William Shakespeare", "Drama", library.TypeDigital, library.Yes, "https://library.example/ebooks/romeo-and-juliet.epub"},
	{"B006", "The Three Musketeers", "Alexandre Dumas", "Adventure", library.TypePhysical, library.Yes, ""},
}

// Sample members (id, name, email, type, active, pin).
var sampleMembers = [][]string{
	{"M001", "Alice Martin", "alice@example.com", library.TypeStandard, library.Yes, "1234"},
	{"M002", "Bruno Costa", "bruno@example.com", library.TypePremium, library.Yes, "5678"},
	{"M003", "Chen Wei", "chen@example.com", library.TypeStandard, library.No, "0000"},
}

func main() {
	var dir string
	cmd := &cobra.Command{
		Use:          "seed_data",
		Short:        "Replace the three tables with sample rows",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to write books.csv, members.csv and loans.csv into")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func seed(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"books.csv", library.BookHeader, sampleBooks},
		{"members.csv", library.MemberHeader, sampleMembers},
		{"loans.csv", library.LoanHeader, nil},
	}

	fmt.Printf("Seeding tables in %s...\n", dir)
	errorCount := 0
	for _, t := range tables {
		path := filepath.Join(dir, t.name)
		fmt.Printf("Writing %s... ", path)
		digest, err := library.WriteTable(path, t.header, t.rows)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (%d rows, digest %s)\n", len(t.rows), digest[:12])
	}

	if errorCount > 0 {
		return fmt.Errorf("%d table(s) could not be written", errorCount)
	}

	fmt.Println("\nSeeded members:")
	fmt.Printf("%-5s %-20s %-9s %-6s %s\n", "ID", "Name", "Type", "Active", "PIN")
	fmt.Println(strings.Repeat("-", 50))
	for _, m := range sampleMembers {
		fmt.Printf("%-5s %-20s %-9s %-6s %s\n", m[0], m[1], m[3], m[4], m[5])
	}
	return nil
}
