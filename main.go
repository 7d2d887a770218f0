package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-circulation/configs"
	"library-circulation/library"
)

// pinReader reads the PIN without echo when stdin is a terminal and falls
// back to the next input line otherwise.
func pinReader(sc *bufio.Scanner) library.PINReader {
	return func(prompt string) (string, error) {
		fmt.Print(prompt)
		fd := int(os.Stdin.Fd())
		if term.IsTerminal(fd) {
			bytePIN, err := term.ReadPassword(fd)
			if err != nil {
				return "", err
			}
			fmt.Println() // Add newline after PIN input
			return string(bytePIN), nil
		}
		if !sc.Scan() {
			return "", sc.Err()
		}
		return strings.TrimSuffix(sc.Text(), "\r"), nil
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, cfgErr := configs.LoadConfig()

	root := &cobra.Command{
		Use:           "library-circulation",
		Short:         "Borrow, extend and return library books kept in CSV tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			level, _ := cfg.SlogLevel()
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cfg, (*library.Session).Borrow)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding the tables")
	flags.StringVar(&cfg.BooksFile, "books", cfg.BooksFile, "catalog table")
	flags.StringVar(&cfg.MembersFile, "members", cfg.MembersFile, "member table")
	flags.StringVar(&cfg.LoansFile, "loans", cfg.LoansFile, "loan table")
	flags.StringVar(&cfg.JournalFile, "journal", cfg.JournalFile, "SQLite circulation journal (empty disables)")
	flags.IntVar(&cfg.LoanDays, "loan-days", cfg.LoanDays, "days until a new loan is due")
	flags.IntVar(&cfg.ExtensionDays, "extension-days", cfg.ExtensionDays, "days a premium extension adds")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "diagnostic log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "return",
			Short: "Return a borrowed book",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cfg, (*library.Session).Return)
			},
		},
		&cobra.Command{
			Use:   "catalog",
			Short: "List books and members",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cfg, func(s *library.Session) error {
					s.ShowCatalog()
					fmt.Println()
					s.ShowMembers()
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "history [member-id]",
			Short: "List circulation journal entries",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				memberID := ""
				if len(args) == 1 {
					memberID = args[0]
				}
				return showHistory(cfg, memberID)
			},
		},
	)
	return root
}

// withSession opens the tables, runs fn on a console session and closes
// everything again.
func withSession(cfg configs.Config, fn func(*library.Session) error) error {
	manager, err := library.NewLibraryManager(cfg.Options())
	if err != nil {
		return err
	}
	defer manager.Close()

	session := library.NewSession(manager, os.Stdin, os.Stdout)
	session.WithPINReader(pinReader(session.Scanner()))
	return fn(session)
}

func showHistory(cfg configs.Config, memberID string) error {
	opts := cfg.Options()
	if opts.JournalPath == "" {
		fmt.Println("The circulation journal is disabled.")
		return nil
	}
	journal := library.NewJournal(opts.JournalPath)
	defer journal.Close()

	entries, err := journal.Entries(memberID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No journal entries.")
		return nil
	}

	fmt.Printf("%-20s %-7s %-6s %-6s %-5s %s\n", "Recorded", "Kind", "Member", "Book", "Loan", "Digest")
	fmt.Println(strings.Repeat("-", 70))
	for _, e := range entries {
		fmt.Printf("%-20s %-7s %-6s %-6s %-5s %s\n", e.RecordedAt, e.Kind, e.MemberID, e.BookID, e.LoanID, shortDigest(e.TableDigest))
	}
	return nil
}

func shortDigest(d string) string {
	if len(d) <= 12 {
		return d
	}
	return d[:12]
}
