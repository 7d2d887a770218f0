package configs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"library-circulation/library"
)

type Config struct {
	DataDir       string
	BooksFile     string
	MembersFile   string
	LoansFile     string
	JournalFile   string
	LoanDays      int
	ExtensionDays int
	LogLevel      string
}

// Defaults reproduce the plain layout: three CSV files and the journal in
// the working directory.
func Defaults() Config {
	return Config{
		DataDir:       ".",
		BooksFile:     "books.csv",
		MembersFile:   "members.csv",
		LoansFile:     "loans.csv",
		JournalFile:   "circulation.db",
		LoanDays:      library.DefaultLoanDays,
		ExtensionDays: library.DefaultExtensionDays,
		LogLevel:      "warn",
	}
}

// LoadConfig reads an optional .env file and then LIBRARY_* environment
// variables on top of Defaults.
func LoadConfig() (Config, error) { return LoadConfigFrom(".env") }

// LoadConfigFrom is LoadConfig with an explicit env file. A missing file is
// fine; an unreadable one is logged and skipped.
func LoadConfigFrom(envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		slog.Warn("ignoring .env file", "err", err)
	}

	cfg := Defaults()
	setString(&cfg.DataDir, "LIBRARY_DATA_DIR")
	setString(&cfg.BooksFile, "LIBRARY_BOOKS_FILE")
	setString(&cfg.MembersFile, "LIBRARY_MEMBERS_FILE")
	setString(&cfg.LoansFile, "LIBRARY_LOANS_FILE")
	setString(&cfg.LogLevel, "LIBRARY_LOG_LEVEL")
	if v, ok := os.LookupEnv("LIBRARY_JOURNAL"); ok {
		cfg.JournalFile = v
	}

	if err := setInt(&cfg.LoanDays, "LIBRARY_LOAN_DAYS"); err != nil {
		return cfg, err
	}
	if err := setInt(&cfg.ExtensionDays, "LIBRARY_EXTENSION_DAYS"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings no session could run with.
func (c Config) Validate() error {
	if c.LoanDays <= 0 {
		return fmt.Errorf("loan days must be positive, got %d", c.LoanDays)
	}
	if c.ExtensionDays <= 0 {
		return fmt.Errorf("extension days must be positive, got %d", c.ExtensionDays)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Options resolves file names against DataDir. Absolute names are kept.
func (c Config) Options() library.Options {
	opts := library.Options{
		BooksPath:     c.resolve(c.BooksFile),
		MembersPath:   c.resolve(c.MembersFile),
		LoansPath:     c.resolve(c.LoansFile),
		LoanDays:      c.LoanDays,
		ExtensionDays: c.ExtensionDays,
	}
	if c.JournalFile != "" {
		opts.JournalPath = c.resolve(c.JournalFile)
	}
	return opts
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return level, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

func (c Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
