package library

import "fmt"

var bookColumns = []string{ColID, ColTitle, ColAuthor, ColGenre, ColType, ColAvailable}

// CatalogStore holds the book table for the lifetime of the process.
type CatalogStore struct {
	table *Table
}

// OpenCatalog loads the catalog table at path.
func OpenCatalog(path string) (*CatalogStore, error) {
	t, err := LoadTable(path, bookColumns)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return &CatalogStore{table: t}, nil
}

// Lookup finds a book by exact, case-sensitive id.
func (c *CatalogStore) Lookup(id string) (*BookRecord, bool) {
	row := c.table.Find(ColID, id)
	if row < 0 {
		return nil, false
	}
	return c.record(row), true
}

// IsAvailable reports whether the book's available field is "yes".
// Unknown ids are never available.
func (c *CatalogStore) IsAvailable(id string) bool {
	row := c.table.Find(ColID, id)
	return row >= 0 && c.table.Get(row, ColAvailable) == Yes
}

// SetAvailability updates the available field of the book and rewrites the
// catalog file.
func (c *CatalogStore) SetAvailability(id, value string) error {
	row := c.table.Find(ColID, id)
	if row < 0 {
		return fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	c.table.Set(row, ColAvailable, value)
	return c.table.Save()
}

// All returns every book in file order.
func (c *CatalogStore) All() []*BookRecord {
	books := make([]*BookRecord, 0, c.table.Len())
	for i := 0; i < c.table.Len(); i++ {
		books = append(books, c.record(i))
	}
	return books
}

// Digest returns the digest of the catalog file as last read or written.
func (c *CatalogStore) Digest() string { return c.table.Digest() }

func (c *CatalogStore) record(row int) *BookRecord {
	t := c.table
	return &BookRecord{
		ID:          t.Get(row, ColID),
		Title:       t.Get(row, ColTitle),
		Author:      t.Get(row, ColAuthor),
		Genre:       t.Get(row, ColGenre),
		Type:        t.Get(row, ColType),
		Available:   t.Get(row, ColAvailable),
		DownloadURL: t.Get(row, ColDownloadURL),
	}
}
