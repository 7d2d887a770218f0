package library

import "fmt"

// MemberStore holds the member table. The tool never writes it.
type MemberStore struct {
	table  *Table
	ledger *Ledger
}

// OpenMembers loads the member table at path. ledger answers borrowed-book
// queries.
func OpenMembers(path string, ledger *Ledger) (*MemberStore, error) {
	t, err := LoadTable(path, MemberHeader)
	if err != nil {
		return nil, fmt.Errorf("open members: %w", err)
	}
	return &MemberStore{table: t, ledger: ledger}, nil
}

func (m *MemberStore) Lookup(id string) (*MemberRecord, bool) {
	row := m.table.Find(ColID, id)
	if row < 0 {
		return nil, false
	}
	return m.record(row), true
}

func (m *MemberStore) IsActive(id string) bool {
	row := m.table.Find(ColID, id)
	return row >= 0 && m.table.Get(row, ColActive) == Yes
}

// BorrowedBookIDs lists the book ids of the member's open loans in ledger
// order.
func (m *MemberStore) BorrowedBookIDs(memberID string) []string {
	var ids []string
	for _, loan := range m.ledger.OpenLoans(memberID) {
		ids = append(ids, loan.BookID)
	}
	return ids
}

func (m *MemberStore) All() []*MemberRecord {
	members := make([]*MemberRecord, 0, m.table.Len())
	for i := 0; i < m.table.Len(); i++ {
		members = append(members, m.record(i))
	}
	return members
}

func (m *MemberStore) record(row int) *MemberRecord {
	t := m.table
	return &MemberRecord{
		ID:     t.Get(row, ColID),
		Name:   t.Get(row, ColName),
		Email:  t.Get(row, ColEmail),
		Type:   t.Get(row, ColType),
		Active: t.Get(row, ColActive),
		PIN:    t.Get(row, ColPIN),
	}
}
