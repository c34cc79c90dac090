// Package sheetstore is the boundary to the spreadsheet that acts as the
// system of record. The store offers range-addressed reads, appends,
// whole-range overwrites and structural row deletion only; every lookup by
// id is a linear scan over the returned rows.
package sheetstore

import "context"

const (
	SheetQuests       = "Quests"
	SheetParticipants = "Participants"
	SheetCommunities  = "Communities"
	SheetSubmissions  = "Submissions"

	RangeQuests       = "Quests!A:J"
	RangeParticipants = "Participants!A:E"
	RangeCommunities  = "Communities!A:C"
	RangeSubmissions  = "Submissions!A:D"
)

// RowDelete addresses one row for structural deletion. Row is zero-based
// and interpreted against the sheet as it was when the batch is submitted,
// so callers must order deletes on the same sheet in descending row order.
type RowDelete struct {
	Sheet string
	Row   int
}

type Store interface {
	// Get reads a single range. Row 0 of a full table range is the header.
	Get(ctx context.Context, readRange string) ([][]string, error)
	// BatchGet reads several ranges in one call, in the given order.
	BatchGet(ctx context.Context, readRanges ...string) ([][][]string, error)
	// Append adds rows after the last data row of the table containing the
	// range.
	Append(ctx context.Context, writeRange string, rows [][]string) error
	// Update overwrites exactly the cells addressed by the range.
	Update(ctx context.Context, writeRange string, rows [][]string) error
	// DeleteRows removes the addressed rows as one atomic batch: either all
	// deletions apply or none do.
	DeleteRows(ctx context.Context, deletes []RowDelete) error
}
