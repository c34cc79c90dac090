package sheetstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Memory implements Store in process, with the same shape the spreadsheet
// API exposes: header rows at index 0, stable row indices, and sequential
// structural deletion inside a batch (each delete shifts the rows below
// it). Used by the worker tests and for local development without
// credentials.
type Memory struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

func NewMemory() *Memory {
	return &Memory{
		sheets: map[string][][]string{
			SheetQuests: {{
				"quest_id", "title", "category", "slots", "organizer_name",
				"schedule", "platform", "description", "deadline", "created_at",
			}},
			SheetParticipants: {{"quest_id", "user_id", "user_tag", "status", "taken_at"}},
			SheetCommunities:  {{"community_name", "leader_id", "registered_at"}},
			SheetSubmissions:  {{"quest_id", "user_id", "proof_url", "submitted_at"}},
		},
	}
}

func (m *Memory) Get(_ context.Context, readRange string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sheet, ref, err := m.locked(readRange)
	if err != nil {
		return nil, err
	}

	startRow, endRow := ref.rowWindow(len(sheet))
	out := make([][]string, 0, endRow-startRow)
	for i := startRow; i < endRow; i++ {
		row := sheet[i]
		endCol := ref.endCol + 1
		if ref.endCol < 0 || endCol > len(row) {
			endCol = len(row)
		}
		startCol := ref.startCol
		if startCol > len(row) {
			startCol = len(row)
		}
		out = append(out, append([]string(nil), row[startCol:endCol]...))
	}
	return out, nil
}

func (m *Memory) BatchGet(ctx context.Context, readRanges ...string) ([][][]string, error) {
	out := make([][][]string, len(readRanges))
	for i, rng := range readRanges {
		rows, err := m.Get(ctx, rng)
		if err != nil {
			return nil, err
		}
		out[i] = rows
	}
	return out, nil
}

func (m *Memory) Append(_ context.Context, writeRange string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	title, _, err := splitRange(writeRange)
	if err != nil {
		return err
	}
	sheet, ok := m.sheets[title]
	if !ok {
		return fmt.Errorf("unknown sheet %q", title)
	}

	for _, row := range rows {
		sheet = append(sheet, append([]string(nil), row...))
	}
	m.sheets[title] = sheet
	return nil
}

func (m *Memory) Update(_ context.Context, writeRange string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sheet, ref, err := m.locked(writeRange)
	if err != nil {
		return err
	}
	if ref.startRow < 0 {
		return fmt.Errorf("update range %q must address rows", writeRange)
	}

	title, _, _ := splitRange(writeRange)
	for i, row := range rows {
		target := ref.startRow + i
		if target >= len(sheet) {
			return fmt.Errorf("update range %q exceeds sheet %q", writeRange, title)
		}
		for j, cell := range row {
			col := ref.startCol + j
			for col >= len(sheet[target]) {
				sheet[target] = append(sheet[target], "")
			}
			sheet[target][col] = cell
		}
	}
	return nil
}

func (m *Memory) DeleteRows(_ context.Context, deletes []RowDelete) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Stage on copies so a bad index leaves the store untouched, matching
	// batchUpdate atomicity.
	staged := make(map[string][][]string)
	for _, d := range deletes {
		sheet, ok := staged[d.Sheet]
		if !ok {
			orig, exists := m.sheets[d.Sheet]
			if !exists {
				return fmt.Errorf("unknown sheet %q", d.Sheet)
			}
			sheet = append([][]string(nil), orig...)
		}
		if d.Row < 0 || d.Row >= len(sheet) {
			return fmt.Errorf("row %d out of range for sheet %q", d.Row, d.Sheet)
		}
		staged[d.Sheet] = append(sheet[:d.Row], sheet[d.Row+1:]...)
	}

	for title, sheet := range staged {
		m.sheets[title] = sheet
	}
	return nil
}

// Rows returns a copy of a sheet's full contents, header included.
func (m *Memory) Rows(title string) [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sheet := m.sheets[title]
	out := make([][]string, len(sheet))
	for i, row := range sheet {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func (m *Memory) locked(rng string) ([][]string, rangeRef, error) {
	title, ref, err := splitRange(rng)
	if err != nil {
		return nil, rangeRef{}, err
	}
	sheet, ok := m.sheets[title]
	if !ok {
		return nil, rangeRef{}, fmt.Errorf("unknown sheet %q", title)
	}
	return sheet, ref, nil
}

// rangeRef is a parsed A1 reference. Rows and columns are zero-based; a
// row of -1 means the reference spans whole columns.
type rangeRef struct {
	startCol, startRow int
	endCol, endRow     int
}

func (r rangeRef) rowWindow(n int) (int, int) {
	start, end := 0, n
	if r.startRow >= 0 {
		start = r.startRow
		end = r.endRow + 1
	}
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return start, end
}

func splitRange(rng string) (string, rangeRef, error) {
	title, refPart, found := strings.Cut(rng, "!")
	if !found {
		return "", rangeRef{}, fmt.Errorf("range %q missing sheet title", rng)
	}

	startPart, endPart, hasEnd := strings.Cut(refPart, ":")
	startCol, startRow, err := parseCell(startPart)
	if err != nil {
		return "", rangeRef{}, fmt.Errorf("range %q: %w", rng, err)
	}

	ref := rangeRef{startCol: startCol, startRow: startRow, endCol: startCol, endRow: startRow}
	if hasEnd {
		endCol, endRow, err := parseCell(endPart)
		if err != nil {
			return "", rangeRef{}, fmt.Errorf("range %q: %w", rng, err)
		}
		ref.endCol = endCol
		ref.endRow = endRow
	}
	return title, ref, nil
}

// parseCell parses "D7" into column 3, row 6. A bare column letter parses
// to row -1 (whole column).
func parseCell(cell string) (int, int, error) {
	i := 0
	col := 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		col = col*26 + int(cell[i]-'A'+1)
		i++
	}
	if col == 0 {
		return 0, 0, fmt.Errorf("invalid cell %q", cell)
	}
	if i == len(cell) {
		return col - 1, -1, nil
	}

	row := 0
	for ; i < len(cell); i++ {
		if cell[i] < '0' || cell[i] > '9' {
			return 0, 0, fmt.Errorf("invalid cell %q", cell)
		}
		row = row*10 + int(cell[i]-'0')
	}
	if row == 0 {
		return 0, 0, fmt.Errorf("invalid cell %q", cell)
	}
	return col - 1, row - 1, nil
}
