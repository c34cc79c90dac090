package sheetstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest/logger"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// callTimeout bounds every individual spreadsheet API call. It is the only
// bound on an otherwise-blocking external call in the pipeline.
const callTimeout = 30 * time.Second

// GoogleStore implements Store against the Google Sheets values and
// batchUpdate APIs.
type GoogleStore struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

func NewGoogleStore(ctx context.Context, spreadsheetID, credentialsFile string) (*GoogleStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &GoogleStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
	}, nil
}

func (s *GoogleStore) Get(ctx context.Context, readRange string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("values get %s: %w", readRange, err)
	}
	return toStringRows(resp.Values), nil
}

func (s *GoogleStore) BatchGet(ctx context.Context, readRanges ...string) ([][][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.BatchGet(s.spreadsheetID).
		Ranges(readRanges...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("values batch get: %w", err)
	}

	out := make([][][]string, len(readRanges))
	for i, vr := range resp.ValueRanges {
		if i >= len(out) {
			break
		}
		out[i] = toStringRows(vr.Values)
	}
	return out, nil
}

func (s *GoogleStore) Append(ctx context.Context, writeRange string, rows [][]string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, writeRange, &sheets.ValueRange{
		Values: toAnyRows(rows),
	}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	logger.LogSheet("append", writeRange, err)
	if err != nil {
		return fmt.Errorf("values append %s: %w", writeRange, err)
	}
	return nil
}

func (s *GoogleStore) Update(ctx context.Context, writeRange string, rows [][]string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, writeRange, &sheets.ValueRange{
		Values: toAnyRows(rows),
	}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	logger.LogSheet("update", writeRange, err)
	if err != nil {
		return fmt.Errorf("values update %s: %w", writeRange, err)
	}
	return nil
}

// DeleteRows submits all deletions as one batchUpdate. Row deletion is a
// dimension-range operation scoped by the store-internal sheet id, so the
// titles are resolved (and memoized) first.
func (s *GoogleStore) DeleteRows(ctx context.Context, deletes []RowDelete) error {
	if len(deletes) == 0 {
		return nil
	}

	ids, err := s.resolveSheetIDs(ctx)
	if err != nil {
		return err
	}

	requests := make([]*sheets.Request, 0, len(deletes))
	for _, d := range deletes {
		sheetID, ok := ids[d.Sheet]
		if !ok {
			return fmt.Errorf("unknown sheet %q", d.Sheet)
		}
		requests = append(requests, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(d.Row),
					EndIndex:   int64(d.Row + 1),
				},
			},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	logger.LogSheet("delete_rows", fmt.Sprintf("%d rows", len(deletes)), err)
	if err != nil {
		return fmt.Errorf("batch row delete: %w", err)
	}
	return nil
}

func (s *GoogleStore) resolveSheetIDs(ctx context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sheetIDs != nil {
		return s.sheetIDs, nil
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sheet ids: %w", err)
	}

	ids := make(map[string]int64, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			ids[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	s.sheetIDs = ids
	return ids, nil
}

func toStringRows(values [][]any) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			if s, ok := cell.(string); ok {
				cells[j] = s
			} else {
				cells[j] = fmt.Sprint(cell)
			}
		}
		rows[i] = cells
	}
	return rows
}

func toAnyRows(rows [][]string) [][]any {
	values := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}
	return values
}
