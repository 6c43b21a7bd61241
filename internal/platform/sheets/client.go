package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Client appends rows to one spreadsheet range.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
	writeRange    string
}

// NewClient authorises with a service-account JSON key.
func NewClient(ctx context.Context, credentialsJSON []byte, spreadsheetID, writeRange string) (*Client, error) {
	return newClient(ctx, spreadsheetID, writeRange,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
}

func newClient(ctx context.Context, spreadsheetID, writeRange string, opts ...option.ClientOption) (*Client, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if writeRange == "" {
		writeRange = "Sheet1"
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, writeRange: writeRange}, nil
}

// AppendRow adds row after the last non-empty row of the range.
// Cells are written RAW: user text such as "=1+1" or "3/4" is stored as typed.
func (c *Client) AppendRow(ctx context.Context, row []any) error {
	values := &gsheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.writeRange, values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", c.writeRange, err)
	}
	return nil
}
