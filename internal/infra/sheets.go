package infra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetAPIError reports a non-2xx response from the spreadsheet service.
type SheetAPIError struct {
	StatusCode int
}

func (e *SheetAPIError) Error() string {
	return fmt.Sprintf("sheets: service returned %d", e.StatusCode)
}

// Transient reports whether the status signals a condition worth retrying.
func (e *SheetAPIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// SheetTransportError wraps a network-level failure reaching the service.
type SheetTransportError struct {
	Err error
}

func (e *SheetTransportError) Error() string {
	return fmt.Sprintf("sheets: transport: %v", e.Err)
}

func (e *SheetTransportError) Unwrap() error { return e.Err }

// IsTransientSheetError recognizes the two failure kinds worth retrying:
// the remote API signaling a transient error (rate limit / 5xx) and generic
// network-transport failures. Everything else (bad credentials, malformed
// documents) propagates immediately.
func IsTransientSheetError(err error) bool {
	var apiErr *SheetAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	var transportErr *SheetTransportError
	return errors.As(err, &transportErr)
}

// SheetRows is the full row set of a worksheet, outer slice per row.
type SheetRows [][]string

// SheetsClient fetches the customer-balance spreadsheet: a fixed document
// URL served as xlsx, authorized with a service credential.
type SheetsClient struct {
	docURL     string
	token      string
	httpClient *http.Client
}

func NewSheetsClient(docURL, token string) *SheetsClient {
	return &SheetsClient{
		docURL:     docURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchRows downloads the document and returns the first worksheet's full
// row set. One call per invocation — retrying is the caller's policy.
func (c *SheetsClient) FetchRows(ctx context.Context) (SheetRows, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL, nil)
	if err != nil {
		return nil, fmt.Errorf("sheets: create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SheetTransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SheetAPIError{StatusCode: resp.StatusCode}
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sheets: read workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("sheets: workbook has no worksheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("sheets: read rows: %w", err)
	}
	return rows, nil
}
