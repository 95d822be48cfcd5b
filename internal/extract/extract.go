// Package extract scrapes bank names and USD market caps from an HTML table.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/banketl/banketl/internal/model"
)

var (
	// ErrFetch is returned when the page cannot be retrieved.
	ErrFetch = errors.New("fetch failed")
	// ErrParse is returned when the page has no usable table.
	ErrParse = errors.New("parse failed")
	// ErrNumericParse is returned when a market-cap cell is not a number.
	ErrNumericParse = errors.New("numeric parse failed")
)

// UserAgent is sent with every page request.
const UserAgent = "banketl (+https://github.com/banketl/banketl)"

const (
	cellName      = 1 // second <td>
	cellMarketCap = 2 // third <td>
	anchorName    = 1 // second <a> in the name cell; the first is the flag icon
)

// Stats counts how rows of the source table were handled.
type Stats struct {
	Rows        int   // <tr> elements in the table body
	HeaderRows  int   // rows without <td> cells
	Extracted   int   // rows turned into records
	Skipped     int   // data rows lacking the name anchor or market-cap cell
	SkippedRows []int // 1-based indexes of skipped rows
}

// Extractor fetches a page and scrapes its bank table.
type Extractor struct {
	client  *http.Client
	locator TableLocator
	logger  zerolog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient sets the client used for the page request.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) { e.client = c }
}

// WithLocator sets the strategy choosing which table to scrape.
func WithLocator(l TableLocator) Option {
	return func(e *Extractor) { e.locator = l }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// New creates an Extractor using http.DefaultClient and FirstTableBody.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		client:  http.DefaultClient,
		locator: FirstTableBody{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches url with a single GET and returns one record per valid row
// in document order. columns must only name Name and MC_USD_Billion.
func (e *Extractor) Extract(ctx context.Context, url string, columns []string) ([]model.BankRecord, Stats, error) {
	if err := checkColumns(columns); err != nil {
		return nil, Stats{}, err
	}

	body, err := e.fetch(ctx, url)
	if err != nil {
		return nil, Stats{}, err
	}
	defer body.Close()

	records, stats, err := e.Parse(body)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", url, err)
	}
	return records, stats, nil
}

func (e *Extractor) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %w", ErrFetch, url, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	e.logger.Debug().Str("url", url).Msg("fetching page")
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrFetch, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: status %s", ErrFetch, url, resp.Status)
	}
	return resp.Body, nil
}

// Parse scrapes an already fetched HTML document.
func (e *Extractor) Parse(r io.Reader) ([]model.BankRecord, Stats, error) {
	var stats Stats

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: reading HTML: %w", ErrParse, err)
	}

	tbody, err := e.locator.Locate(doc)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: locator %s: %w", ErrParse, e.locator.Name(), err)
	}

	var records []model.BankRecord
	var rowErr error
	tbody.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		idx := i + 1
		stats.Rows++

		rec, kind, err := parseRow(row)
		if err != nil {
			rowErr = fmt.Errorf("%w: row %d: %w", ErrNumericParse, idx, err)
			return false
		}
		switch kind {
		case rowHeader:
			stats.HeaderRows++
		case rowSkipped:
			stats.Skipped++
			stats.SkippedRows = append(stats.SkippedRows, idx)
			e.logger.Debug().Int("row", idx).Msg("skipping row without name anchor")
		case rowData:
			stats.Extracted++
			records = append(records, rec)
		}
		return true
	})
	if rowErr != nil {
		return nil, stats, rowErr
	}
	return records, stats, nil
}

type rowKind int

const (
	rowHeader rowKind = iota
	rowSkipped
	rowData
)

func parseRow(row *goquery.Selection) (model.BankRecord, rowKind, error) {
	cells := row.Find("td")
	if cells.Length() == 0 {
		return model.BankRecord{}, rowHeader, nil
	}

	anchors := cells.Eq(cellName).Find("a")
	if anchors.Length() <= anchorName || cells.Length() <= cellMarketCap {
		return model.BankRecord{}, rowSkipped, nil
	}

	name := strings.TrimSpace(anchors.Eq(anchorName).Text())
	usd, err := ParseMarketCap(cells.Eq(cellMarketCap).Text())
	if err != nil {
		return model.BankRecord{}, rowSkipped, fmt.Errorf("%s: %w", name, err)
	}
	return model.BankRecord{Name: name, MarketCapUSD: usd}, rowData, nil
}

func checkColumns(columns []string) error {
	for _, c := range columns {
		if c != model.ColName && c != model.ColUSD {
			return fmt.Errorf("%w: unsupported column %q", ErrParse, c)
		}
	}
	return nil
}
