package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// ParseResult is a parsed table plus the number of rows skipped as malformed.
type ParseResult struct {
	Rows      []contracts.RawListing
	Malformed int
}

// ParseCSV reads a header row and then listings. Rows with a different field count or
// broken quoting are skipped, not fatal. A missing header or required column is fatal.
func ParseCSV(r io.Reader) (ParseResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{}, fmt.Errorf("empty file")
		}
		return ParseResult{}, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return ParseResult{}, err
	}

	var res ParseResult
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			res.Malformed++
			continue
		}
		if err != nil {
			return ParseResult{}, fmt.Errorf("read row: %w", err)
		}
		if len(rec) != cols.width {
			res.Malformed++
			continue
		}
		res.Rows = append(res.Rows, cols.build(rec))
	}
	return res, nil
}

// CSVFile loads listings from a local CSV file
type CSVFile struct {
	path string
	log  zerolog.Logger
}

// NewCSVFile 새 CSV 파일 소스 생성
func NewCSVFile(path string, log zerolog.Logger) *CSVFile {
	return &CSVFile{
		path: path,
		log:  log.With().Str("component", "dataset.csv").Logger(),
	}
}

// Name identifies the source in logs and errors.
func (s *CSVFile) Name() string {
	return "csv:" + s.path
}

// Load reads the whole file.
func (s *CSVFile) Load(ctx context.Context) ([]contracts.RawListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &contracts.DataLoadError{Source: s.Name(), Err: err}
	}
	return parseAndLog(s.Name(), bytes.NewReader(data), ParseCSV, s.log)
}

// parseAndLog wraps parser failures as DataLoadError and logs skipped rows.
func parseAndLog(name string, r io.Reader, parse func(io.Reader) (ParseResult, error), log zerolog.Logger) ([]contracts.RawListing, error) {
	res, err := parse(r)
	if err != nil {
		return nil, &contracts.DataLoadError{Source: name, Err: err}
	}
	ev := log.Info()
	if res.Malformed > 0 {
		ev = log.Warn()
	}
	ev.Str("source", name).Int("rows", len(res.Rows)).Int("malformed", res.Malformed).Msg("dataset loaded")
	return res.Rows, nil
}
