package batch

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Reserved column names. Everything else in an input file is treated as a
// numeric model feature.
const (
	idColumn         = "id"
	labelColumn      = "loan_status"
	housingColumn    = "home_ownership"
	groupValueColumn = "forty_plus_indicator"
)

// LoadFile reads a batch from a CSV or JSON-lines file, dispatching on the
// file extension.
func LoadFile(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	var b *Batch
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		b, err = ReadCSV(f)
	case ".json", ".jsonl", ".ndjson":
		b, err = ReadJSONLines(f)
	default:
		return nil, fmt.Errorf("unsupported batch file format: %s", path)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("path", path).
		Int("records", b.Size()).
		Bool("validated", b.Validated()).
		Msg("batch loaded")

	return b, nil
}

// ReadCSV parses a header-led CSV stream into a batch. Unknown columns
// become numeric features; an empty loan_status cell means no ground truth
// for that record.
func ReadCSV(r io.Reader) (*Batch, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	b := &Batch{}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		line++

		rec := Record{Features: make(map[string]float64, len(header))}
		for i, col := range header {
			if i >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[i])
			switch col {
			case idColumn:
				rec.ID = cell
			case housingColumn:
				rec.HomeOwnership = cell
			case groupValueColumn:
				rec.GroupValue = cell
			case labelColumn:
				label, err := parseLabel(cell)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				rec.LoanStatus = label
			default:
				if cell == "" {
					continue
				}
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: column %q: %w", line, col, err)
				}
				rec.Features[col] = v
			}
		}
		b.Records = append(b.Records, rec)
	}

	return b, nil
}

// jsonRecord is the JSON-lines wire form of a record. loan_status is kept
// raw because both the numeric (0/1) and the named label encodings appear
// in the wild.
type jsonRecord struct {
	ID            string             `json:"id"`
	LoanStatus    json.RawMessage    `json:"loan_status,omitempty"`
	HomeOwnership string             `json:"home_ownership"`
	GroupValue    string             `json:"forty_plus_indicator"`
	Features      map[string]float64 `json:"features"`
}

// ReadJSONLines parses a JSON-lines stream, one record object per line.
func ReadJSONLines(r io.Reader) (*Batch, error) {
	b := &Batch{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var jr jsonRecord
		if err := json.Unmarshal([]byte(text), &jr); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := Record{
			ID:            jr.ID,
			HomeOwnership: jr.HomeOwnership,
			GroupValue:    jr.GroupValue,
			Features:      jr.Features,
		}
		if rec.Features == nil {
			rec.Features = make(map[string]float64)
		}
		if raw := strings.TrimSpace(string(jr.LoanStatus)); raw != "" && raw != "null" {
			unquoted := strings.Trim(raw, `"`)
			label, err := parseLabel(unquoted)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec.LoanStatus = label
		}
		b.Records = append(b.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan JSON lines: %w", err)
	}

	return b, nil
}

// parseLabel accepts the numeric (0/1) and named ("Charged Off" /
// "Fully Paid") encodings of the ground-truth label. Empty input means the
// record is unlabeled.
func parseLabel(s string) (*int, error) {
	switch s {
	case "":
		return nil, nil
	case "0", LabelChargedOffName:
		v := LabelChargedOff
		return &v, nil
	case "1", LabelFullyPaidName:
		v := LabelFullyPaid
		return &v, nil
	default:
		return nil, fmt.Errorf("unrecognized loan_status value %q", s)
	}
}
