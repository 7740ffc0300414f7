package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// RecordSource yields raw header→value records one at a time. The
// source is read once, front to back, and is never rewound. Next
// returns io.EOF when the stream is exhausted.
type RecordSource interface {
	Next() (map[string]string, error)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM drops a leading UTF-8 byte order mark, common in exports
// produced on Windows.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(utf8BOM))
	if err == nil && head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2] {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// CSVSource streams records from a delimited file with a header line.
type CSVSource struct {
	reader *csv.Reader
	header []string
}

// NewCSVSource wraps r and consumes the header line. Ragged data rows
// are tolerated: a short row leaves the trailing fields absent, an
// overlong row's extra cells are dropped.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("ingest: file is empty")
		}
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}
	return &CSVSource{reader: cr, header: header}, nil
}

// Next returns the next data row keyed by header name.
func (s *CSVSource) Next() (map[string]string, error) {
	record, err := s.reader.Read()
	if err != nil {
		return nil, err
	}
	row := make(map[string]string, len(s.header))
	for i, name := range s.header {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row, nil
}
