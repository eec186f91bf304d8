package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a delimited text file with the same column layout as a
// workbook. The delimiter is picked from the header line among comma,
// semicolon and tab.
func ParseCSV(source string, r io.Reader, opts ParseOptions) (*RawDataset, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	head, _ := br.Peek(4096)

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(string(head))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %w", ErrMalformed, err)
	}
	return build(source, "", records, nil)
}

func detectDelimiter(sample string) rune {
	line := sample
	if i := strings.IndexAny(sample, "\r\n"); i >= 0 {
		line = sample[:i]
	}
	best, bestCount := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
