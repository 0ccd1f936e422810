// pkg/frame/csv.go
package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadCSV parses CSV content into a frame. The first record is the header.
// Records with a deviating field count are tolerated; the frame pads or the
// extra cells ride along positionally.
func ReadCSV(name string, r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("source %s is empty", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		rows = append(rows, record)
	}

	return New(name, header, rows)
}

// ReadCSVFile reads a CSV file into a frame, using the base filename (without
// extension) as the frame name
func ReadCSVFile(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]
	return ReadCSV(name, f)
}
