package library

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"lutfarm/models"
)

// ErrMalformedLookup is returned for lookup table rows that cannot be parsed
var ErrMalformedLookup = errors.New("malformed lookup table")

// LoadLookupTable reads a lookUpTable_<mode>.csv file
func LoadLookupTable(path string) (models.Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup table %s: %w", path, err)
	}
	defer file.Close()

	catalog, err := ReadLookupTable(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup table %s: %w", path, err)
	}
	return catalog, nil
}

// ReadLookupTable parses header-less id,weight,winHundredths rows
func ReadLookupTable(r io.Reader) (models.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	catalog := make(models.Catalog)
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedLookup, line, err)
		}

		id, err := strconv.ParseUint(strings.TrimSpace(record[0]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d id: %v", ErrMalformedLookup, line, err)
		}
		weight, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d weight: %v", ErrMalformedLookup, line, err)
		}
		win, err := strconv.ParseUint(strings.TrimSpace(record[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d win: %v", ErrMalformedLookup, line, err)
		}
		if _, dup := catalog[uint32(id)]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d on line %d", ErrMalformedLookup, id, line)
		}

		catalog[uint32(id)] = models.OutcomeRecord{
			ID:     uint32(id),
			Weight: weight,
			Win:    float64(win) / 100,
		}
	}

	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrMalformedLookup)
	}
	return catalog, nil
}
