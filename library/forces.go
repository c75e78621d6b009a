package library

import (
	"fmt"
	"os"

	"lutfarm/models"

	"github.com/tidwall/gjson"
)

// LoadForceRecords reads a force_record_<mode>.json file
func LoadForceRecords(path string) ([]models.ForceResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read force records %s: %w", path, err)
	}
	results, err := ParseForceRecords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse force records %s: %w", path, err)
	}
	return results, nil
}

// ParseForceRecords decodes grouped search results
func ParseForceRecords(data []byte) ([]models.ForceResult, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedConfig)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: force records must be an array", ErrMalformedConfig)
	}

	var results []models.ForceResult
	for _, entry := range root.Array() {
		result := models.ForceResult{
			Search:         parseSearchKeys(entry.Get("search")),
			TimesTriggered: uint32(entry.Get("timesTriggered").Uint()),
		}
		for _, id := range entry.Get("bookIds").Array() {
			result.BookIDs = append(result.BookIDs, uint32(id.Uint()))
		}
		results = append(results, result)
	}
	return results, nil
}
