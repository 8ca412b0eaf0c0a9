package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"flight-rag/internal/models"
)

const maxFileSize = 10 * 1024 * 1024 // 10 MiB per uploaded file

var allowedExtensions = map[string]bool{
	".json": true,
	".md":   true,
}

// Client-input failures. Handlers translate these into 400 responses;
// anything else surfaces as a 500.
var (
	ErrInvalidExtension = errors.New("only .json and .md files are allowed")
	ErrFileTooLarge     = errors.New("file size exceeds 10MB limit")
	ErrEmptyFile        = errors.New("uploaded files cannot be empty")
	ErrInvalidJSON      = errors.New("invalid JSON in flights file")
	ErrNotAnArray       = errors.New("flights file must contain a JSON array")
	ErrInvalidFlight    = errors.New("invalid flight data")
)

// IsValidationError reports whether err is a client-input failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidExtension, ErrFileTooLarge, ErrEmptyFile,
		ErrInvalidJSON, ErrNotAnArray, ErrInvalidFlight,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Upload is a named file payload received for ingestion.
type Upload struct {
	Name    string
	Content []byte
}

// ValidateUploads checks the payloads against the extension allow-list, the
// size cap and the empty-file rule, in that order across all files. It does
// not inspect the content.
func ValidateUploads(uploads ...Upload) error {
	for _, u := range uploads {
		ext := strings.ToLower(filepath.Ext(u.Name))
		if !allowedExtensions[ext] {
			return fmt.Errorf("%w: %s has extension %q", ErrInvalidExtension, u.Name, ext)
		}
	}
	for _, u := range uploads {
		if len(u.Content) > maxFileSize {
			return fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, u.Name, len(u.Content))
		}
	}
	for _, u := range uploads {
		if len(u.Content) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyFile, u.Name)
		}
	}
	return nil
}

// ParseFlights decodes the flights payload and checks that every record
// carries all required fields. The offending record is named in the error.
func ParseFlights(content []byte) ([]models.Flight, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(content, &elements); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return nil, fmt.Errorf("%w", ErrNotAnArray)
	}
	if elements == nil {
		// a literal null decodes into a nil slice without error
		return nil, fmt.Errorf("%w", ErrNotAnArray)
	}

	for i, element := range elements {
		var record map[string]json.RawMessage
		if err := json.Unmarshal(element, &record); err != nil {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrInvalidFlight, i)
		}
		for _, field := range models.FlightRequiredFields {
			if _, ok := record[field]; !ok {
				return nil, fmt.Errorf("%w: missing field %q in record %s", ErrInvalidFlight, field, element)
			}
		}
	}

	var flights []models.Flight
	if err := json.Unmarshal(content, &flights); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return flights, nil
}
