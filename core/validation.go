package core

import "fmt"

// ValidateRecord validates a Record returned by a lookup.
//
// The id is both the row URI suffix and the cache key, so it must not be
// empty. A blank title is legal and still produces rows. Categories are not
// validated; an enriched record with no genres is legal.
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyID)
	}

	return nil
}

// ValidateMode validates that a Mode has a known value.
func ValidateMode(mode Mode) error {
	if mode != ModeNameOnly && mode != ModeGenreInfo {
		return fmt.Errorf("%w: value %d", ErrInvalidMode, mode)
	}
	return nil
}
