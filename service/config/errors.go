package config

import (
	"fmt"
	"strings"
)

// EntryError describes a single invalid target entry, annotated with its
// 1-based position in the targets sequence and, when determinable, its name.
type EntryError struct {
	Position int
	Name     string
	Err      error
}

// Error implements the error interface.
func (e *EntryError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("entry %d (%s): %v", e.Position, e.Name, e.Err)
	}
	return fmt.Sprintf("entry %d: %v", e.Position, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *EntryError) Unwrap() error {
	return e.Err
}

// InvalidEntriesError aggregates every invalid entry found in one load.
type InvalidEntriesError struct {
	Entries []*EntryError
}

// Error implements the error interface.
func (e *InvalidEntriesError) Error() string {
	parts := make([]string, 0, len(e.Entries))
	for _, entry := range e.Entries {
		parts = append(parts, entry.Error())
	}
	return fmt.Sprintf("invalid target entries: %s", strings.Join(parts, "; "))
}

// DuplicateNamesError reports enabled targets sharing a name; Names lists
// every duplicated name.
type DuplicateNamesError struct {
	Names []string
}

// Error implements the error interface.
func (e *DuplicateNamesError) Error() string {
	return fmt.Sprintf("duplicate target names: %s", strings.Join(e.Names, ", "))
}
