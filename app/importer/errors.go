package importer

import (
	"fmt"

	"blogport/app/models"
)

// ExhaustedRetriesError is returned when every candidate username for an
// author was already taken.
type ExhaustedRetriesError struct {
	Name     string
	Attempts int
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("unable to create account for %q after %d attempts", e.Name, e.Attempts)
}

// RecordImportError aborts a run when one export record cannot be imported.
type RecordImportError struct {
	Title  string
	Record *models.ExternalPost
	Err    error
}

func (e *RecordImportError) Error() string {
	return fmt.Sprintf("unable to import post %q: %v", e.Title, e.Err)
}

func (e *RecordImportError) Unwrap() error {
	return e.Err
}
