// ABOUTME: ID generation for stored content: ULIDs for pages and forms, UUIDs for submissions.
// ABOUTME: Centralizes ULID creation so all code uses the same entropy source.
package content

import (
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID using crypto/rand entropy.
func NewULID() ulid.ULID {
	return ulid.MustNew(ulid.Now(), rand.Reader)
}

// NewSubmissionID returns a random UUID string.
func NewSubmissionID() string {
	return uuid.New().String()
}
