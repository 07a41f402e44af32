package repository

import "github.com/user/schedule-capture-service/internal/entity"

// StamperRepository defines the contract for composing an overlay onto a
// captured document.
//
// Failure semantics are two-tiered. Validation failures (ErrEmptyMessage,
// ErrNoPages) and an unreadable input return a *ProcessingError. A failure
// while composing or merging the overlay itself is not an error: the
// implementation logs a warning and returns the affected pages unmodified,
// so a document always comes back whenever the input was readable.
type StamperRepository interface {
	Stamp(doc []byte, overlay entity.Overlay) ([]byte, error)
}
