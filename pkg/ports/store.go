package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/document"
)

// DraftStore persists workflow drafts by name, so an editor can stop and
// resume assembling a graph.
type DraftStore interface {
	// Save persists the draft under the given name, replacing any
	// previous version.
	Save(ctx context.Context, name string, doc *document.Document) error

	// Load retrieves a draft.
	// Returns domain.ErrDraftNotFound if the name is unknown.
	Load(ctx context.Context, name string) (*document.Document, error)

	// Delete removes a draft. Deleting an unknown name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of stored drafts.
	List(ctx context.Context) ([]string, error)
}
