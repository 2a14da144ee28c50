package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/domain"
)

// RunDraftStoreContract verifies that a DraftStore implementation adheres to
// the interface contract. Every adapter's test suite should call it.
func RunDraftStoreContract(t *testing.T, store DraftStore) {
	ctx := context.Background()
	name := "contract-draft-" + time.Now().Format("20060102150405")

	sample := &document.Document{
		Name: name,
		Nodes: []document.NodeDoc{
			{ID: "pills", Kind: "Source", Label: "pills", Attrs: map[string]any{"file": "pill_data.csv"}},
			{ID: "discard", Kind: "Action", Label: "DISCARD"},
		},
		Connections: []document.ConnectionDoc{
			{From: "pills", To: "discard"},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, name, sample)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sample.Name, loaded.Name)
		require.Len(t, loaded.Nodes, 2)
		assert.Equal(t, "Source", loaded.Nodes[0].Kind)
		require.Len(t, loaded.Connections, 1)
		assert.Equal(t, "pills", loaded.Connections[0].From)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		changed := sample.Clone()
		changed.Nodes[0].Attrs["file"] = "other.csv"
		require.NoError(t, store.Save(ctx, name, changed))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "other.csv", loaded.Nodes[0].Attrs["file"])
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample))
		require.NoError(t, store.Delete(ctx, name))

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound, "Load after Delete should fail")

		assert.NoError(t, store.Delete(ctx, name), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		n1 := name + "-1"
		n2 := name + "-2"
		_ = store.Save(ctx, n1, sample)
		_ = store.Save(ctx, n2, sample)
		defer func() {
			_ = store.Delete(ctx, n1)
			_ = store.Delete(ctx, n2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, n1)
		assert.Contains(t, names, n2)
	})
}
