package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionKey := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewConversationState(sessionKey, "contract@example.com")
		state.AppendUser("I need a laptop")
		state.AppendAssistant("Here are the available configurations")
		require.NoError(t, state.Pending.SetAssetType("laptop"))
		require.NoError(t, state.SetStage(domain.StageAwaitingConfiguration))

		err := store.Save(ctx, sessionKey, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionKey)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StageAwaitingConfiguration, loaded.Stage())
		assert.Equal(t, state.History, loaded.History, "history order must be preserved")
		assert.Equal(t, state.Pending, loaded.Pending)
		assert.Equal(t, "contract@example.com", loaded.Identity)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionKey)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Saved Copy Is Isolated", func(t *testing.T) {
		state := domain.NewConversationState(sessionKey, "")
		require.NoError(t, store.Save(ctx, sessionKey, state))

		state.AppendUser("mutated after save")

		loaded, err := store.Load(ctx, sessionKey)
		require.NoError(t, err)
		assert.Empty(t, loaded.History)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionKey, domain.NewConversationState(sessionKey, ""))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionKey)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionKey)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionKey + "-1"
		id2 := sessionKey + "-2"
		_ = store.Save(ctx, id1, domain.NewConversationState(id1, ""))
		_ = store.Save(ctx, id2, domain.NewConversationState(id2, ""))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
