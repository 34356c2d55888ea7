package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-companion-api/internal/domain/entity"
)

func TestStoreSessionsIsolatedByKey(t *testing.T) {
	store := NewStore()

	keyCh1 := SessionKey{BookID: "dracula_data", Chapter: 1}
	keyCh2 := SessionKey{BookID: "dracula_data", Chapter: 2}
	keyOther := SessionKey{BookID: "frankenstein_data", Chapter: 1}

	store.AppendUserTurn(keyCh1, "who is Jonathan?")
	store.AppendUserTurn(keyCh2, "what castle is this?")
	store.AppendUserTurn(keyOther, "who is the narrator?")

	require.Len(t, store.History(keyCh1), 1)
	require.Len(t, store.History(keyCh2), 1)
	require.Len(t, store.History(keyOther), 1)
	assert.Equal(t, "who is Jonathan?", store.History(keyCh1)[0].Content)
	assert.Equal(t, "what castle is this?", store.History(keyCh2)[0].Content)
	assert.Equal(t, 3, store.Len())
}

func TestStoreAppendOrdering(t *testing.T) {
	store := NewStore()
	key := SessionKey{BookID: "dracula_data", Chapter: 0}

	store.AppendUserTurn(key, "q1")
	store.AppendAssistantTurn(key, "a1")
	store.AppendUserTurn(key, "q2")
	store.AppendAssistantTurn(key, "a2")

	turns := store.History(key)
	require.Len(t, turns, 4)
	assert.Equal(t, entity.RoleUser, turns[0].Role)
	assert.Equal(t, entity.RoleAssistant, turns[1].Role)
	assert.Equal(t, "q2", turns[2].Content)
	assert.Equal(t, "a2", turns[3].Content)
}

func TestStoreConcurrentAppendsSameKey(t *testing.T) {
	store := NewStore()
	key := SessionKey{BookID: "dracula_data", Chapter: 3}

	const writers = 8
	const perWriter = 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				store.AppendUserTurn(key, fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, store.History(key), writers*perWriter)
	assert.Equal(t, 1, store.Len())
}

func TestStoreHistorySnapshotIsCopy(t *testing.T) {
	store := NewStore()
	key := SessionKey{BookID: "dracula_data", Chapter: 0}
	store.AppendUserTurn(key, "original")

	turns := store.History(key)
	turns[0].Content = "mutated"

	assert.Equal(t, "original", store.History(key)[0].Content)
}

func TestStoreReset(t *testing.T) {
	store := NewStore()
	key := SessionKey{BookID: "dracula_data", Chapter: 5}
	other := SessionKey{BookID: "dracula_data", Chapter: 6}

	store.AppendUserTurn(key, "q")
	store.AppendAssistantTurn(key, "a")
	store.AppendUserTurn(other, "untouched")

	store.Reset(key)

	assert.Empty(t, store.History(key))
	assert.Len(t, store.History(other), 1)
	assert.Equal(t, 1, store.Len())

	// 重置后的会话从空历史重新开始
	store.AppendUserTurn(key, "fresh start")
	require.Len(t, store.History(key), 1)
	assert.Equal(t, "fresh start", store.History(key)[0].Content)
}

func TestStoreResetAbsentIsNoop(t *testing.T) {
	store := NewStore()
	store.Reset(SessionKey{BookID: "never_data", Chapter: 9})
	assert.Equal(t, 0, store.Len())
}

func TestStoreHistoryAbsentKey(t *testing.T) {
	store := NewStore()
	assert.Empty(t, store.History(SessionKey{BookID: "x_data", Chapter: 0}))
	// 查询不应创建会话
	assert.Equal(t, 0, store.Len())
}
