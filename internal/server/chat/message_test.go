package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversation_StartsWithSystemPrompt(t *testing.T) {
	c := NewConversation()
	require.Len(t, c, 1)
	assert.Equal(t, RoleSystem, c[0].Role)
	assert.Equal(t, SystemPrompt, c[0].Content)
}

func TestNormalize(t *testing.T) {
	t.Run("nil conversation becomes fresh", func(t *testing.T) {
		c := Normalize(nil)
		require.Len(t, c, 1)
		assert.Equal(t, RoleSystem, c[0].Role)
	})

	t.Run("conversation without leading system prompt is replaced", func(t *testing.T) {
		c := Normalize(Conversation{{Role: RoleUser, Content: "hi"}})
		require.Len(t, c, 1)
		assert.Equal(t, RoleSystem, c[0].Role)
	})

	t.Run("well-formed conversation passes through", func(t *testing.T) {
		orig := NewConversation().Append(RoleUser, "hi")
		c := Normalize(orig)
		assert.Equal(t, orig, c)
	})
}

func TestAppend_PreservesSystemPrompt(t *testing.T) {
	c := NewConversation().
		Append(RoleUser, "hello").
		Append(RoleAssistant, "hi there").
		Append(RoleUser, "how are you")

	require.Len(t, c, 4)
	assert.Equal(t, RoleSystem, c[0].Role)

	// the system prompt never appears twice
	count := 0
	for _, m := range c {
		if m.Role == RoleSystem {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestMergeGuest_RealExchangeIsAppended(t *testing.T) {
	guest := NewConversation().
		Append(RoleUser, "guest question").
		Append(RoleAssistant, "guest answer")

	account := NewConversation()

	merged, ok := MergeGuest(account, guest)
	require.True(t, ok)
	require.Len(t, merged, 3)
	assert.Equal(t, RoleSystem, merged[0].Role)
	assert.Equal(t, guest[1:], merged[1:])
}

func TestMergeGuest_AppendsAfterExistingHistory(t *testing.T) {
	account := NewConversation().
		Append(RoleUser, "old question").
		Append(RoleAssistant, "old answer")
	guest := NewConversation().
		Append(RoleUser, "new question").
		Append(RoleAssistant, "new answer")

	merged, ok := MergeGuest(account, guest)
	require.True(t, ok)
	require.Len(t, merged, 5)
	assert.Equal(t, "old question", merged[1].Content)
	assert.Equal(t, "new question", merged[3].Content)
}

func TestMergeGuest_NoOpCases(t *testing.T) {
	account := NewConversation().Append(RoleUser, "x")

	t.Run("guest with only system prompt", func(t *testing.T) {
		merged, ok := MergeGuest(account, NewConversation())
		assert.False(t, ok)
		assert.Equal(t, account, merged)
	})

	t.Run("absent guest conversation", func(t *testing.T) {
		merged, ok := MergeGuest(account, nil)
		assert.False(t, ok)
		assert.Equal(t, account, merged)
	})
}

func TestClone_Independent(t *testing.T) {
	orig := NewConversation().Append(RoleUser, "hi")
	cp := orig.Clone()
	cp[1].Content = "changed"
	assert.Equal(t, "hi", orig[1].Content)
}
