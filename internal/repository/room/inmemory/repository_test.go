package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncinema/server/internal/repository/room"
)

func newTestRepo() *repo {
	return NewRepo(&Config{
		MaxChatMessages: 100,
		MaxReactions:    50,
	})
}

func TestMembers(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{Username: "alice", Avatar: "a"}))
	require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{Username: "bob", Avatar: "b"}))

	members := r.GetMembers(ctx)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].Username)
	assert.Equal(t, "bob", members[1].Username)

	// rejoin replaces the entry but keeps its position
	require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{Username: "alice", Avatar: "a2"}))
	members = r.GetMembers(ctx)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].Username)
	assert.Equal(t, "a2", members[0].Avatar)
	assert.False(t, members[0].IsWatching, "rejoin must not keep prior watch state")

	require.NoError(t, r.RemoveMember(ctx, "alice"))
	assert.ErrorIs(t, r.RemoveMember(ctx, "alice"), room.ErrMemberNotFound)
	assert.Len(t, r.GetMembers(ctx), 1)
}

func TestUpdateMemberStatus(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	err := r.UpdateMemberStatus(ctx, &room.UpdateMemberStatusParams{Username: "ghost", IsWatching: true})
	assert.ErrorIs(t, err, room.ErrMemberNotFound)

	require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{Username: "alice"}))
	require.NoError(t, r.UpdateMemberStatus(ctx, &room.UpdateMemberStatusParams{
		Username:    "alice",
		IsWatching:  true,
		CurrentTime: 42.5,
	}))

	member, err := r.GetMember(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, member.IsWatching)
	assert.Equal(t, 42.5, member.CurrentTime)
}

func TestTyping(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{Username: "bob"}))
	require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{Username: "alice"}))

	r.AddTyping(ctx, "alice")
	r.AddTyping(ctx, "bob")
	assert.Equal(t, []string{"bob", "alice"}, r.GetTyping(ctx), "typing follows presence order")

	assert.True(t, r.RemoveTyping(ctx, "alice"))
	assert.False(t, r.RemoveTyping(ctx, "alice"))

	// removing a member clears their typing state
	require.NoError(t, r.RemoveMember(ctx, "bob"))
	assert.Empty(t, r.GetTyping(ctx))
}

func TestAppendMessageEviction(t *testing.T) {
	r := NewRepo(&Config{MaxChatMessages: 100, MaxReactions: 50})
	ctx := context.Background()

	var firstId string
	for i := 0; i < 101; i++ {
		msg := r.AppendMessage(ctx, &room.AppendMessageParams{
			Username: "alice",
			Message:  fmt.Sprintf("msg %d", i),
			SentAt:   int64(i),
		})
		if i == 0 {
			firstId = msg.Id
		}
	}

	messages := r.GetMessages(ctx)
	require.Len(t, messages, 100)
	assert.Equal(t, "msg 1", messages[0].Message, "oldest message evicted first")
	assert.Equal(t, "msg 100", messages[99].Message)

	// the evicted message's reaction index entry is gone with it
	_, err := r.ToggleMessageReaction(ctx, &room.ToggleMessageReactionParams{
		MessageId: firstId,
		Emoji:     "🔥",
		Username:  "alice",
	})
	assert.ErrorIs(t, err, room.ErrMessageNotFound)
}

func TestMessageIdsUnique(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		msg := r.AppendMessage(ctx, &room.AppendMessageParams{Username: "alice", SentAt: 1})
		_, dup := seen[msg.Id]
		assert.False(t, dup, "duplicate message id %s", msg.Id)
		seen[msg.Id] = struct{}{}
	}
}

func TestToggleMessageReaction(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	msg := r.AppendMessage(ctx, &room.AppendMessageParams{Username: "bob", Message: "hi"})

	params := &room.ToggleMessageReactionParams{MessageId: msg.Id, Emoji: "🔥", Username: "alice"}

	reactions, err := r.ToggleMessageReaction(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"🔥": {"alice"}}, reactions)

	// second toggle removes the reaction and drops the empty emoji key
	reactions, err = r.ToggleMessageReaction(ctx, params)
	require.NoError(t, err)
	assert.Empty(t, reactions)
	assert.NotContains(t, reactions, "🔥")

	// two reactors, one removes
	_, err = r.ToggleMessageReaction(ctx, params)
	require.NoError(t, err)
	_, err = r.ToggleMessageReaction(ctx, &room.ToggleMessageReactionParams{MessageId: msg.Id, Emoji: "🔥", Username: "bob"})
	require.NoError(t, err)
	reactions, err = r.ToggleMessageReaction(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"🔥": {"bob"}}, reactions)
}

func TestAppendReactionEviction(t *testing.T) {
	r := NewRepo(&Config{MaxChatMessages: 100, MaxReactions: 3})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r.AppendReaction(ctx, &room.AppendReactionParams{
			Username:  "alice",
			Emoji:     "😂",
			VideoTime: float64(i),
		})
	}

	reactions := r.GetReactions(ctx)
	require.Len(t, reactions, 3)
	assert.Equal(t, 2.0, reactions[0].VideoTime)
	assert.Equal(t, 4.0, reactions[2].VideoTime)
}

// Run with -race: every mutation and snapshot must hold the store mutex.
func TestConcurrentMutations(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	target := r.AppendMessage(ctx, &room.AppendMessageParams{Username: "alice", Message: "hi"})

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			username := fmt.Sprintf("user%d", n)
			assert.NoError(t, r.SetMember(ctx, &room.SetMemberParams{Username: username}))

			for j := 0; j < 50; j++ {
				r.AppendMessage(ctx, &room.AppendMessageParams{Username: username, SentAt: int64(j)})
				// the target may have been evicted by another worker
				r.ToggleMessageReaction(ctx, &room.ToggleMessageReactionParams{
					MessageId: target.Id,
					Emoji:     "🔥",
					Username:  username,
				})
				r.AddTyping(ctx, username)
				r.RemoveTyping(ctx, username)
				r.UpdatePlayerTime(ctx, float64(j))
				r.GetMessages(ctx)
				r.GetMembers(ctx)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.GetMessages(ctx), 100)
	assert.Len(t, r.GetMembers(ctx), workers)
	assert.Empty(t, r.GetTyping(ctx))
}

func TestPlayer(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	player := r.GetPlayer(ctx)
	assert.False(t, player.IsPlaying)
	assert.Nil(t, player.CurrentMovie)

	player = r.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{IsPlaying: true, CurrentTime: 10})
	assert.True(t, player.IsPlaying)
	assert.Equal(t, 10.0, player.CurrentTime)

	// seek only moves time
	player = r.UpdatePlayerTime(ctx, 42)
	assert.True(t, player.IsPlaying)
	assert.Equal(t, 42.0, player.CurrentTime)

	// negative times are clamped
	player = r.UpdatePlayerTime(ctx, -5)
	assert.Equal(t, 0.0, player.CurrentTime)

	movie := "b.mp4"
	player = r.UpdatePlayerMovie(ctx, &movie)
	require.NotNil(t, player.CurrentMovie)
	assert.Equal(t, "b.mp4", *player.CurrentMovie)
	assert.Equal(t, 0.0, player.CurrentTime)
	assert.False(t, player.IsPlaying)
}
