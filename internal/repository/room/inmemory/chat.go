package inmemory

import (
	"context"
	"fmt"

	"github.com/syncinema/server/internal/repository/room"
)

// AppendMessage allocates the message id, stores the message with an empty
// reaction map and evicts the oldest message once the log exceeds its cap.
func (r *repo) AppendMessage(ctx context.Context, params *room.AppendMessageParams) room.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	message := room.Message{
		Id:        fmt.Sprintf("%d_%s_%d", r.messageSeq, params.Username, params.SentAt),
		Username:  params.Username,
		Avatar:    params.Avatar,
		AvatarURL: params.AvatarURL,
		Message:   params.Message,
		Timestamp: params.Timestamp,
		Reactions: make(map[string][]string),
		Spoiler:   params.Spoiler,
	}
	r.messageSeq++

	r.messages = append(r.messages, &message)
	r.messageIndex[message.Id] = &message

	if len(r.messages) > r.maxChatMessages {
		evicted := r.messages[0]
		r.messages = r.messages[1:]
		delete(r.messageIndex, evicted.Id)
	}

	snapshot := message
	snapshot.Reactions = copyReactions(message.Reactions)

	return snapshot
}

func (r *repo) GetMessages(ctx context.Context) []room.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages := make([]room.Message, 0, len(r.messages))
	for _, message := range r.messages {
		snapshot := *message
		snapshot.Reactions = copyReactions(message.Reactions)
		messages = append(messages, snapshot)
	}

	return messages
}

// ToggleMessageReaction flips the user's reaction on the message and returns
// the updated reaction map. An emoji with no reactors left is removed.
func (r *repo) ToggleMessageReaction(ctx context.Context, params *room.ToggleMessageReactionParams) (map[string][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messageIndex[params.MessageId]
	if !ok {
		return nil, room.ErrMessageNotFound
	}

	usernames := message.Reactions[params.Emoji]
	removed := false
	for i, username := range usernames {
		if username == params.Username {
			usernames = append(usernames[:i], usernames[i+1:]...)
			removed = true
			break
		}
	}

	switch {
	case removed && len(usernames) == 0:
		delete(message.Reactions, params.Emoji)
	case removed:
		message.Reactions[params.Emoji] = usernames
	default:
		message.Reactions[params.Emoji] = append(usernames, params.Username)
	}

	return copyReactions(message.Reactions), nil
}

func (r *repo) AppendReaction(ctx context.Context, params *room.AppendReactionParams) room.Reaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	reaction := room.Reaction{
		Username:  params.Username,
		Avatar:    params.Avatar,
		Emoji:     params.Emoji,
		Timestamp: params.Timestamp,
		VideoTime: params.VideoTime,
	}

	r.reactions = append(r.reactions, reaction)
	if len(r.reactions) > r.maxReactions {
		r.reactions = r.reactions[1:]
	}

	return reaction
}

func (r *repo) GetReactions(ctx context.Context) []room.Reaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]room.Reaction(nil), r.reactions...)
}
