package room

import (
	"context"
	"time"

	"github.com/syncinema/server/internal/repository/room"
)

const timestampLayout = "15:04:05"

func (s service) getUsersUpdate(ctx context.Context) UsersUpdate {
	members := s.roomRepo.GetMembers(ctx)

	users := make([]string, 0, len(members))
	details := make(map[string]UserDetail, len(members))
	for _, member := range members {
		users = append(users, member.Username)
		details[member.Username] = UserDetail{
			Avatar:      member.Avatar,
			AvatarURL:   member.AvatarURL,
			JoinedAt:    member.JoinedAt,
			IsWatching:  member.IsWatching,
			CurrentTime: member.CurrentTime,
		}
	}

	return UsersUpdate{
		Users:       users,
		Count:       len(users),
		UserDetails: details,
		TypingUsers: s.roomRepo.GetTyping(ctx),
	}
}

func (s service) getPlayer(ctx context.Context) Player {
	player := s.roomRepo.GetPlayer(ctx)

	return Player{
		IsPlaying:    player.IsPlaying,
		CurrentTime:  player.CurrentTime,
		CurrentMovie: player.CurrentMovie,
	}
}

func toMessage(message room.Message) Message {
	return Message{
		Id:        message.Id,
		Username:  message.Username,
		Avatar:    message.Avatar,
		AvatarURL: message.AvatarURL,
		Message:   message.Message,
		Timestamp: message.Timestamp,
		Reactions: message.Reactions,
		Spoiler:   message.Spoiler,
	}
}

func timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
