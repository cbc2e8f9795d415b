package inmemory

import (
	"context"

	"github.com/syncinema/server/internal/repository/room"
)

func (r *repo) SetMember(ctx context.Context, params *room.SetMemberParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member := room.Member{
		Username:  params.Username,
		Avatar:    params.Avatar,
		AvatarURL: params.AvatarURL,
		JoinedAt:  params.JoinedAt,
	}

	// last join wins, but a rejoin keeps its original position
	if _, ok := r.members[params.Username]; !ok {
		r.memberOrder = append(r.memberOrder, params.Username)
	}
	r.members[params.Username] = &member

	return nil
}

func (r *repo) RemoveMember(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[username]; !ok {
		return room.ErrMemberNotFound
	}

	delete(r.members, username)
	delete(r.typing, username)

	for i, name := range r.memberOrder {
		if name == username {
			r.memberOrder = append(r.memberOrder[:i], r.memberOrder[i+1:]...)
			break
		}
	}

	return nil
}

func (r *repo) UpdateMemberStatus(ctx context.Context, params *room.UpdateMemberStatusParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.members[params.Username]
	if !ok {
		return room.ErrMemberNotFound
	}

	member.IsWatching = params.IsWatching
	member.CurrentTime = params.CurrentTime

	return nil
}

func (r *repo) GetMember(ctx context.Context, username string) (room.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.members[username]
	if !ok {
		return room.Member{}, room.ErrMemberNotFound
	}

	return *member, nil
}

// GetMembers returns member snapshots in presence insertion order.
func (r *repo) GetMembers(ctx context.Context) []room.Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := make([]room.Member, 0, len(r.memberOrder))
	for _, username := range r.memberOrder {
		members = append(members, *r.members[username])
	}

	return members
}

func (r *repo) AddTyping(ctx context.Context, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.typing[username] = struct{}{}
}

// RemoveTyping reports whether the user was in the typing set.
func (r *repo) RemoveTyping(ctx context.Context, username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.typing[username]
	delete(r.typing, username)

	return ok
}

// GetTyping returns typing usernames in presence insertion order.
func (r *repo) GetTyping(ctx context.Context) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	typing := make([]string, 0, len(r.typing))
	for _, username := range r.memberOrder {
		if _, ok := r.typing[username]; ok {
			typing = append(typing, username)
		}
	}

	return typing
}
