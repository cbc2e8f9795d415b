package room

type UserDetail struct {
	Avatar      string  `json:"avatar"`
	AvatarURL   *string `json:"avatar_url"`
	JoinedAt    string  `json:"joined_at"`
	IsWatching  bool    `json:"is_watching"`
	CurrentTime float64 `json:"current_time"`
}

// UsersUpdate is the wire payload of the users_update event.
type UsersUpdate struct {
	Users       []string              `json:"users"`
	Count       int                   `json:"count"`
	UserDetails map[string]UserDetail `json:"user_details"`
	TypingUsers []string              `json:"typing_users"`
}

type Player struct {
	IsPlaying    bool    `json:"is_playing"`
	CurrentTime  float64 `json:"current_time"`
	CurrentMovie *string `json:"current_movie"`
}

type Message struct {
	Id        string              `json:"id"`
	Username  string              `json:"username"`
	Avatar    string              `json:"avatar"`
	AvatarURL *string             `json:"avatar_url"`
	Message   string              `json:"message"`
	Timestamp string              `json:"timestamp"`
	Reactions map[string][]string `json:"reactions"`
	Spoiler   bool                `json:"spoiler"`
}

type Reaction struct {
	Username  string  `json:"username"`
	Avatar    string  `json:"avatar"`
	Emoji     string  `json:"emoji"`
	Timestamp string  `json:"timestamp"`
	VideoTime float64 `json:"video_time"`
}
