package room

type Member struct {
	Username    string  `json:"-"`
	Avatar      string  `json:"avatar"`
	AvatarURL   *string `json:"avatar_url"`
	JoinedAt    string  `json:"joined_at"`
	IsWatching  bool    `json:"is_watching"`
	CurrentTime float64 `json:"current_time"`
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
