package room

type SetMemberParams struct {
	Username  string
	Avatar    string
	AvatarURL *string
	JoinedAt  string
}

type UpdateMemberStatusParams struct {
	Username    string
	IsWatching  bool
	CurrentTime float64
}

type AppendMessageParams struct {
	Username  string
	Avatar    string
	AvatarURL *string
	Message   string
	Timestamp string
	SentAt    int64
	Spoiler   bool
}

type AppendReactionParams struct {
	Username  string
	Avatar    string
	Emoji     string
	Timestamp string
	VideoTime float64
}

type ToggleMessageReactionParams struct {
	MessageId string
	Emoji     string
	Username  string
}

type UpdatePlayerStateParams struct {
	IsPlaying   bool
	CurrentTime float64
}
