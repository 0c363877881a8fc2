package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type TraderProfile struct {
	Profile    string   `json:"profile" validate:"required"`
	Strategy   string   `json:"strategy" validate:"required"`
	Experience string   `json:"experience" validate:"required"`
	Timeframe  string   `json:"timeframe" validate:"required"`
	Asset      []string `json:"asset" validate:"required,min=1,dive,required"`
	Risk       string   `json:"risk" validate:"required"`
}

type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
