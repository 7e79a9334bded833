package domain

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultSystemPrompt seeds every new session.
const DefaultSystemPrompt = "You are an experienced BI interview coach. Ask follow-up questions, " +
	"evaluate reasoning, and give concise feedback."

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
