package openaicompat

import (
	"github.com/rhuss/promptly/pkg/api"
)

// Message roles used in requests.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// BuildRequest converts a Prompt into a ChatCompletionRequest. The messages
// are always the system message followed by the user message; empty texts
// are sent as empty strings rather than omitted.
func BuildRequest(model string, prompt *api.Prompt) ChatCompletionRequest {
	return ChatCompletionRequest{
		Model: model,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: prompt.System()},
			{Role: RoleUser, Content: prompt.User()},
		},
	}
}
