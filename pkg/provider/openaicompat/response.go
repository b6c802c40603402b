package openaicompat

// ExtractContent reduces a ChatCompletionResponse to the answer text of
// choices[0]. A nil response, empty choices, a nil first choice, a nil
// message, or nil content all yield "".
func ExtractContent(resp *ChatCompletionResponse) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}

	choice := resp.Choices[0]
	if choice == nil || choice.Message == nil || choice.Message.Content == nil {
		return ""
	}
	return *choice.Message.Content
}

// Refusal returns the refusal text of choices[0], or "" when the model did
// not refuse.
func Refusal(resp *ChatCompletionResponse) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}

	choice := resp.Choices[0]
	if choice == nil || choice.Message == nil || choice.Message.Refusal == nil {
		return ""
	}
	return *choice.Message.Refusal
}

// FinishReason returns the finish_reason of choices[0], or "".
func FinishReason(resp *ChatCompletionResponse) string {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return ""
	}
	return resp.Choices[0].FinishReason
}
