// Package mockbackend serves a deterministic Chat Completions API for
// exercising HTTP providers without network access. Responses are derived
// from the request content:
//
//   - a system message carrying a JSON object form such as
//     {"Name": string, "Age": integer} yields a fenced JSON object with
//     sample values for every field
//   - a user message containing "fail:<status>" yields that HTTP status
//     with an OpenAI-style error body
//   - anything else yields "Mock answer to: <user text>"
package mockbackend

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rhuss/promptly/pkg/provider/openaicompat"
)

// Path is the chat-completions route served by Handler.
const Path = "/v1/chat/completions"

// DefaultModel is reported when the request names no model.
const DefaultModel = "mock-model"

// AnswerPrefix starts every plain text answer.
const AnswerPrefix = "Mock answer to: "

// Sample values used for structured answers.
const (
	SampleStringPrefix = "Mock "
	SampleInt          = 7
	SampleFloat        = 1.5
	SampleBool         = true
)

var (
	schemaField   = regexp.MustCompile(`"([^"]+)": (string|integer|number|boolean)`)
	failDirective = regexp.MustCompile(`fail:(\d{3})`)
)

// Options configure the handler.
type Options struct {
	// APIKey, when set, is required as the bearer credential.
	APIKey string

	// Logger receives one debug entry per request. Nil discards logs.
	Logger *zap.Logger
}

type backend struct {
	opts   Options
	logger *zap.Logger
}

// Handler returns the mux serving Path and GET /healthz.
func Handler(opts Options) http.Handler {
	b := &backend{opts: opts, logger: opts.Logger}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+Path, b.handleChatCompletions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

func (b *backend) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if b.opts.APIKey != "" && r.Header.Get("Authorization") != "Bearer "+b.opts.APIKey {
		writeError(w, http.StatusUnauthorized, "invalid api key", "authentication_error")
		return
	}

	var req openaicompat.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request_error")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty", "invalid_request_error")
		return
	}

	system, user := lastContent(&req, "system"), lastContent(&req, "user")
	b.logger.Debug("mock chat completion", zap.String("model", req.Model), zap.Int("messages", len(req.Messages)))

	if m := failDirective.FindStringSubmatch(user); m != nil {
		status, _ := strconv.Atoi(m[1])
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		writeError(w, status, "simulated failure", "mock_error")
		return
	}

	var text string
	if fields := schemaField.FindAllStringSubmatch(system, -1); len(fields) > 0 {
		text = structuredAnswer(fields)
	} else {
		text = AnswerPrefix + user
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	writeJSON(w, http.StatusOK, makeTextResponse(model, text, promptTokens(&req)))
}

// structuredAnswer renders a fenced JSON object with a sample value per field.
func structuredAnswer(fields [][]string) string {
	obj := make(map[string]any, len(fields))
	for _, f := range fields {
		name, kind := f[1], f[2]
		switch kind {
		case "string":
			obj[name] = SampleStringPrefix + name
		case "integer":
			obj[name] = SampleInt
		case "number":
			obj[name] = SampleFloat
		case "boolean":
			obj[name] = SampleBool
		}
	}
	data, _ := json.Marshal(obj)
	return "```json\n" + string(data) + "\n```"
}

func makeTextResponse(model, text string, prompt int) *openaicompat.ChatCompletionResponse {
	completion := len(strings.Fields(text))
	return &openaicompat.ChatCompletionResponse{
		ID:     "chatcmpl-mock",
		Object: "chat.completion",
		Model:  model,
		Choices: []*openaicompat.ChatChoice{{
			Index:        0,
			Message:      &openaicompat.ChatResponseMessage{Role: "assistant", Content: &text},
			FinishReason: "stop",
		}},
		Usage: &openaicompat.ChatUsage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}
}

func lastContent(req *openaicompat.ChatCompletionRequest, role string) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == role {
			return req.Messages[i].Content
		}
	}
	return ""
}

// promptTokens approximates token usage by counting words.
func promptTokens(req *openaicompat.ChatCompletionRequest) int {
	n := 0
	for _, m := range req.Messages {
		n += len(strings.Fields(m.Content))
	}
	return n
}

func writeError(w http.ResponseWriter, status int, message, typ string) {
	var body openaicompat.ChatErrorResponse
	body.Error.Message = message
	body.Error.Type = typ
	writeJSON(w, status, &body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
