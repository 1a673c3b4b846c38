package types

import "encoding/json"

// ChatMessage is a single conversation turn. Content is kept raw so that
// plain-string and multimodal part-list payloads both pass through to the
// engine unchanged.
type ChatMessage struct {
	// Author role: system, user, assistant or tool.
	// example: user
	Role string `json:"role" example:"user"`
	// Message content: either a JSON string or an array of content parts.
	Content json.RawMessage `json:"content"`
	// Optional participant name.
	Name string `json:"name,omitempty"`
}

// ChatCompletionRequest is the payload accepted by POST /invocations.
// Optional sampling fields are pointers so that absent and zero-valued
// parameters stay distinguishable when the request is forwarded.
type ChatCompletionRequest struct {
	// Model to serve the request with. If empty, the served default is used.
	// example: meta-llama/Meta-Llama-3-8B-Instruct
	Model string `json:"model,omitempty" example:"meta-llama/Meta-Llama-3-8B-Instruct"`
	// Conversation turns, oldest first. At least one is required.
	Messages []ChatMessage `json:"messages"`
	// Maximum number of tokens to generate.
	// example: 256
	MaxTokens *int `json:"max_tokens,omitempty" example:"256"`
	// Sampling temperature (higher = more random).
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP *float64 `json:"top_p,omitempty" example:"0.9"`
	// Number of choices to generate.
	// example: 1
	N *int `json:"n,omitempty" example:"1"`
	// Stop sequences. Generation halts when any sequence is produced.
	Stop []string `json:"stop,omitempty"`
	// If true, the response is delivered as a server-sent event stream.
	// example: true
	Stream bool `json:"stream,omitempty" example:"true"`
	// Streaming extras, e.g. a trailing usage chunk.
	StreamOptions *StreamOptions `json:"stream_options,omitempty"`
	// Random seed for reproducible sampling.
	// example: 42
	Seed *int64 `json:"seed,omitempty" example:"42"`
	// Presence penalty in [-2, 2].
	PresencePenalty *float64 `json:"presence_penalty,omitempty"`
	// Frequency penalty in [-2, 2].
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	// Opaque end-user identifier, forwarded to the engine.
	User string `json:"user,omitempty"`
}

// StreamOptions tunes streamed delivery.
type StreamOptions struct {
	// Emit a final chunk carrying token usage before the stream terminator.
	// example: true
	IncludeUsage bool `json:"include_usage,omitempty" example:"true"`
}

// Usage reports token accounting for a completed request.
type Usage struct {
	// Tokens consumed by the prompt.
	// example: 21
	PromptTokens int `json:"prompt_tokens" example:"21"`
	// Tokens generated for the completion.
	// example: 96
	CompletionTokens int `json:"completion_tokens" example:"96"`
	// Prompt plus completion tokens.
	// example: 117
	TotalTokens int `json:"total_tokens" example:"117"`
}

// ChatChoice is one generated alternative in a buffered response.
type ChatChoice struct {
	Index int `json:"index"`
	// Generated assistant message.
	Message ChatMessage `json:"message"`
	// Why generation stopped: stop, length, tool_calls or content_filter.
	// example: stop
	FinishReason *string `json:"finish_reason" example:"stop"`
}

// ChatCompletionResponse is the buffered (non-streaming) completion body.
type ChatCompletionResponse struct {
	// Unique completion identifier.
	// example: chatcmpl-7f1a
	ID string `json:"id" example:"chatcmpl-7f1a"`
	// Constant "chat.completion".
	// example: chat.completion
	Object string `json:"object" example:"chat.completion"`
	// Creation time in unix seconds.
	// example: 1700000000
	Created int64 `json:"created" example:"1700000000"`
	// Model that produced the completion.
	// example: meta-llama/Meta-Llama-3-8B-Instruct
	Model   string       `json:"model" example:"meta-llama/Meta-Llama-3-8B-Instruct"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// ChatDelta carries the incremental fields of one streamed choice.
type ChatDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChunkChoice is one alternative inside a streamed chunk.
type ChunkChoice struct {
	Index int       `json:"index"`
	Delta ChatDelta `json:"delta"`
	// Set on the final content chunk of this choice.
	FinishReason *string `json:"finish_reason"`
}

// ChatCompletionChunk is a single streamed completion fragment.
type ChatCompletionChunk struct {
	ID string `json:"id"`
	// Constant "chat.completion.chunk".
	// example: chat.completion.chunk
	Object  string        `json:"object" example:"chat.completion.chunk"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: Invalid request format
	Error string `json:"error" example:"Invalid request format"`
	// Optional human-readable detail on what was rejected.
	// example: messages: required
	Details string `json:"details,omitempty" example:"messages: required"`
}
