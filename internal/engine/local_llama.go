//go:build llama

package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	llama "github.com/go-skynet/go-llama.cpp"

	"servingd/internal/common/fsutil"
	"servingd/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

const localDefaultMaxTokens = 256

// localBackend runs the model in process through llama.cpp bindings. The
// loaded model is not safe for concurrent prediction, so generation is
// serialized behind a mutex.
type localBackend struct {
	mu      sync.Mutex
	model   *llama.LLama
	modelID string
	served  map[string]struct{}
	threads int
}

func newLocalBackend(cfg Config) (Backend, error) {
	path, err := fsutil.ExpandHome(cfg.ModelID)
	if err != nil {
		return nil, err
	}
	ctxSize := cfg.LocalCtxSize
	if ctxSize <= 0 {
		ctxSize = cfg.MaxModelLen
	}
	m, err := llama.New(path, llama.SetContext(ctxSize))
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	served := make(map[string]struct{}, len(cfg.ServedModelNames))
	for _, n := range cfg.ServedModelNames {
		served[n] = struct{}{}
	}
	return &localBackend{
		model:   m,
		modelID: cfg.ModelID,
		served:  served,
		threads: cfg.LocalThreads,
	}, nil
}

func (b *localBackend) ChatCompletion(ctx context.Context, payload []byte) (*Result, error) {
	var req types.ChatCompletionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return domainErrorResult(http.StatusBadRequest, "BadRequestError", err.Error()), nil
	}
	if req.Model != "" {
		if _, ok := b.served[req.Model]; !ok {
			return domainErrorResult(http.StatusNotFound, "NotFoundError",
				fmt.Sprintf("The model `%s` does not exist.", req.Model)), nil
		}
	}
	prompt, err := flattenMessages(req.Messages)
	if err != nil {
		return domainErrorResult(http.StatusBadRequest, "BadRequestError", err.Error()), nil
	}

	opts := predictOptions(req, b.threads)
	id := completionID()
	created := time.Now().Unix()
	model := req.Model
	if model == "" {
		model = b.modelID
	}

	if req.Stream {
		return &Result{Stream: b.streamPredict(ctx, prompt, opts, id, created, model)}, nil
	}

	b.mu.Lock()
	text, err := b.predict(ctx, prompt, opts, nil)
	b.mu.Unlock()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	stop := "stop"
	resp := types.ChatCompletionResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: created,
		Model:   model,
		Choices: []types.ChatChoice{{
			Index:        0,
			Message:      types.ChatMessage{Role: "assistant", Content: json.RawMessage(mustJSONString(text))},
			FinishReason: &stop,
		}},
	}
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return &Result{Response: body}, nil
}

// streamPredict runs generation in a goroutine and frames each token as a
// chat.completion.chunk event on a pipe, closing with the done sentinel.
func (b *localBackend) streamPredict(ctx context.Context, prompt string, opts []llama.PredictOption, id string, created int64, model string) *Stream {
	pr, pw := io.Pipe()
	go func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		writeChunk := func(delta types.ChatDelta, finish *string) error {
			chunk := types.ChatCompletionChunk{
				ID:      id,
				Object:  "chat.completion.chunk",
				Created: created,
				Model:   model,
				Choices: []types.ChunkChoice{{Index: 0, Delta: delta, FinishReason: finish}},
			}
			frame, err := json.Marshal(chunk)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(pw, "data: %s\n\n", frame)
			return err
		}

		if err := writeChunk(types.ChatDelta{Role: "assistant"}, nil); err != nil {
			pw.CloseWithError(err)
			return
		}
		_, err := b.predict(ctx, prompt, opts, func(tok string) error {
			return writeChunk(types.ChatDelta{Content: tok}, nil)
		})
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		stop := "stop"
		if err := writeChunk(types.ChatDelta{}, &stop); err != nil {
			pw.CloseWithError(err)
			return
		}
		fmt.Fprint(pw, "data: [DONE]\n\n")
		pw.Close()
	}()
	return NewStream(pr)
}

// predict runs one generation under the caller-held lock. onToken, when
// non-nil, receives tokens as they are produced; returning an error stops
// generation.
func (b *localBackend) predict(ctx context.Context, prompt string, opts []llama.PredictOption, onToken func(string) error) (string, error) {
	b.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if onToken != nil {
			if err := onToken(tok); err != nil {
				return false
			}
		}
		return true
	})
	text, err := b.model.Predict(prompt, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return text, nil
}

func (b *localBackend) Healthy(ctx context.Context) bool { return b.model != nil }

func (b *localBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.model != nil {
		b.model.Free()
		b.model = nil
	}
	return nil
}

// flattenMessages renders a chat transcript as a single prompt. Only plain
// string content is supported in process; structured content parts need a
// multimodal runtime.
func flattenMessages(msgs []types.ChatMessage) (string, error) {
	var sb strings.Builder
	for _, m := range msgs {
		var text string
		if err := json.Unmarshal(m.Content, &text); err != nil {
			return "", fmt.Errorf("message content for role %q must be a string", m.Role)
		}
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	sb.WriteString("assistant: ")
	return sb.String(), nil
}

func predictOptions(req types.ChatCompletionRequest, threads int) []llama.PredictOption {
	tokens := localDefaultMaxTokens
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		tokens = *req.MaxTokens
	}
	if threads < 1 {
		threads = 1
	}
	po := []llama.PredictOption{
		llama.SetTokens(tokens),
		llama.SetThreads(threads),
	}
	if req.Temperature != nil {
		po = append(po, llama.SetTemperature(float32(*req.Temperature)))
	}
	if req.TopP != nil {
		po = append(po, llama.SetTopP(float32(*req.TopP)))
	}
	if req.Seed != nil {
		po = append(po, llama.SetSeed(int(*req.Seed)))
	}
	if len(req.Stop) > 0 {
		po = append(po, llama.SetStopWords(req.Stop...))
	}
	return po
}

// domainErrorResult shapes a refusal the way an OpenAI-compatible runtime
// would, so callers cannot tell local refusals from remote ones.
func domainErrorResult(status int, errType, message string) *Result {
	body, _ := json.Marshal(map[string]any{
		"object":  "error",
		"message": message,
		"type":    errType,
		"param":   nil,
		"code":    status,
	})
	return &Result{Err: &DomainError{Status: status, Body: body}}
}

func completionID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("chatcmpl-%d", time.Now().UnixNano())
	}
	return "chatcmpl-" + hex.EncodeToString(b[:])
}

func mustJSONString(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}
