package servectl

import (
	"encoding/json"
	"fmt"
	"io"

	"servingd/internal/config"
	"servingd/internal/engine"
	"servingd/pkg/types"
)

// invokeOptions are the request knobs for the invoke subcommand.
type invokeOptions struct {
	Prompt      string
	System      string
	Model       string
	Stream      bool
	MaxTokens   int
	Temperature float64
	Raw         bool
}

func runPing(cfg *Config, w io.Writer) error {
	body, err := getBody(cfg, "/ping")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s is up: %s\n", cfg.Addr, string(body))
	return nil
}

func runModels(cfg *Config, w io.Writer) error {
	var list types.ModelList
	if err := getJSON(cfg, "/models", &list); err != nil {
		return err
	}
	for _, m := range list.Data {
		fmt.Fprintln(w, m.ID)
	}
	return nil
}

func runStatus(cfg *Config, w io.Writer) error {
	var st types.StatusResponse
	if err := getJSON(cfg, "/status", &st); err != nil {
		return err
	}
	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	return nil
}

func runResolve(instanceType string, w io.Writer) error {
	n, err := config.GPUCount(instanceType)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: tensor-parallel degree %d\n", instanceType, n)
	return nil
}

func runResolveList(w io.Writer) error {
	for _, it := range config.SupportedInstanceTypes() {
		n, err := config.GPUCount(it)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-18s %d\n", it, n)
	}
	return nil
}

// runSanity resolves the deployment parameters the same way the daemon does
// and prints the engine preflight report without starting anything.
func runSanity(configPath string, w io.Writer) error {
	params, err := config.FromEnv()
	if err != nil {
		return err
	}
	if configPath != "" {
		fileCfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		params = config.Merge(params, fileCfg)
	}
	settings, err := config.Resolve(params)
	if err != nil {
		return err
	}
	rep := engine.SanityCheck(engine.Config{
		ModelID:          settings.ModelID,
		Tokenizer:        settings.Tokenizer,
		TensorParallel:   settings.ParallelismDegree,
		ServedModelNames: settings.ServedModelNames,
		TrustRemoteCode:  settings.TrustRemoteCode,
		MaxModelLen:      settings.MaxModelLen,
		ImagesPerPrompt:  settings.ImagesPerPrompt,
		ChatTemplate:     settings.ChatTemplate,
		EngineURL:        settings.EngineURL,
		EngineBin:        settings.EngineBin,
		EngineArgs:       settings.EngineArgs,
	})
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	if !rep.OK {
		return fmt.Errorf("configuration would not start")
	}
	return nil
}

func runInvoke(cfg *Config, opts *invokeOptions, w io.Writer) error {
	req := types.ChatCompletionRequest{
		Model:  opts.Model,
		Stream: opts.Stream,
	}
	if opts.System != "" {
		req.Messages = append(req.Messages, types.ChatMessage{Role: "system", Content: jsonString(opts.System)})
	}
	req.Messages = append(req.Messages, types.ChatMessage{Role: "user", Content: jsonString(opts.Prompt)})
	if opts.MaxTokens > 0 {
		req.MaxTokens = &opts.MaxTokens
	}
	if opts.Temperature >= 0 {
		req.Temperature = &opts.Temperature
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := postInvocations(cfg, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("daemon answered %d: %s", resp.StatusCode, string(body))
	}

	if opts.Stream {
		return printStream(resp.Body, opts.Raw, w)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if opts.Raw {
		fmt.Fprintln(w, string(body))
		return nil
	}
	var completion types.ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil || len(completion.Choices) == 0 {
		fmt.Fprintln(w, string(body))
		return nil
	}
	for _, c := range completion.Choices {
		var text string
		if err := json.Unmarshal(c.Message.Content, &text); err != nil {
			text = string(c.Message.Content)
		}
		fmt.Fprintln(w, text)
	}
	return nil
}

// printStream relays event payloads as they arrive. In raw mode each payload
// is printed on its own line; otherwise only the content deltas are shown.
func printStream(body io.ReadCloser, raw bool, w io.Writer) error {
	s := engine.NewStream(body)
	defer s.Close()
	wroteDelta := false
	for {
		payload, err := s.Recv()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if string(payload) == "[DONE]" {
			break
		}
		if raw {
			fmt.Fprintln(w, string(payload))
			continue
		}
		var chunk types.ChatCompletionChunk
		if err := json.Unmarshal(payload, &chunk); err != nil {
			continue
		}
		for _, c := range chunk.Choices {
			if c.Delta.Content != "" {
				fmt.Fprint(w, c.Delta.Content)
				wroteDelta = true
			}
		}
	}
	if wroteDelta {
		fmt.Fprintln(w)
	}
	return nil
}

func jsonString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
