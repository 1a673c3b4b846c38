package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv reads the deployment-parameter surface from the process
// environment. Unset variables leave the corresponding field zero so that
// file values and defaults can apply during Merge/Resolve.
func FromEnv() (Params, error) {
	p := Params{
		ModelID:      os.Getenv("MODEL_ID"),
		Tokenizer:    os.Getenv("TOKENIZER"),
		InstanceType: os.Getenv("INSTANCE_TYPE"),
		Host:         os.Getenv("API_HOST"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		LogFormat:    os.Getenv("LOG_FORMAT"),
		EngineURL:    os.Getenv("ENGINE_URL"),
		EngineBin:    os.Getenv("ENGINE_BIN"),
		ChatTemplate: os.Getenv("CHAT_TEMPLATE"),
	}
	if v := os.Getenv("API_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return Params{}, ConfigError{Param: "API_PORT", Value: v, Reason: "not a valid port"}
		}
		p.Port = n
	}
	p.ServedModelNames = splitList(os.Getenv("SERVED_MODEL_NAME"))
	if v := os.Getenv("ENGINE_ARGS"); v != "" {
		p.EngineArgs = strings.Fields(v)
	}
	return p, nil
}

// Merge fills unset fields of p from file-provided values. Environment and
// flags win over the file; the file wins over built-in defaults.
func Merge(p Params, file Config) Params {
	if p.ModelID == "" {
		p.ModelID = file.ModelID
	}
	if p.Tokenizer == "" {
		p.Tokenizer = file.Tokenizer
	}
	if p.InstanceType == "" {
		p.InstanceType = file.InstanceType
	}
	if p.Host == "" {
		p.Host = file.Host
	}
	if p.Port == 0 {
		p.Port = file.Port
	}
	if p.LogLevel == "" {
		p.LogLevel = file.LogLevel
	}
	if p.LogFormat == "" {
		p.LogFormat = file.LogFormat
	}
	if len(p.ServedModelNames) == 0 {
		p.ServedModelNames = append([]string(nil), file.ServedModelNames...)
	}
	if p.EngineURL == "" {
		p.EngineURL = file.EngineURL
	}
	if p.EngineBin == "" {
		p.EngineBin = file.EngineBin
	}
	if len(p.EngineArgs) == 0 {
		p.EngineArgs = append([]string(nil), file.EngineArgs...)
	}
	if p.ChatTemplate == "" {
		p.ChatTemplate = file.ChatTemplate
	}
	if len(p.CORSOrigins) == 0 {
		p.CORSOrigins = append([]string(nil), file.CORSOrigins...)
	}
	return p
}

// splitList splits a comma-separated list, trimming spaces and dropping
// empty entries. Returns nil for an empty input.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
