package config

import (
	"sort"
	"strings"
)

// Defaults applied when the corresponding parameter is unset.
const (
	DefaultInstanceType = "ml.g6.4xlarge"
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 8000
	DefaultLogLevel     = "info"
)

// Engine safety policy fixed for this deployment profile. These are not
// caller-configurable: every resolved configuration carries them as-is.
const (
	TrustRemoteCode = true
	MaxModelLen     = 4049
	ImagesPerPrompt = 2
)

// gpusPerInstance maps a hardware class to its GPU count, which becomes the
// engine's tensor-parallel degree. Exact keys only; an unknown class is
// rejected during resolution, never defaulted.
var gpusPerInstance = map[string]int{
	"ml.g5.4xlarge":    1,
	"ml.g6.4xlarge":    1,
	"ml.g5.12xlarge":   4,
	"ml.g6.12xlarge":   4,
	"ml.g5.48xlarge":   8,
	"ml.g6.48xlarge":   8,
	"ml.p4d.24xlarge":  8,
	"ml.p4de.24xlarge": 8,
	"ml.p5.48xlarge":   8,
}

// GPUCount returns the GPU count for a supported hardware class.
func GPUCount(instanceType string) (int, error) {
	n, ok := gpusPerInstance[instanceType]
	if !ok {
		return 0, ConfigError{Param: "instance_type", Value: instanceType, Reason: "unsupported instance type"}
	}
	return n, nil
}

// SupportedInstanceTypes lists the known hardware classes, sorted.
func SupportedInstanceTypes() []string {
	out := make([]string, 0, len(gpusPerInstance))
	for k := range gpusPerInstance {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Params are the raw deployment parameters prior to resolution, merged from
// flags, environment and an optional config file.
type Params struct {
	ModelID          string
	Tokenizer        string
	InstanceType     string
	Host             string
	Port             int
	LogLevel         string
	LogFormat        string
	ServedModelNames []string
	EngineURL        string
	EngineBin        string
	EngineArgs       []string
	ChatTemplate     string
	CORSOrigins      []string
}

// Settings is the validated deployment configuration produced by Resolve.
// It is immutable after engine construction.
type Settings struct {
	ModelID           string
	Tokenizer         string
	InstanceType      string
	ParallelismDegree int
	Host              string
	Port              int
	LogLevel          string
	LogFormat         string
	// Names the model is served under: declared aliases, else the model id.
	ServedModelNames []string
	TrustRemoteCode  bool
	MaxModelLen      int
	ImagesPerPrompt  int
	EngineURL        string
	EngineBin        string
	EngineArgs       []string
	ChatTemplate     string
	CORSOrigins      []string
}

// Resolve validates deployment parameters and produces the engine-facing
// configuration. Pure and deterministic: no I/O, no environment reads.
func Resolve(p Params) (Settings, error) {
	if strings.TrimSpace(p.ModelID) == "" {
		return Settings{}, ConfigError{Param: "model_id", Reason: "a model identifier is required (set MODEL_ID)"}
	}
	instanceType := p.InstanceType
	if instanceType == "" {
		instanceType = DefaultInstanceType
	}
	degree, err := GPUCount(instanceType)
	if err != nil {
		return Settings{}, err
	}
	s := Settings{
		ModelID:           p.ModelID,
		Tokenizer:         p.Tokenizer,
		InstanceType:      instanceType,
		ParallelismDegree: degree,
		Host:              p.Host,
		Port:              p.Port,
		LogLevel:          p.LogLevel,
		LogFormat:         p.LogFormat,
		TrustRemoteCode:   TrustRemoteCode,
		MaxModelLen:       MaxModelLen,
		ImagesPerPrompt:   ImagesPerPrompt,
		EngineURL:         p.EngineURL,
		EngineBin:         p.EngineBin,
		EngineArgs:        append([]string(nil), p.EngineArgs...),
		ChatTemplate:      p.ChatTemplate,
		CORSOrigins:       append([]string(nil), p.CORSOrigins...),
	}
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if len(p.ServedModelNames) > 0 {
		s.ServedModelNames = append([]string(nil), p.ServedModelNames...)
	} else {
		s.ServedModelNames = []string{p.ModelID}
	}
	return s, nil
}
