package engine

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultStartTimeout   = 30 * time.Second
	defaultConnectTimeout = 5 * time.Second
	defaultRuntimeHost    = "127.0.0.1"
)

// Config encapsulates everything needed to construct the engine handle.
// Built once during bootstrap from the resolved deployment settings and
// immutable afterwards.
type Config struct {
	// Model identity. In local (in-process) mode this is a model file path.
	ModelID   string
	Tokenizer string
	// Tensor-parallel degree derived from the hardware class.
	TensorParallel int
	// Names the model is served under; first entry is the default identity.
	ServedModelNames []string

	// Engine safety policy fixed by the deployment profile.
	TrustRemoteCode bool
	MaxModelLen     int
	ImagesPerPrompt int
	ChatTemplate    string

	// Runtime attachment. EngineURL attaches to a running runtime;
	// EngineBin spawns a supervised one; with neither set, builds carrying
	// the llama tag run the engine in-process.
	EngineURL   string
	EngineBin   string
	EngineArgs  []string
	RuntimeHost string
	// RuntimePort fixes the spawned runtime's port; 0 picks a free one.
	RuntimePort int

	// StartTimeout bounds runtime readiness waiting during construction.
	StartTimeout   time.Duration
	ConnectTimeout time.Duration

	// In-process engine knobs (llama builds only).
	LocalCtxSize int
	LocalThreads int

	Logger *zerolog.Logger
	Events EventPublisher
}

func (c Config) withDefaults() Config {
	if c.StartTimeout <= 0 {
		c.StartTimeout = defaultStartTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.RuntimeHost == "" {
		c.RuntimeHost = defaultRuntimeHost
	}
	if c.TensorParallel <= 0 {
		c.TensorParallel = 1
	}
	if len(c.ServedModelNames) == 0 {
		c.ServedModelNames = []string{c.ModelID}
	}
	if c.Events == nil {
		c.Events = noopPublisher{}
	}
	return c
}
