package types

// Model is one entry of the served-model listing.
type Model struct {
	// Identifier callers may put in a request's "model" field.
	// example: meta-llama/Meta-Llama-3-8B-Instruct
	ID string `json:"id" example:"meta-llama/Meta-Llama-3-8B-Instruct"`
	// Constant "model".
	// example: model
	Object string `json:"object" example:"model"`
	// Registration time in unix seconds.
	// example: 1700000000
	Created int64 `json:"created" example:"1700000000"`
	// Owning organization reported for the deployment.
	// example: servingd
	OwnedBy string `json:"owned_by" example:"servingd"`
}

// ModelList wraps the served models returned by GET /models.
type ModelList struct {
	// Constant "list".
	// example: list
	Object string `json:"object" example:"list"`
	// Served models, default identity first.
	Data []Model `json:"data"`
}

// RuntimeStatus describes the engine runtime attachment for /status.
type RuntimeStatus struct {
	// Runtime mode: attach, spawn or local.
	// example: spawn
	Mode string `json:"mode" example:"spawn"`
	// Base URL the engine is reached at.
	// example: http://127.0.0.1:30001
	URL string `json:"url,omitempty" example:"http://127.0.0.1:30001"`
	// Process ID of the supervised runtime (spawn mode only).
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// TCP port of the supervised runtime (spawn mode only).
	// example: 30001
	Port int `json:"port,omitempty" example:"30001"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Engine state (e.g. starting, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Model identity the engine was constructed with.
	// example: meta-llama/Meta-Llama-3-8B-Instruct
	ModelID string `json:"model_id" example:"meta-llama/Meta-Llama-3-8B-Instruct"`
	// Names the model is served under.
	ServedModels []string `json:"served_models"`
	// Tensor-parallel degree resolved from the hardware class.
	// example: 4
	ParallelismDegree int `json:"parallelism_degree" example:"4"`
	// Runtime attachment details.
	Runtime RuntimeStatus `json:"runtime"`
	// Completed invocations since start.
	// example: 128
	RequestsTotal uint64 `json:"requests_total" example:"128"`
	// Completed streamed invocations since start.
	// example: 64
	StreamsTotal uint64 `json:"streams_total" example:"64"`
	// Last engine error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
