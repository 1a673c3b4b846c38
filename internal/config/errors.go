package config

import "strconv"

// ConfigError reports a missing or invalid deployment parameter. It is fatal
// during bootstrap and is never surfaced as an HTTP response.
type ConfigError struct {
	Param  string
	Value  string
	Reason string
}

func (e ConfigError) Error() string {
	if e.Value == "" {
		return "config: " + e.Param + ": " + e.Reason
	}
	return "config: " + e.Param + "=" + strconv.Quote(e.Value) + ": " + e.Reason
}

// IsConfigError reports whether err is a deployment-parameter error.
func IsConfigError(err error) bool {
	_, ok := err.(ConfigError)
	return ok
}
