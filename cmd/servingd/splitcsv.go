package main

import "strings"

// splitCSV splits a comma-separated flag value, trimming spaces and dropping
// empty entries. Returns nil for an empty input.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
