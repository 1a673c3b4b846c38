package httpapi

import "testing"

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 25<<20 {
		t.Fatalf("expected default 25MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 25<<20 {
		t.Fatalf("expected default 25MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytes_PositiveSetsValue(t *testing.T) {
	defer SetMaxBodyBytes(0)
	SetMaxBodyBytes(1234)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetInvocationTimeoutSeconds_NormalizesNegativeToZero(t *testing.T) {
	SetInvocationTimeoutSeconds(-5)
	if invocationTimeout != 0 {
		t.Fatalf("expected 0, got %d", invocationTimeout)
	}
	SetInvocationTimeoutSeconds(3)
	if invocationTimeout != 3 {
		t.Fatalf("expected 3, got %d", invocationTimeout)
	}
	SetInvocationTimeoutSeconds(0)
}

func TestSetCORSOptions_CopiesSlices(t *testing.T) {
	origins := []string{"http://a"}
	SetCORSOptions(true, origins, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	origins[0] = "http://mutated"
	if corsAllowedOrigins[0] != "http://a" {
		t.Fatalf("expected defensive copy, got %v", corsAllowedOrigins)
	}
}
