package registry

import (
	"testing"
)

func TestNew_DefaultsToModelID(t *testing.T) {
	r := New("org/model", nil)
	if r.Default() != "org/model" { t.Fatalf("default=%s", r.Default()) }
	if got := r.Names(); len(got) != 1 || got[0] != "org/model" {
		t.Fatalf("names=%v", got)
	}
	if !r.Contains("org/model") { t.Fatalf("expected model id to be served") }
}

func TestNew_AliasesReplaceModelID(t *testing.T) {
	r := New("org/model", []string{"alias-a", "alias-b"})
	if r.Default() != "alias-a" { t.Fatalf("default=%s", r.Default()) }
	if !r.Contains("alias-b") { t.Fatalf("expected alias-b to be served") }
	if r.Contains("org/model") {
		t.Fatalf("raw id should not be served once aliases are declared")
	}
	if r.ModelID() != "org/model" { t.Fatalf("model id=%s", r.ModelID()) }
}

func TestList(t *testing.T) {
	r := New("m", []string{"a", "b"})
	l := r.List()
	if l.Object != "list" || len(l.Data) != 2 {
		t.Fatalf("unexpected list: %+v", l)
	}
	if l.Data[0].ID != "a" || l.Data[0].Object != "model" || l.Data[0].Created == 0 {
		t.Fatalf("unexpected entry: %+v", l.Data[0])
	}
}

func TestNames_Copies(t *testing.T) {
	r := New("m", []string{"a"})
	got := r.Names()
	got[0] = "mutated"
	if r.Default() != "a" { t.Fatalf("registry mutated through Names()") }
}
