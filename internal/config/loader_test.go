package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "host: 127.0.0.1\nport: 9999\nmodel_id: m1\ninstance_type: ml.g5.12xlarge\nserved_model_names: [a, b]\n")
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Host != "127.0.0.1" || cfg.Port != 9999 || cfg.ModelID != "m1" || cfg.InstanceType != "ml.g5.12xlarge" || len(cfg.ServedModelNames) != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"host":"0.0.0.0","port":7070,"model_id":"m2","engine_url":"http://127.0.0.1:9000","log_level":"debug"}`)
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Host != "0.0.0.0" || cfg.Port != 7070 || cfg.ModelID != "m2" || cfg.EngineURL != "http://127.0.0.1:9000" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "host=\"::\"\nport=8081\nmodel_id=\"m3\"\nengine_bin=\"/usr/bin/engine\"\nengine_args=[\"--foo\",\"1\"]\n")
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Host != "::" || cfg.Port != 8081 || cfg.ModelID != "m3" || cfg.EngineBin != "/usr/bin/engine" || len(cfg.EngineArgs) != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil { t.Fatalf("expected error on empty path") }
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil { t.Fatalf("expected unsupported extension error") }
}
