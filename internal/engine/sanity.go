package engine

import (
	"fmt"
	"net/url"

	"servingd/internal/common/fsutil"
)

// SanityCheckResult is one preflight probe outcome.
type SanityCheckResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// SanityReport aggregates preflight probes for a configuration. It answers
// "could this configuration plausibly start" without starting anything.
type SanityReport struct {
	Mode   string              `json:"mode"`
	OK     bool                `json:"ok"`
	Checks []SanityCheckResult `json:"checks"`
}

func (r *SanityReport) add(name string, ok bool, detail string) {
	r.Checks = append(r.Checks, SanityCheckResult{Name: name, OK: ok, Detail: detail})
	if !ok {
		r.OK = false
	}
}

// SanityCheck inspects a configuration without side effects: no process is
// spawned and no connection is made. It mirrors the mode selection in New.
func SanityCheck(cfg Config) SanityReport {
	cfg = cfg.withDefaults()
	rep := SanityReport{OK: true}

	rep.add("model_id", cfg.ModelID != "", "model id must be set")
	rep.add("tensor_parallel", cfg.TensorParallel >= 1,
		fmt.Sprintf("degree %d", cfg.TensorParallel))

	switch {
	case cfg.EngineURL != "":
		rep.Mode = ModeAttach
		u, err := url.Parse(cfg.EngineURL)
		ok := err == nil && u.Scheme != "" && u.Host != ""
		detail := cfg.EngineURL
		if err != nil {
			detail = err.Error()
		}
		rep.add("engine_url", ok, detail)
	case cfg.EngineBin != "":
		rep.Mode = ModeSpawn
		bin, err := fsutil.ExpandHome(cfg.EngineBin)
		if err != nil {
			rep.add("engine_bin", false, err.Error())
		} else {
			rep.add("engine_bin", fsutil.PathExists(bin), bin)
		}
	default:
		rep.Mode = ModeLocal
		rep.add("local_engine", llamaBuilt, "requires the llama build tag")
		if llamaBuilt {
			model, err := fsutil.ExpandHome(cfg.ModelID)
			if err != nil {
				rep.add("model_path", false, err.Error())
			} else {
				rep.add("model_path", fsutil.PathExists(model), model)
			}
		}
	}

	if cfg.ChatTemplate != "" {
		tpl, err := fsutil.ExpandHome(cfg.ChatTemplate)
		if err != nil {
			rep.add("chat_template", false, err.Error())
		} else {
			rep.add("chat_template", fsutil.PathExists(tpl), tpl)
		}
	}
	return rep
}
