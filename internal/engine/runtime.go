package engine

import (
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"servingd/internal/common/fsutil"
)

// process supervises one spawned engine runtime.
type process struct {
	cmd     *exec.Cmd
	baseURL string
	pid     int
	port    int
	stderr  *tailBuffer

	mu      sync.Mutex
	exitErr error
	doneCh  chan struct{}
}

// tailBuffer keeps the last max bytes written, for failure diagnostics
// without unbounded growth over the runtime's lifetime.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

// engineArgv assembles the runtime command line from the resolved
// configuration: model identity, parallelism and the deployment's fixed
// engine policy, followed by any operator-provided extra arguments.
func engineArgv(cfg Config, host string, port int) ([]string, error) {
	args := []string{
		cfg.ModelID,
		"--host", host,
		"--port", strconv.Itoa(port),
		"--tensor-parallel-size", strconv.Itoa(cfg.TensorParallel),
	}
	if cfg.Tokenizer != "" {
		args = append(args, "--tokenizer", cfg.Tokenizer)
	}
	if cfg.TrustRemoteCode {
		args = append(args, "--trust-remote-code")
	}
	if cfg.MaxModelLen > 0 {
		args = append(args, "--max-model-len", strconv.Itoa(cfg.MaxModelLen))
	}
	if cfg.ImagesPerPrompt > 0 {
		args = append(args, "--limit-mm-per-prompt", fmt.Sprintf("image=%d", cfg.ImagesPerPrompt))
	}
	if len(cfg.ServedModelNames) > 0 {
		args = append(args, "--served-model-name")
		args = append(args, cfg.ServedModelNames...)
	}
	if cfg.ChatTemplate != "" {
		tpl, err := fsutil.ExpandHome(cfg.ChatTemplate)
		if err != nil {
			return nil, fmt.Errorf("chat template path: %w", err)
		}
		args = append(args, "--chat-template", tpl)
	}
	args = append(args, cfg.EngineArgs...)
	return args, nil
}

// startProcess spawns the engine runtime and returns once the process is
// running. Readiness is waited on separately by the handle.
func startProcess(cfg Config, log zerolog.Logger, pub EventPublisher) (*process, error) {
	host := cfg.RuntimeHost
	port := cfg.RuntimePort
	if port <= 0 {
		var err error
		port, err = pickFreePort(host)
		if err != nil {
			return nil, err
		}
	}
	baseURL := fmt.Sprintf("http://%s:%d", host, port)

	args, err := engineArgv(cfg, host, port)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(cfg.EngineBin, args...)
	tail := &tailBuffer{max: 4096}
	cmd.Stderr = tail
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine runtime: %w", err)
	}
	p := &process{
		cmd:     cmd,
		baseURL: baseURL,
		pid:     cmd.Process.Pid,
		port:    port,
		stderr:  tail,
		doneCh:  make(chan struct{}),
	}
	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		p.exitErr = err
		p.mu.Unlock()
		close(p.doneCh)
	}()
	log.Info().Int("pid", p.pid).Str("url", baseURL).Msg("engine runtime starting")
	pub.Publish(Event{Name: "runtime_start", Model: cfg.ModelID, Fields: map[string]any{"pid": p.pid, "host": host, "port": port}})
	return p, nil
}

// exited reports whether the process has terminated, and its wait error.
func (p *process) exited() (bool, error) {
	select {
	case <-p.doneCh:
		p.mu.Lock()
		defer p.mu.Unlock()
		return true, p.exitErr
	default:
		return false, nil
	}
}

func (p *process) stderrTail() string { return p.stderr.String() }

// Stop terminates the runtime: SIGTERM first, then kill after a grace period.
func (p *process) Stop() error {
	if p == nil || p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	select {
	case <-p.doneCh:
		return nil
	default:
	}
	_ = p.cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-p.doneCh:
	case <-time.After(2 * time.Second):
		_ = p.cmd.Process.Kill()
		<-p.doneCh
	}
	return nil
}

func pickFreePort(host string) (int, error) {
	l, err := net.Listen("tcp", host+":0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	addr := l.Addr().String()
	lastColon := strings.LastIndex(addr, ":")
	if lastColon < 0 {
		return 0, fmt.Errorf("unexpected addr: %s", addr)
	}
	n, err := strconv.Atoi(addr[lastColon+1:])
	if err != nil {
		return 0, err
	}
	return n, nil
}
