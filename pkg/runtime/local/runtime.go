package local

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrianliechti/tts-playground/pkg/runtime"

	"github.com/google/uuid"
)

var _ runtime.Runtime = (*Runtime)(nil)

// Runtime drives a long running worker process over JSON lines on stdin and stdout.
type Runtime struct {
	*Config

	mu sync.Mutex

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr *tailBuffer
	done   chan struct{}

	// loads keeps every successful load by handle so a restarted worker
	// can be brought back to the same state.
	loads   map[string]request
	aliases map[string]string
}

func New(command string, options ...Option) (*Runtime, error) {
	if command == "" {
		return nil, errors.New("worker command required")
	}

	cfg := &Config{
		command: command,

		probeTimeout: 30 * time.Second,
	}

	for _, option := range options {
		option(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return &Runtime{
		Config: cfg,

		loads:   make(map[string]request),
		aliases: make(map[string]string),
	}, nil
}

func (r *Runtime) Probe(ctx context.Context, engine string) error {
	path, err := exec.LookPath(r.command)

	if err != nil {
		return fmt.Errorf("worker command %q not found: %w", r.command, err)
	}

	modules := r.modules[engine]

	if len(modules) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "-c", "import "+strings.Join(modules, ", "))
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(), r.env...)

	if output, err := cmd.CombinedOutput(); err != nil {
		message := strings.TrimSpace(string(output))

		if message == "" {
			message = err.Error()
		}

		return fmt.Errorf("missing modules %s: %s", strings.Join(modules, ", "), lastLine(message))
	}

	return nil
}

func (r *Runtime) Load(ctx context.Context, model runtime.Model) (*runtime.Handle, error) {
	req := request{
		Op: "load",

		Engine: model.Engine,
		Model:  model.Name,
		Device: model.Device,

		Options: encodeValues(model.Options),
	}

	resp, err := r.call(ctx, req)

	if err != nil {
		return nil, err
	}

	handle := resp.Handle

	if handle == "" {
		handle = model.Engine + ":" + model.Name
	}

	r.mu.Lock()
	r.loads[handle] = req
	delete(r.aliases, handle)
	r.mu.Unlock()

	return &runtime.Handle{
		ID:    handle,
		Model: model,

		Config: resp.Config,
	}, nil
}

func (r *Runtime) Run(ctx context.Context, handle *runtime.Handle, input runtime.Input) (runtime.Output, error) {
	if handle == nil {
		return nil, errors.New("model not loaded")
	}

	req := request{
		Op: "run",

		Handle: handle.ID,
		Engine: handle.Model.Engine,

		Input: encodeValues(input),
	}

	resp, err := r.call(ctx, req)

	if err != nil {
		return nil, err
	}

	return decodeValue(resp.Output), nil
}

// Close stops the worker process.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stop()
}

type request struct {
	ID string `json:"id"`
	Op string `json:"op"`

	Handle string `json:"handle,omitempty"`
	Engine string `json:"engine,omitempty"`
	Model  string `json:"model,omitempty"`
	Device string `json:"device,omitempty"`

	Options map[string]any `json:"options,omitempty"`
	Input   map[string]any `json:"input,omitempty"`
}

type response struct {
	ID string `json:"id"`

	Handle string         `json:"handle,omitempty"`
	Config map[string]any `json:"config,omitempty"`

	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (r *Runtime) call(ctx context.Context, req request) (*response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.start(ctx); err != nil {
		return nil, err
	}

	if alias, ok := r.aliases[req.Handle]; ok && req.Op == "run" {
		req.Handle = alias
	}

	return r.roundTrip(ctx, req)
}

func (r *Runtime) roundTrip(ctx context.Context, req request) (*response, error) {
	req.ID = uuid.NewString()

	data, err := json.Marshal(req)

	if err != nil {
		return nil, err
	}

	type result struct {
		resp *response
		err  error
	}

	ch := make(chan result, 1)

	stdin := r.stdin
	stdout := r.stdout

	go func() {
		if _, err := stdin.Write(append(data, '\n')); err != nil {
			ch <- result{err: err}
			return
		}

		resp, err := r.read(stdout, req.ID)
		ch <- result{resp, err}
	}()

	select {
	case <-ctx.Done():
		r.logger.Warn("worker call cancelled", "op", req.Op, "engine", req.Engine)
		r.kill()

		return nil, ctx.Err()

	case res := <-ch:
		if res.err != nil {
			stderr := r.stderr.String()
			r.stop()

			if stderr != "" {
				return nil, fmt.Errorf("worker failed: %w: %s", res.err, lastLine(stderr))
			}

			return nil, fmt.Errorf("worker failed: %w", res.err)
		}

		if res.resp.Error != "" {
			return nil, errors.New(res.resp.Error)
		}

		return res.resp, nil
	}
}

// reload replays the recorded loads on a fresh worker. Handles keep their
// ids; a worker that assigns new ones gets an alias.
func (r *Runtime) reload(ctx context.Context) error {
	for handle, req := range r.loads {
		req.Handle = handle

		resp, err := r.roundTrip(ctx, req)

		if err != nil {
			r.stop()
			return fmt.Errorf("failed to reload %s: %w", handle, err)
		}

		delete(r.aliases, handle)

		if resp.Handle != "" && resp.Handle != handle {
			r.aliases[handle] = resp.Handle
		}

		r.logger.Info("worker model reloaded", "engine", req.Engine, "model", req.Model, "handle", handle)
	}

	return nil
}

func (r *Runtime) read(stdout *bufio.Reader, id string) (*response, error) {
	for {
		line, err := stdout.ReadBytes('\n')

		if err != nil {
			return nil, err
		}

		line = bytes.TrimSpace(line)

		if len(line) == 0 {
			continue
		}

		var resp response

		if err := json.Unmarshal(line, &resp); err != nil {
			// workers may print progress output of their libraries
			r.logger.Debug("worker output", "line", string(line))
			continue
		}

		if resp.ID != id {
			continue
		}

		return &resp, nil
	}
}

func (r *Runtime) start(ctx context.Context) error {
	if r.cmd != nil {
		select {
		case <-r.done:
			r.cleanup()
		default:
			return nil
		}
	}

	cmd := exec.Command(r.command, r.args...)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(), r.env...)

	stdin, err := cmd.StdinPipe()

	if err != nil {
		return err
	}

	stdout, err := cmd.StdoutPipe()

	if err != nil {
		return err
	}

	stderr := &tailBuffer{limit: 8192}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	done := make(chan struct{})

	go func() {
		cmd.Wait()
		close(done)
	}()

	r.logger.Info("worker started", "command", r.command, "pid", cmd.Process.Pid)

	r.cmd = cmd
	r.stdin = stdin
	r.stdout = bufio.NewReaderSize(stdout, 1<<20)
	r.stderr = stderr
	r.done = done

	return r.reload(ctx)
}

func (r *Runtime) stop() error {
	if r.cmd == nil {
		return nil
	}

	r.stdin.Close()

	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		r.cmd.Process.Kill()
		<-r.done
	}

	r.cleanup()
	return nil
}

func (r *Runtime) kill() {
	if r.cmd == nil {
		return
	}

	r.cmd.Process.Kill()
	<-r.done

	r.cleanup()
}

func (r *Runtime) cleanup() {
	r.cmd = nil
	r.stdin = nil
	r.stdout = nil
	r.done = nil
}

func encodeValues(values map[string]any) map[string]any {
	if len(values) == 0 {
		return nil
	}

	result := make(map[string]any, len(values))

	for k, v := range values {
		switch val := v.(type) {
		case runtime.LocalFile:
			path := string(val)

			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}

			result[k] = path

		case []runtime.LocalFile:
			paths := make([]string, 0, len(val))

			for _, f := range val {
				path := string(f)

				if abs, err := filepath.Abs(path); err == nil {
					path = abs
				}

				paths = append(paths, path)
			}

			result[k] = paths

		default:
			result[k] = v
		}
	}

	return result
}

// decodeValue turns {"$file": "<base64>"} objects into files.
func decodeValue(v any) any {
	switch val := v.(type) {
	case []any:
		for i := range val {
			val[i] = decodeValue(val[i])
		}

		return val

	case map[string]any:
		if data, ok := val["$file"].(string); ok {
			content, err := base64.StdEncoding.DecodeString(data)

			if err != nil {
				return val
			}

			contentType, _ := val["content_type"].(string)
			name, _ := val["name"].(string)

			return &runtime.File{
				Name: name,

				Content:     content,
				ContentType: contentType,
			}
		}

		for k := range val {
			val[k] = decodeValue(val[k])
		}

		return val
	}

	return v
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)

	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return s[i+1:]
	}

	return s
}

// tailBuffer keeps the last bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)

	if len(b.buf) > b.limit {
		b.buf = b.buf[len(b.buf)-b.limit:]
	}

	return len(p), nil
}

func (b *tailBuffer) String() string {
	if b == nil {
		return ""
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return string(b.buf)
}
