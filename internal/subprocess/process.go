package subprocess

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/wagiedev/dap-session-go/internal/config"
	"github.com/wagiedev/dap-session-go/internal/errors"
)

// maxStderrBufferSize caps the buffered stderr kept for error reporting.
// The callback still receives every line after the cap is reached.
const maxStderrBufferSize = 1024 * 1024 // 1MB

// Process is a running debug adapter.
type Process struct {
	log     *slog.Logger
	options *config.AdapterOptions
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.ReadCloser

	stderrWg  sync.WaitGroup
	stderrMu  sync.Mutex
	stderrBuf strings.Builder

	mu      sync.Mutex // Protects closing
	closing bool

	waitOnce sync.Once
	waitErr  error
}

// Start discovers and spawns the adapter described by options.
//
// The returned process owns three pipes. The caller reads protocol output
// from Stdout and writes to Stdin; stderr is consumed internally.
func Start(ctx context.Context, log *slog.Logger, options *config.AdapterOptions) (*Process, error) {
	log = log.With("component", "adapter_process")

	path, err := Discover(log, options.Path, options.Name)
	if err != nil {
		return nil, err
	}

	cwd := options.Cwd
	if cwd == "" {
		cwd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	//nolint:gosec // G204: adapter path and arguments come from the caller
	cmd := exec.CommandContext(ctx, path, options.Args...)
	cmd.Dir = cwd
	cmd.Env = buildEnvironment(options.Env)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &errors.TransportError{Op: "stdin pipe", Err: err}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &errors.TransportError{Op: "stdout pipe", Err: err}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &errors.TransportError{Op: "stderr pipe", Err: err}
	}

	if err := cmd.Start(); err != nil {
		log.Error("Failed to start debug adapter", "adapter_path", path, "error", err)

		return nil, &errors.ProcessError{ExitCode: -1, Err: fmt.Errorf("start %s: %w", path, err)}
	}

	p := &Process{
		log:     log.With("pid", cmd.Process.Pid),
		options: options,
		cmd:     cmd,
		stdin:   stdin,
		stdout:  stdout,
	}

	p.stderrWg.Go(func() {
		p.streamStderr(stderr)
	})

	p.log.Info("Debug adapter started", "adapter_path", path, "args", options.Args)

	return p, nil
}

// buildEnvironment layers extra onto the current process environment.
func buildEnvironment(extra map[string]string) []string {
	env := os.Environ()

	for k, v := range extra {
		env = append(env, k+"="+v)
	}

	return env
}

// streamStderr buffers stderr lines and forwards them to the callback. It
// returns when the process closes its end of the pipe.
func (p *Process) streamStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()

		p.stderrMu.Lock()

		if p.stderrBuf.Len() < maxStderrBufferSize {
			if p.stderrBuf.Len() > 0 {
				p.stderrBuf.WriteString("\n")
			}

			p.stderrBuf.WriteString(line)
		}

		p.stderrMu.Unlock()

		if p.options.Stderr != nil {
			p.options.Stderr(line)
		}
	}

	if err := scanner.Err(); err != nil {
		p.log.Debug("Stderr scanner error", "error", err)
	}
}

// Stdout is the adapter's protocol output.
func (p *Process) Stdout() io.ReadCloser {
	return p.stdout
}

// Stdin is the adapter's protocol input.
func (p *Process) Stdin() io.WriteCloser {
	return p.stdin
}

// Pid returns the adapter's process ID.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Stderr returns everything buffered from the adapter's stderr so far.
func (p *Process) Stderr() string {
	p.stderrMu.Lock()
	defer p.stderrMu.Unlock()

	return strings.TrimSpace(p.stderrBuf.String())
}

// Wait blocks until the adapter exits.
//
// Reads from Stdout must be finished before calling Wait, since the pipe is
// closed once the process has exited. A non-zero exit is returned as a
// ProcessError carrying the buffered stderr, unless Close caused it. Wait
// may be called more than once; later calls return the first result.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		p.stderrWg.Wait()

		err := p.cmd.Wait()
		if err == nil {
			p.log.Info("Debug adapter exited")

			return
		}

		p.mu.Lock()
		closing := p.closing
		p.mu.Unlock()

		if closing {
			p.log.Debug("Debug adapter terminated during shutdown")

			return
		}

		exitCode := -1
		if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
			exitCode = exitErr.ExitCode()
		}

		stderr := p.Stderr()
		p.log.Error("Debug adapter exited with error", "exit_code", exitCode, "stderr", stderr)

		p.waitErr = &errors.ProcessError{ExitCode: exitCode, Stderr: stderr, Err: err}
	})

	return p.waitErr
}

// Close closes the adapter's stdin and kills it. It is safe to call Close
// multiple times or after the process has exited.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closing {
		return nil
	}

	p.closing = true

	_ = p.stdin.Close()

	p.log.Debug("Killing debug adapter")

	if err := p.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill debug adapter (pid %d): %w", p.cmd.Process.Pid, err)
	}

	return nil
}
