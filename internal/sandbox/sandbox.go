// Package sandbox runs generated programs in an isolated subprocess.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Method selects the isolation mechanism for a run.
type Method string

const (
	// MethodAuto picks the first available sandbox, falling back to a bare
	// subprocess when none is installed.
	MethodAuto Method = "auto"
	// MethodFirejail wraps the interpreter in firejail with networking off.
	MethodFirejail Method = "firejail"
	// MethodBubblewrap wraps the interpreter in bwrap with all namespaces
	// unshared.
	MethodBubblewrap Method = "bubblewrap"
	// MethodSubprocess runs the interpreter directly. No isolation; only
	// for trusted environments.
	MethodSubprocess Method = "subprocess"
)

// autoOrder is the preference order for MethodAuto.
var autoOrder = []Method{MethodFirejail, MethodBubblewrap}

// Capabilities is the result of probing which sandbox tools exist on this
// machine. It is constructed once and injected into the Runner so tests can
// substitute a fixed set without process-global state.
type Capabilities struct {
	available map[Method]bool
}

// Probe checks the PATH for sandbox tools.
func Probe() Capabilities {
	caps := Capabilities{available: make(map[Method]bool)}
	if _, err := exec.LookPath("firejail"); err == nil {
		caps.available[MethodFirejail] = true
	}
	if _, err := exec.LookPath("bwrap"); err == nil {
		caps.available[MethodBubblewrap] = true
	}
	return caps
}

// FixedCapabilities returns a probe result listing exactly the given
// methods as available.
func FixedCapabilities(methods ...Method) Capabilities {
	caps := Capabilities{available: make(map[Method]bool)}
	for _, m := range methods {
		caps.available[m] = true
	}
	return caps
}

// Has reports whether the method's tool is installed.
func (c Capabilities) Has(m Method) bool { return c.available[m] }

// Result is the outcome of one sandboxed run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Method   Method
	Duration time.Duration
}

// Success reports whether the program ran to completion with exit code 0.
func (r *Result) Success() bool { return !r.TimedOut && r.ExitCode == 0 }

// Runner executes program files under a configured interpreter.
type Runner struct {
	Interpreter string // e.g. "python3"
	Timeout     time.Duration
	Method      Method
	Caps        Capabilities
}

// NewRunner creates a runner with the given interpreter and timeout, using
// automatic sandbox selection against the provided capabilities.
func NewRunner(interpreter string, timeout time.Duration, caps Capabilities) *Runner {
	return &Runner{
		Interpreter: interpreter,
		Timeout:     timeout,
		Method:      MethodAuto,
		Caps:        caps,
	}
}

// RunFile executes the program at path with the given arguments and returns
// its captured output. A timeout is reported in the Result, not as an error;
// err is reserved for failures to start the process at all.
func (r *Runner) RunFile(ctx context.Context, path string, args []string) (*Result, error) {
	method := r.Method
	if method == "" || method == MethodAuto {
		method = MethodSubprocess
		for _, m := range autoOrder {
			if r.Caps.Has(m) {
				method = m
				break
			}
		}
	}

	argv := r.command(method, path, args)

	runCtx := ctx
	var cancel context.CancelFunc
	if r.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Method:   method,
		Duration: time.Since(start),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, err
	}
	return res, nil
}

// command builds the argv for the chosen isolation method.
func (r *Runner) command(method Method, path string, args []string) []string {
	var argv []string
	switch method {
	case MethodFirejail:
		argv = []string{
			"firejail", "--quiet", "--noprofile", "--net=none",
			"--private-tmp", "--noroot", "--nosound",
			r.Interpreter, path,
		}
	case MethodBubblewrap:
		argv = []string{
			"bwrap",
			"--ro-bind", "/usr", "/usr",
			"--ro-bind", "/lib", "/lib",
			"--ro-bind", "/bin", "/bin",
			"--tmpfs", "/tmp",
			"--proc", "/proc",
			"--dev", "/dev",
			"--unshare-all", "--die-with-parent",
			"--ro-bind", path, path,
			r.Interpreter, path,
		}
	default:
		argv = []string{r.Interpreter, path}
	}
	return append(argv, args...)
}
