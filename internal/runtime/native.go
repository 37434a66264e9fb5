// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"strings"
)

// NativeRuntime executes command lines with the host shell.
type NativeRuntime struct {
	// Shell overrides the default shell
	Shell string
	// ShellArgs are arguments passed to the shell before the command line
	ShellArgs []string
}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns true if a shell can be found.
func (r *NativeRuntime) Available() bool {
	_, err := r.shell()
	return err == nil
}

// Validate checks that the command line is not empty.
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.Script) == "" {
		return errors.New("empty command line")
	}
	return nil
}

// ExecuteCapture runs the command line through the host shell.
func (r *NativeRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	shell, err := r.shell()
	if err != nil {
		return NewErrorResult(1, err)
	}

	env := BuildEnv(ctx.Env)

	args := append(r.shellArgs(shell), ctx.Script)
	cmd := exec.CommandContext(ctx.context(), shell, args...)
	cmd.Dir = ctx.WorkDir
	cmd.Env = EnvToSlice(env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = ctx.outputs(&stdout, &stderr)

	result := &Result{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = ExitCode(exitErr.ExitCode())
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}

	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

func (r *NativeRuntime) shell() (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}

	if goruntime.GOOS == "windows" {
		if pwsh, err := exec.LookPath("pwsh"); err == nil {
			return pwsh, nil
		}
		if ps, err := exec.LookPath("powershell"); err == nil {
			return ps, nil
		}
		return exec.LookPath("cmd")
	}

	if shell := os.Getenv("SHELL"); shell != "" {
		return shell, nil
	}
	if bash, err := exec.LookPath("bash"); err == nil {
		return bash, nil
	}
	if sh, err := exec.LookPath("sh"); err == nil {
		return sh, nil
	}
	return "", errors.New("no shell found")
}

func (r *NativeRuntime) shellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return slices.Clone(r.ShellArgs)
	}

	switch strings.TrimSuffix(filepath.Base(shell), ".exe") {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		return []string{"-c"}
	}
}
