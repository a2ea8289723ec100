// Package runner executes configured setup commands inside a generated
// project directory.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/betterde/fabr/internal/ui"
)

// Runner shells out setup commands with a progress indicator. Commands
// run with dir as their working directory and inherit the parent
// environment. No timeout is imposed: a hung command hangs the run.
type Runner struct {
	dir string
	out io.Writer
}

// New returns a Runner rooted at dir that reports progress on out.
func New(dir string, out io.Writer) *Runner {
	if out == nil {
		out = os.Stdout
	}
	return &Runner{dir: dir, out: out}
}

// Run executes command through the host shell, animating label while it
// runs. An empty or whitespace-only command succeeds without spawning
// anything. On a nonzero exit the captured output is surfaced so the
// user can see what the command printed.
func (r *Runner) Run(ctx context.Context, label, command string) error {
	if strings.TrimSpace(command) == "" {
		logrus.WithField("step", label).Debug("no command configured, skipping")
		return nil
	}

	logrus.WithFields(logrus.Fields{"step": label, "command": command}).Debug("running command")

	spinner := ui.NewSpinner(r.out, label)
	spinner.Start()

	shell, flag := hostShell()
	cmd := exec.CommandContext(ctx, shell, flag, command)
	cmd.Dir = r.dir
	cmd.Env = os.Environ()

	output, err := cmd.CombinedOutput()
	spinner.Stop(err)
	if err != nil {
		if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
			ui.Dimf(r.out, "%s", trimmed)
		}
		return fmt.Errorf("%s: %q: %w", label, command, err)
	}
	return nil
}

func hostShell() (shell, flag string) {
	if runtime.GOOS == "windows" {
		return "cmd", "/C"
	}
	return "sh", "-c"
}
