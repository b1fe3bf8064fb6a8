//go:build windows

package watch

import (
	"context"
	"os/exec"
	"strconv"
)

// shellCommand runs line through cmd.exe. Cancellation kills the whole
// process tree with taskkill.
func shellCommand(ctx context.Context, line string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "cmd", "/C", line) //nolint:gosec // user-configured command
	cmd.Cancel = func() error {
		return exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(cmd.Process.Pid)).Run() //nolint:gosec // pid of our own child
	}

	return cmd
}
