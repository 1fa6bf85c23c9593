//go:build unix

package git

import (
	"os/exec"
	"syscall"
)

// terminationSignal reports the name of the signal that killed the process,
// or "" when the wait status does not record one.
func terminationSignal(exitErr *exec.ExitError) string {
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return ""
	}
	return status.Signal().String()
}
