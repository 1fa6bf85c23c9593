//go:build !unix

package git

import "os/exec"

// terminationSignal is undeterminable on platforms without wait statuses.
func terminationSignal(_ *exec.ExitError) string {
	return ""
}
