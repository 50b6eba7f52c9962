package edgectl

import (
	"os"
	"os/exec"
)

// RunDeploy hands control to the external deployment routine, forwarding
// args unchanged and streaming its output. The delegate's exit status
// becomes ours, so a returned *exec.ExitError must propagate untouched.
func RunDeploy(target HostTarget, args []string) error {
	if !fileExists(target.DeployScript) {
		return stageErrorf(KindDeploy, "deploy script %s not found", target.DeployScript)
	}
	cmd := exec.Command(target.DeployScript, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}
