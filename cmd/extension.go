package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Environment variables passed to extensions, so an exps-<name> script sees
// the same data directory and currency as the main binary.
const (
	EnvDir      = "EXPENSES_DIR"
	EnvCurrency = "EXPENSES_CURRENCY"
)

// RunExtension attempts to find and execute an external exps-<subcommand>
// binary from the PATH, the way git runs git-<subcommand>. It returns
// (true, exitCode) if an extension was found and executed, and (false, 0)
// if there is no such extension.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "exps-" + subcommand

	path, err := exec.LookPath(name)
	if err != nil {
		logger.Debug().Str("extension", name).Msg("no extension found in PATH")
		return false, 0
	}

	ext := exec.Command(path, args...)
	ext.Stdin = os.Stdin
	ext.Stdout = os.Stdout
	ext.Stderr = os.Stderr

	ext.Env = os.Environ()
	if cfg, err := openConfig(); err == nil {
		ext.Env = append(ext.Env, EnvDir+"="+cfg.Dir)
		ext.Env = append(ext.Env, EnvCurrency+"="+cfg.Currency)
	}

	if err := ext.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing extension %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
