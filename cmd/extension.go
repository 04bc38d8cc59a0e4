package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
)

const (
	EnvActor    = "DEFI_ACTOR"
	EnvBalances = "DEFI_BALANCES"
	EnvRates    = "DEFI_RATES"
	EnvSeed     = "DEFI_SEED"
	EnvVerbose  = "DEFI_VERBOSE"
)

// RunExtension attempts to find and execute an external defi-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "defi-" + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		slog.Debug("external command not found", "command", externalCmdName, "error", err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr

	// Pass global flags as environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, EnvActor+"="+setting(*actor, EnvActor, DefaultActor))
	cmd.Env = append(cmd.Env, EnvBalances+"="+setting(*balancesFlag, EnvBalances, DefaultBalances))
	if rates := setting(*ratesFile, EnvRates, ""); rates != "" {
		cmd.Env = append(cmd.Env, EnvRates+"="+rates)
	}
	if seed := setting(*seedFlag, EnvSeed, ""); seed != "" {
		cmd.Env = append(cmd.Env, EnvSeed+"="+seed)
	}
	cmd.Env = append(cmd.Env, EnvVerbose+"="+strconv.FormatBool(verbose()))

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
