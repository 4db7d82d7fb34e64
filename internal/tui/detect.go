package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents how load progress is rendered.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and redirected output.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is watching the terminal.
	ModeInteractive
)

// NonInteractiveEnv forces plain log output when set to "1".
const NonInteractiveEnv = "CSVINGEST_NON_INTERACTIVE"

// DetectMode determines whether progress should be drawn as a live display.
//
// Returns ModeNonInteractive if:
//   - stderr is not a terminal (redirected to a file, CI/CD)
//   - CSVINGEST_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//
// Returns ModeInteractive otherwise.
func DetectMode() Mode {
	return detectMode(os.Getenv, term.IsTerminal(int(os.Stderr.Fd())))
}

func detectMode(getenv func(string) string, stderrIsTerminal bool) Mode {
	if getenv(NonInteractiveEnv) == "1" {
		return ModeNonInteractive
	}
	if getenv("CI") != "" {
		return ModeNonInteractive
	}
	if getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}
	if !stderrIsTerminal {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
