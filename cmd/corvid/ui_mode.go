package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the --ui flag value; Set validates it while cobra parses flags.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func (m *uiMode) String() string { return string(*m) }

func (m *uiMode) Type() string { return "auto|on|off" }

func (m *uiMode) Set(value string) error {
	switch v := uiMode(strings.TrimSpace(strings.ToLower(value))); v {
	case "":
		*m = uiModeAuto
	case uiModeAuto, uiModeOn, uiModeOff:
		*m = v
	default:
		return fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return nil
}

// showProgress decides whether the event-queue progress view runs for a check of units.
// It draws on stderr while diagnostics go to stdout, so auto wants both on a terminal.
func (m uiMode) showProgress(units int) bool {
	switch m {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return units > 0 && isTerminal(os.Stderr) && isTerminal(os.Stdout)
}
