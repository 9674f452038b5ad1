package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides on the progress view. Auto needs a terminal on both
// ends and more than one unit; a single file finishes before the view draws.
func shouldUseTUI(mode uiMode, units int) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return units > 1 && isTerminal(os.Stdout) && isTerminal(os.Stdin)
	}
}

// useColor resolves the --color flag against the output.
func useColor(flag string, out *os.File) (bool, error) {
	switch strings.ToLower(flag) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "", "auto":
		return out != nil && isTerminal(out), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", flag)
}
