package main

import (
	"fmt"
	"os"
	"strings"
)

// switchMode is the value of an auto|on|off flag.
type switchMode int8

const (
	switchAuto switchMode = iota
	switchOn
	switchOff
)

var switchNames = map[string]switchMode{
	"": switchAuto, "auto": switchAuto,
	"on": switchOn, "always": switchOn, "true": switchOn,
	"off": switchOff, "never": switchOff, "false": switchOff,
}

func parseSwitch(flag, value string) (switchMode, error) {
	m, ok := switchNames[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return switchAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
	return m, nil
}

// resolve answers auto with the given default.
func (m switchMode) resolve(auto func() bool) bool {
	switch m {
	case switchOn:
		return true
	case switchOff:
		return false
	}
	return auto()
}

// shouldUseTUI decides whether a run of n files gets the progress view.
// auto needs a terminal and more than one file.
func shouldUseTUI(mode switchMode, n int) bool {
	return mode.resolve(func() bool { return n > 1 && isTerminal(os.Stdout) })
}

// colorEnabled resolves --color; auto honours NO_COLOR.
func colorEnabled(value string) (bool, error) {
	mode, err := parseSwitch("color", value)
	if err != nil {
		return false, err
	}
	return mode.resolve(func() bool { return isTerminal(os.Stderr) && os.Getenv("NO_COLOR") == "" }), nil
}
