package status

import (
	"fmt"
	"strings"
)

// Code is the closed set of deployment states.
type Code string

const (
	Pending    Code = "pending"
	InProgress Code = "in_progress"
	Success    Code = "success"
	Failed     Code = "failed"
	Cancelled  Code = "cancelled"
)

// Terminal reports whether no further transition is expected.
func (c Code) Terminal() bool {
	switch c {
	case Success, Failed, Cancelled:
		return true
	default:
		return false
	}
}

// ExitCode maps a verdict to a process exit code.
func (c Code) ExitCode() int {
	switch c {
	case Success:
		return 0
	case Cancelled:
		return 3
	default:
		return 1
	}
}

// State is the value stored per tracker entry.
type State struct {
	Code    Code   `json:"code"`
	Message string `json:"message,omitempty"`
}

func (s State) String() string {
	if s.Message == "" {
		return string(s.Code)
	}
	return fmt.Sprintf("%s (%s)", s.Code, s.Message)
}

// Assess folds child states into a parent verdict: success iff every child
// succeeded, otherwise failed with every non-success message concatenated.
// An empty input is a success.
func Assess(states ...State) State {
	var messages []string
	failed := false
	for _, s := range states {
		if s.Code == Success {
			continue
		}
		failed = true
		messages = append(messages, describe(s))
	}
	if !failed {
		return State{Code: Success}
	}
	return State{Code: Failed, Message: strings.Join(messages, "; ")}
}

// describe returns a state's message, falling back to its code so that a
// silent failure still shows up in an aggregated report.
func describe(s State) string {
	if s.Message != "" {
		return s.Message
	}
	return string(s.Code)
}
