package main

import (
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/term"
)

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

// promptDefault shows the current value and keeps it on an empty answer.
func (a *app) promptDefault(label, current string) (string, error) {
	answer, err := a.prompt(fmt.Sprintf("%s [%s]: ", label, current))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return current, nil
	}
	return answer, nil
}

// promptPassword reads without echo when stdin is a terminal.
func (a *app) promptPassword(label string) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return a.prompt(label)
	}
	fmt.Fprint(a.out, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

func (a *app) confirm(question string) (bool, error) {
	answer, err := a.prompt(question + " (y/N): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
