// Package prompt collects interactive answers from the terminal.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrCanceled reports that the user dismissed an interactive prompt.
// Callers treat it as a clean abort, not a failure.
var ErrCanceled = errors.New("canceled")

// Prompter is the interactive surface the provisioning pipeline depends
// on. Tests script answers through a fake implementation.
type Prompter interface {
	// Select asks the user to pick one of items and returns its index.
	Select(label string, items []string) (int, error)
	// Input asks the user for a line of text.
	Input(label string, validate func(string) error) (string, error)
}

// Terminal prompts on the controlling terminal via promptui.
type Terminal struct{}

func (t *Terminal) Select(label string, items []string) (int, error) {
	s := promptui.Select{
		Label: label,
		Items: items,
	}
	i, _, err := s.Run()
	if err != nil {
		return 0, mapErr(err)
	}
	return i, nil
}

func (t *Terminal) Input(label string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	v, err := p.Run()
	if err != nil {
		return "", mapErr(err)
	}
	return v, nil
}

// mapErr folds promptui's interrupt, abort and EOF sentinels into
// ErrCanceled so the rest of the program sees a single cancel signal.
func mapErr(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt),
		errors.Is(err, promptui.ErrAbort),
		errors.Is(err, promptui.ErrEOF):
		return ErrCanceled
	}
	return err
}

// NonEmpty validates that input contains more than whitespace.
func NonEmpty(field string) func(string) error {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s must not be empty", field)
		}
		return nil
	}
}

// ValidateProjectName rejects names that cannot become a directory
// under the current one.
func ValidateProjectName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("project name must not be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%q is not a usable project name", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return errors.New("project name must not contain path separators")
	}
	return nil
}
