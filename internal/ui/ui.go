// Package ui writes user-facing status messages. Styling is cosmetic:
// symbols and colors mirror the rest of the output but carry no contract.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	errColor     = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgBlue)
	titleColor   = color.New(color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// Errorf writes a red "✗" message.
func Errorf(w io.Writer, format string, args ...any) {
	write(w, errColor, "✗ ", format, args...)
}

// Warnf writes a yellow "⚠" message.
func Warnf(w io.Writer, format string, args ...any) {
	write(w, warnColor, "⚠ ", format, args...)
}

// Successf writes a green "✔" message.
func Successf(w io.Writer, format string, args ...any) {
	write(w, successColor, "✔ ", format, args...)
}

// Infof writes a blue "ℹ" message.
func Infof(w io.Writer, format string, args ...any) {
	write(w, infoColor, "ℹ ", format, args...)
}

// Titlef writes a bold headline without a status symbol.
func Titlef(w io.Writer, format string, args ...any) {
	write(w, titleColor, "", format, args...)
}

// Dimf writes de-emphasized detail text.
func Dimf(w io.Writer, format string, args ...any) {
	write(w, dimColor, "", format, args...)
}

func write(w io.Writer, c *color.Color, symbol, format string, args ...any) {
	if w == nil {
		w = os.Stdout
	}
	if _, err := c.Fprintf(w, "%s%s\n", symbol, fmt.Sprintf(format, args...)); err != nil {
		fmt.Fprintf(os.Stderr, "ui: write message: %v\n", err)
	}
}
