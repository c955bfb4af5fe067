package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	// Color definitions for terminal output
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
)

// Status lines go to stderr so command output stays pipeable.
var statusOut io.Writer = os.Stderr

func printSuccess(format string, args ...interface{}) {
	successColor.Fprintf(statusOut, "✓ %s\n", fmt.Sprintf(format, args...))
}

func printError(format string, args ...interface{}) {
	errorColor.Fprintf(statusOut, "✗ %s\n", fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...interface{}) {
	warningColor.Fprintf(statusOut, "⚠ %s\n", fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...interface{}) {
	infoColor.Fprintf(statusOut, "ℹ %s\n", fmt.Sprintf(format, args...))
}

func printBold(format string, args ...interface{}) {
	boldColor.Fprintln(statusOut, fmt.Sprintf(format, args...))
}
