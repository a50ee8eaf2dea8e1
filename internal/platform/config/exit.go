package config

import (
	"fmt"
	"io"
	"os"
)

var (
	exitStderr io.Writer = os.Stderr
	exitFunc             = os.Exit
)

// Exitf writes a formatted error message to stderr and exits with code 1.
// Entry points use it for unrecoverable startup and runtime faults.
func Exitf(format string, args ...any) {
	fmt.Fprintf(exitStderr, format+"\n", args...)
	exitFunc(1)
}
