package errors

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/moodlit/internal/logger"
)

// exit is swapped in tests
var exit = os.Exit

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Report writes the formatted error to w and logs it. It is a no-op for nil.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(w, Format(err))
}

// Fatal reports err on stderr and exits with code 1
func Fatal(err error) {
	if err == nil {
		return
	}
	Report(os.Stderr, err)
	exit(1)
}

// Fatalf formats, reports and exits with code 1
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Errorf(format, args...))
}
