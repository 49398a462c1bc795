package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{
		writer:       cmd.OutOrStdout(),
		jsonMode:     jsonMode,
		colorEnabled: !jsonMode && isTerminal(),
	}
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Printf writes formatted output.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Header writes a bold section header.
func (o *Output) Header(text string) {
	if o.colorEnabled {
		fmt.Fprintf(o.writer, "%s%s%s\n", ColorBold, text, ColorReset)
		return
	}
	fmt.Fprintln(o.writer, text)
}

// Success writes a green success line.
func (o *Output) Success(format string, args ...interface{}) {
	if o.colorEnabled {
		fmt.Fprintf(o.writer, "%s✓ %s%s\n", ColorGreen, fmt.Sprintf(format, args...), ColorReset)
		return
	}
	fmt.Fprintf(o.writer, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Warn writes a yellow warning line.
func (o *Output) Warn(format string, args ...interface{}) {
	if o.colorEnabled {
		fmt.Fprintf(o.writer, "%s! %s%s\n", ColorYellow, fmt.Sprintf(format, args...), ColorReset)
		return
	}
	fmt.Fprintf(o.writer, "! %s\n", fmt.Sprintf(format, args...))
}
