package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/stevensona/shader-toy-sub000/pkg/formatter"

	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [file] [log]",
	Short: "Map a shader compiler log back to the authored files",
	Long: `Resolve a shader, then rewrite the line numbers of a WebGL compiler log for
one of its buffers into file:line references of the files the code was
written in. Includes are followed. Reads the log from stdin when no log file
is given or when it is "-".

Examples:
  # Translate errors of the final buffer
  shadertoy translate image.glsl errors.txt

  # Translate errors of a specific buffer, reading the log from stdin
  cat errors.txt | shadertoy translate --buffer bufferA image.glsl`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, _, err := resolveShader(cmd.Context(), cmd, args[0])
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("buffer")
		buf := result.Final()
		if name != "" {
			buf = result.Buffer(name)
		}
		if buf == nil {
			return fmt.Errorf("no buffer named %q in %s", name, args[0])
		}

		log, err := readLog(args[1:])
		if err != nil {
			return err
		}

		fmt.Print(formatter.New().TranslateLog(log, result, buf))
		return nil
	},
}

func init() {
	translateCmd.Flags().StringP("buffer", "b", "", "Buffer the log belongs to (default: the final buffer)")
	addResolveFlags(translateCmd)
}

// readLog reads the compiler log from the named file or stdin
func readLog(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), nil
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return string(content), nil
}
