package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stevensona/shader-toy-sub000/pkg/buffers"
	"github.com/stevensona/shader-toy-sub000/pkg/diagnostics"
	"github.com/stevensona/shader-toy-sub000/pkg/document"
	"github.com/stevensona/shader-toy-sub000/pkg/formatter"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Resolve a shader and print its buffers",
	Long: `Resolve a shader-toy GLSL file and every file it references into an ordered
list of buffers. The output can be human-readable or JSON for the renderer.

Diagnostics go to stderr. The command fails when any of them is an error.

Examples:
  # Show the render passes of a shader
  shadertoy parse image.glsl

  # Emit JSON with audio inputs enabled
  shadertoy parse --format json --audio image.glsl`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, collector, err := resolveShader(cmd.Context(), cmd, args[0])
		if err != nil {
			return err
		}

		reportDiagnostics(collector)

		f := formatter.New()
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			err = f.FormatJSON(os.Stdout, result)
		case "human":
			err = f.FormatBuffers(os.Stdout, result)
		default:
			return fmt.Errorf("unknown format %q, expected human or json", format)
		}
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		if n := len(collector.BySeverity(diagnostics.SeverityError)); n > 0 {
			return fmt.Errorf("%s has %d error(s)", args[0], n)
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
	addResolveFlags(parseCmd)
}

// addResolveFlags registers the flags that override .shadertoy.yaml
func addResolveFlags(c *cobra.Command) {
	c.Flags().Bool("strict", false, "Always append the main() wrapper")
	c.Flags().Bool("audio", false, "Accept audio files on channels")
	c.Flags().Bool("warn-channels", true, "Warn about iChannelN reads without a binding")
	c.Flags().Int("preamble", 0, "Number of lines the renderer prepends to each buffer")
}

// resolveShader loads the configuration for file and resolves it
func resolveShader(ctx context.Context, cmd *cobra.Command, file string) (*buffers.Result, *diagnostics.Collector, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	config, err := loadConfig(configPath, file)
	if err != nil {
		return nil, nil, err
	}
	applyFlagOverrides(cmd, config)

	root := filepath.Dir(file)
	if config.Path() != "" {
		root = filepath.Dir(config.Path())
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Using config: %s\n", config.Path())
		}
	}

	ws := document.NewWorkspace(root)
	config.Apply(ws)

	collector := diagnostics.NewCollector()
	provider := buffers.NewProvider(ws, ws, collector, config.Options())

	if verbose {
		fmt.Fprintf(os.Stderr, "🔍 Resolving %s\n", file)
	}
	result, err := provider.ParseShaderFile(ctx, file)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✅ %d buffer(s), %d include(s)\n", len(result.Buffers), len(result.Includes))
	}
	return result, collector, nil
}

// applyFlagOverrides lets explicitly set flags win over the config file
func applyFlagOverrides(cmd *cobra.Command, config *Config) {
	flags := cmd.Flags()
	if flags.Changed("strict") {
		config.StrictCompatibility, _ = flags.GetBool("strict")
	}
	if flags.Changed("audio") {
		config.EnableAudioInput, _ = flags.GetBool("audio")
	}
	if flags.Changed("warn-channels") {
		config.WarnOnUndefinedChannels, _ = flags.GetBool("warn-channels")
	}
	if flags.Changed("preamble") {
		config.PreambleLines, _ = flags.GetInt("preamble")
	}
}

// reportDiagnostics prints collected diagnostics to stderr, grouped by file
func reportDiagnostics(collector *diagnostics.Collector) {
	reporter := diagnostics.NewWriterReporter(os.Stderr)
	for _, d := range collector.Sorted() {
		reporter.ShowDiagnostic(d.File, d.Line, d.Message, d.Severity)
	}
}
