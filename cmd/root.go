package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Persistent flags shared by every command
var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "shadertoy",
	Short: "Resolve shader-toy style GLSL files into render passes",
	Long: `shadertoy reads GLSL fragment shaders written for shader-toy and resolves
their directives (#iChannelN, #include, #iUniform, #iKeyboard, ...) into an
ordered list of compilable buffers. Dependencies come first and the last
buffer is the final image. Problems are reported with the file and line they
were written on.`,
	Version:       getVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shadertoy %s\n", getVersionString())
		fmt.Printf("  Version: %s\n", version)
		fmt.Printf("  Commit:  %s\n", commit)
		fmt.Printf("  Date:    %s\n", date)
	},
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return version
}

// SetVersionInfo records the build metadata injected by the linker and
// exposes it through --version
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

// Execute runs the root command against os.Args
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", getEnvOrDefault("SHADERTOY_CONFIG", ""), "Path to a .shadertoy.yaml file (default: searched upward from the shader)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print progress information")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(directivesCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
