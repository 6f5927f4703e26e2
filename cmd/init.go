package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var initCmd = &cobra.Command{
	Use:   "init [flags] <directory>",
	Short: "Create a .shadertoy.yaml configuration file",
	Long: `Create a .shadertoy.yaml configuration file with the default settings in the
given directory. Every shader below that directory picks it up.

Examples:
  # Initialize the current directory
  shadertoy init .

  # Enable audio and map "assets/" to a shared folder
  shadertoy init --audio --map assets/=../shared/assets/ shaders/`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

var (
	overwrite   bool
	initMapping map[string]string
)

func init() {
	initCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing .shadertoy.yaml file if it exists")
	initCmd.Flags().StringToStringVar(&initMapping, "map", nil, "Path prefix mappings (prefix=directory)")
	addResolveFlags(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := args[0]

	info, err := os.Stat(targetDir)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", targetDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", targetDir)
	}

	configFile := filepath.Join(targetDir, configFileName)
	if _, err := os.Stat(configFile); err == nil && !overwrite {
		fmt.Printf("❌ %s file already exists at: %s\n", configFileName, configFile)
		fmt.Println("   Use --overwrite flag to replace it")
		return fmt.Errorf("%s already exists", configFile)
	}

	config := DefaultConfig()
	applyFlagOverrides(cmd, config)
	if len(initMapping) > 0 {
		config.PathMappings = initMapping
	}

	content, err := renderConfig(config)
	if err != nil {
		return err
	}

	fmt.Printf("💾 Writing %s configuration to: %s\n", configFileName, configFile)
	if err := os.WriteFile(configFile, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configFile, err)
	}

	fmt.Printf("🎉 Successfully initialized %s!\n", configFileName)
	return nil
}

// renderConfig produces the YAML for a configuration file
func renderConfig(config *Config) ([]byte, error) {
	content, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}

	header := "# shadertoy configuration\n# Settings apply to every shader in this directory and below.\n\n"
	return append([]byte(header), content...), nil
}
