package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/stevensona/shader-toy-sub000/pkg/parser"

	"github.com/spf13/cobra"
)

var directivesCmd = &cobra.Command{
	Use:   "directives [file]",
	Short: "List the directives of a single shader file",
	Long: `List every shader-toy directive found in one GLSL file without resolving
anything it references. Useful to check how a directive was understood.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}

		entries := listDirectives(string(content))

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(map[string]interface{}{
				"filename":   filename,
				"directives": entries,
			})
		case "human":
			fmt.Printf("📄 %s: %d directive(s)\n", filename, len(entries))
			for _, e := range entries {
				fmt.Printf("  %4d  %-22s %s\n", e.Line, e.Kind, e.Detail)
			}
			return nil
		default:
			return fmt.Errorf("unknown format %q, expected human or json", format)
		}
	},
}

func init() {
	directivesCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
}

// directiveEntry is one directive as printed by the directives command
type directiveEntry struct {
	Kind   string `json:"kind"`
	Line   int    `json:"line"`
	Begin  int    `json:"begin"`
	End    int    `json:"end"`
	Detail string `json:"detail"`
}

// listDirectives parses content and describes each directive in order
func listDirectives(content string) []directiveEntry {
	var entries []directiveEntry

	p := parser.NewParser(content)
	for {
		obj, ok := p.Next()
		if !ok {
			return entries
		}
		rng, _ := p.LastObjectRange()
		entries = append(entries, directiveEntry{
			Kind:   obj.Type().String(),
			Line:   obj.OriginalLine(),
			Begin:  rng.Begin,
			End:    rng.End,
			Detail: describeDirective(obj),
		})
	}
}

func describeDirective(obj parser.Object) string {
	switch o := obj.(type) {
	case *parser.TextureObject:
		return fmt.Sprintf("iChannel%d %s %s", o.Index, o.Kind, o.Path)
	case *parser.TextureSettingObject:
		return fmt.Sprintf("iChannel%d %s = %s", o.Index, o.Setting, o.Value)
	case *parser.IncludeObject:
		return o.Path
	case *parser.UniformObject:
		var notes []string
		for _, issue := range o.Issues {
			notes = append(notes, issue.Message)
		}
		detail := fmt.Sprintf("%s %s default=%v min=%v max=%v step=%v", o.TypeName, o.Name, o.Default, o.Min, o.Max, o.Step)
		if len(notes) > 0 {
			detail += " (" + strings.Join(notes, "; ") + ")"
		}
		return detail
	case *parser.ErrorObject:
		return "❌ " + o.Message
	default:
		return ""
	}
}
