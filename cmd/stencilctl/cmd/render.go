package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stencil-lang/stencil"
	"github.com/stencil-lang/stencil/internal/contextsource"
)

var (
	renderContextPath string
	renderFormat      string
	renderSet         []string
)

var renderCmd = &cobra.Command{
	Use:   "render <template-file>",
	Short: "Render a template against a JSON or YAML context",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderContextPath, "context", "c", "", "path to a JSON or YAML context file")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "context format: json or yaml (default: inferred from the context file's extension)")
	renderCmd.Flags().StringArrayVar(&renderSet, "set", nil, "override a JSON context field before decoding, as key=value (repeatable; JSON context only)")
}

func runRender(cmd *cobra.Command, args []string) error {
	requestID := uuid.New().String()
	log := logger.With(zap.String("request_id", requestID))

	templatePath := args[0]
	templateBytes, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading template %s: %w", templatePath, err)
	}

	globals := stencil.Context{}
	if renderContextPath != "" {
		contextBytes, err := os.ReadFile(renderContextPath)
		if err != nil {
			return fmt.Errorf("reading context %s: %w", renderContextPath, err)
		}

		format := resolveFormat(renderContextPath)
		if len(renderSet) > 0 {
			if format != "json" {
				return fmt.Errorf("--set requires a JSON context, got format %q", format)
			}
			for _, kv := range renderSet {
				contextBytes, err = applySet(contextBytes, kv)
				if err != nil {
					return err
				}
			}
		}

		bindings, err := decodeContext(contextBytes, format)
		if err != nil {
			return err
		}
		for k, v := range bindings {
			globals[k] = v
		}
	} else {
		warnf("no --context given; rendering against an empty context")
	}

	log.Info("rendering template",
		zap.String("template", templatePath),
		zap.Int("bindings", len(globals)),
	)

	tmpl, err := stencil.FromString(string(templateBytes))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", templatePath, err)
	}

	out, err := tmpl.Execute(globals)
	if err != nil {
		return fmt.Errorf("executing %s: %w", templatePath, err)
	}

	fmt.Print(out)
	return nil
}

func resolveFormat(path string) string {
	if renderFormat != "" {
		return renderFormat
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// applySet patches a single "key=value" override into a JSON context
// document ahead of decoding, using dot-separated paths (e.g. "user.name=Ada").
func applySet(data []byte, kv string) ([]byte, error) {
	key, value, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return nil, fmt.Errorf("malformed --set %q, expected key=value", kv)
	}
	return contextsource.PatchJSONField(data, key, value)
}

func decodeContext(data []byte, format string) (map[string]stencil.Value, error) {
	switch format {
	case "yaml":
		return contextsource.FromYAML(data)
	case "json":
		return contextsource.FromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported context format %q", format)
	}
}
