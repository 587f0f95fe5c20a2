package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gleanhq/glean/internal/output"
	"github.com/gleanhq/glean/pkg/extract"
	"github.com/gleanhq/glean/pkg/glean"
	"github.com/gleanhq/glean/pkg/preprocess"
	"github.com/gleanhq/glean/pkg/schema"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured data from content",
	Long: `Extract reads content from a file or stdin, runs it through the
configured LLM provider, and writes the validated record.

The schema file (JSON or YAML) defines the fields to extract. Use
--variant product or --variant article instead of a schema file for the
built-in content types.`,
	RunE: runExtract,
}

// resultView is the serialized shape of one extraction.
type resultView struct {
	Data       map[string]any `json:"data" yaml:"data"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
	Provider   string         `json:"provider" yaml:"provider"`
	Model      string         `json:"model" yaml:"model"`
	Source     string         `json:"source,omitempty" yaml:"source,omitempty"`
	Truncated  bool           `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Defaulted  []string       `json:"defaulted,omitempty" yaml:"defaulted,omitempty"`
	Coerced    []string       `json:"coerced,omitempty" yaml:"coerced,omitempty"`
	Attempts   int            `json:"attempts" yaml:"attempts"`
	ElapsedMS  int64          `json:"elapsed_ms" yaml:"elapsed_ms"`
}

func init() {
	extractCmd.Flags().StringP("input", "i", "", "input file (default: stdin)")
	extractCmd.Flags().StringP("schema", "s", "", "schema file (JSON or YAML)")
	extractCmd.Flags().String("variant", "", "built-in content type: product or article")
	extractCmd.Flags().String("source", "", "source URL for provenance and link resolution")
	extractCmd.Flags().String("kind", "markup", "content kind: markup or plain")
	extractCmd.Flags().String("instruction", "", "extra extraction instructions")
	extractCmd.Flags().StringP("provider", "p", "", "provider to use (default: first configured)")
	extractCmd.Flags().StringP("model", "m", "", "model override")
	extractCmd.Flags().StringP("output", "o", "json", "output format: json, jsonl, yaml")
	extractCmd.Flags().Int("max-tokens", 0, "max completion tokens")
	extractCmd.Flags().Float64("temperature", 0, "sampling temperature")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	g, err := newGlean()
	if err != nil {
		logError("%v", err)
		return err
	}

	content, err := readInput(cmd)
	if err != nil {
		logError("reading input: %v", err)
		return err
	}

	req := extract.Request{
		Content: string(content),
	}
	req.Source, _ = cmd.Flags().GetString("source")
	req.Instruction, _ = cmd.Flags().GetString("instruction")
	req.Provider, _ = cmd.Flags().GetString("provider")
	req.Model, _ = cmd.Flags().GetString("model")
	req.MaxTokens, _ = cmd.Flags().GetInt("max-tokens")
	req.Temperature, _ = cmd.Flags().GetFloat64("temperature")

	kind, _ := cmd.Flags().GetString("kind")
	req.Kind = preprocess.Kind(kind)

	strategy, err := pickStrategy(cmd, g, &req)
	if err != nil {
		logError("%v", err)
		return err
	}

	start := time.Now()
	result, err := strategy.Extract(cmd.Context(), req)
	if err != nil {
		logError("extraction failed: %v", err)
		if result != nil {
			logInfo("attempts: %d, elapsed: %s",
				result.Performance.Attempts, result.Performance.Elapsed.Round(time.Millisecond))
		}
		return err
	}
	logInfo("extracted in %s (%d attempt(s), confidence %.2f)",
		time.Since(start).Round(time.Millisecond), result.Performance.Attempts, result.Confidence)

	format, _ := cmd.Flags().GetString("output")
	writer, err := output.NewWriter(os.Stdout, output.Format(format))
	if err != nil {
		logError("%v", err)
		return err
	}
	defer func() { _ = writer.Close() }()

	return writer.Write(resultView{
		Data:       result.Data,
		Confidence: result.Confidence,
		Provider:   result.Provenance.Provider,
		Model:      result.Provenance.Model,
		Source:     result.Provenance.Source,
		Truncated:  result.Provenance.Truncated,
		Defaulted:  result.Defaulted,
		Coerced:    result.Coerced,
		Attempts:   result.Performance.Attempts,
		ElapsedMS:  result.Performance.Elapsed.Milliseconds(),
	})
}

// pickStrategy resolves either a schema file or a built-in variant.
func pickStrategy(cmd *cobra.Command, g *glean.Glean, req *extract.Request) (extract.Strategy, error) {
	variant, _ := cmd.Flags().GetString("variant")
	schemaPath, _ := cmd.Flags().GetString("schema")

	switch variant {
	case "product":
		return g.Product(), nil
	case "article":
		return g.Article(), nil
	case "":
		if schemaPath == "" {
			return nil, errors.New("either --schema or --variant is required")
		}
		s, err := schema.FromFile(schemaPath)
		if err != nil {
			return nil, err
		}
		req.Schema = s
		return g.Engine(), nil
	default:
		return nil, fmt.Errorf("unknown variant %q (want product or article)", variant)
	}
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	path, _ := cmd.Flags().GetString("input")
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
