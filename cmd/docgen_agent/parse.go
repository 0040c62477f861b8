package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/document-generator/internal/ingestion"
	"github.com/jonathan/document-generator/internal/observability"
	"github.com/jonathan/document-generator/internal/parsing"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse an HTML template into sections without generating",
	Long:  "Parses an HTML template into its section tree and prints the result. Useful for inspecting how a template will be split before running generation.",
	RunE:  runParseCmd,
}

var (
	parseTemplate    string
	parseTemplateURL string
	parseJSON        bool
)

func init() {
	parseCmd.Flags().StringVarP(&parseTemplate, "template", "t", "", "Path to HTML template file (mutually exclusive with --template-url)")
	parseCmd.Flags().StringVar(&parseTemplateURL, "template-url", "", "URL to fetch the HTML template from (mutually exclusive with --template)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print sections as JSON instead of the formatted summary")

	rootCmd.AddCommand(parseCmd)
}

func runParseCmd(_ *cobra.Command, _ []string) error {
	if parseTemplate == "" && parseTemplateURL == "" {
		return fmt.Errorf("either --template or --template-url must be provided")
	}
	if parseTemplate != "" && parseTemplateURL != "" {
		return fmt.Errorf("--template and --template-url are mutually exclusive; provide only one")
	}

	ctx := context.Background()

	var template string
	if parseTemplateURL != "" {
		html, err := ingestion.FetchTemplate(ctx, parseTemplateURL)
		if err != nil {
			return err
		}
		template = html
	} else {
		data, err := os.ReadFile(parseTemplate)
		if err != nil {
			return fmt.Errorf("failed to read template file: %w", err)
		}
		template = string(data)
	}

	sections := parsing.NewParser().Parse(template)

	if parseJSON {
		jsonBytes, err := json.MarshalIndent(sections, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, string(jsonBytes))
		return nil
	}

	observability.NewPrinter(os.Stdout).PrintSections(sections)
	_, _ = fmt.Fprintf(os.Stdout, "Parsed %d sections\n", len(sections))
	return nil
}
