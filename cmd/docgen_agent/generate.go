package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/document-generator/internal/analysis"
	"github.com/jonathan/document-generator/internal/config"
	"github.com/jonathan/document-generator/internal/db"
	"github.com/jonathan/document-generator/internal/export"
	"github.com/jonathan/document-generator/internal/generation"
	"github.com/jonathan/document-generator/internal/ingestion"
	"github.com/jonathan/document-generator/internal/llm"
	"github.com/jonathan/document-generator/internal/observability"
	"github.com/jonathan/document-generator/internal/pipeline"
	"github.com/jonathan/document-generator/internal/schemas"
	"github.com/jonathan/document-generator/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a customized document from an HTML template",
	Long: `Runs the full generation pipeline: parse the template into sections, regenerate each section against the project context, assemble the final document.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runGenerateCmd,
}

var (
	genConfigPath    string
	genTemplate      string
	genTemplateURL   string
	genProjectName   string
	genDescription   string
	genPrompt        string
	genPromptFile    string
	genOverridesFile string
	genOutput        string
	genPDFOutput     string
	genAPIKey        string
	genModel         string
	genDatabaseURL   string
	genVerbose       bool
)

func init() {
	// Config file flag (processed first)
	generateCmd.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	generateCmd.Flags().StringVarP(&genTemplate, "template", "t", "", "Path to HTML template file (mutually exclusive with --template-url)")
	generateCmd.Flags().StringVar(&genTemplateURL, "template-url", "", "URL to fetch the HTML template from (mutually exclusive with --template)")
	generateCmd.Flags().StringVarP(&genProjectName, "project-name", "n", "", "Name of the target project")
	generateCmd.Flags().StringVarP(&genDescription, "description", "d", "", "Short project description")
	generateCmd.Flags().StringVarP(&genPrompt, "prompt", "p", "", "Freeform generation prompt (mutually exclusive with --prompt-file)")
	generateCmd.Flags().StringVar(&genPromptFile, "prompt-file", "", "Path to a file containing the generation prompt")
	generateCmd.Flags().StringVar(&genOverridesFile, "overrides", "", "Path to a JSON file with explicit value overrides")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Path to write the generated HTML")
	generateCmd.Flags().StringVar(&genPDFOutput, "pdf", "", "Optional path to also render the document as PDF (requires Chrome)")
	generateCmd.Flags().StringVar(&genModel, "model", "", "Override for the generation model name")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	generateCmd.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for artifact persistence
	generateCmd.Flags().StringVar(&genDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var; runs are persisted only when set)")

	rootCmd.AddCommand(generateCmd)
}

// mergeGenerateConfig loads the config file, applies CLI overrides, fills
// defaults, and validates required fields.
func mergeGenerateConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config

	if genConfigPath != "" {
		loadedCfg, err := config.LoadConfig(genConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
		if genVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", genConfigPath)
		}
	}

	// Command-line args take priority; only override if the flag was set
	if cmd.Flags().Changed("template") {
		cfg.Template = genTemplate
	}
	if cmd.Flags().Changed("template-url") {
		cfg.TemplateURL = genTemplateURL
	}
	if cmd.Flags().Changed("project-name") {
		cfg.ProjectName = genProjectName
	}
	if cmd.Flags().Changed("description") {
		cfg.ProjectDescription = genDescription
	}
	if cmd.Flags().Changed("prompt") {
		cfg.Prompt = genPrompt
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = genOutput
	}
	if cmd.Flags().Changed("pdf") {
		cfg.PDFOutput = genPDFOutput
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = genAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = genModel
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = genVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = genDatabaseURL
	}

	defaults := config.Config{
		Output: "generated_document.html",
	}
	cfg = cfg.MergeWithDefaults(defaults)

	// Validate required fields
	if cfg.Template == "" && cfg.TemplateURL == "" {
		return cfg, fmt.Errorf("either --template or --template-url must be provided (via flag or config)")
	}
	if cfg.Template != "" && cfg.TemplateURL != "" {
		return cfg, fmt.Errorf("--template and --template-url are mutually exclusive; provide only one")
	}
	if cfg.ProjectName == "" {
		return cfg, fmt.Errorf("--project-name is required (via flag or config)")
	}
	if cfg.ProjectDescription == "" {
		return cfg, fmt.Errorf("--description is required (via flag or config)")
	}

	return cfg, nil
}

// loadTemplate returns the template HTML and a source label for the run row.
func loadTemplate(ctx context.Context, cfg config.Config) (string, string, error) {
	if cfg.TemplateURL != "" {
		html, err := ingestion.FetchTemplate(ctx, cfg.TemplateURL)
		if err != nil {
			return "", "", err
		}
		return html, cfg.TemplateURL, nil
	}

	data, err := os.ReadFile(cfg.Template)
	if err != nil {
		return "", "", fmt.Errorf("failed to read template file: %w", err)
	}
	return string(data), cfg.Template, nil
}

// loadPrompt resolves the prompt from the flag, file, or config, in that order.
func loadPrompt(cfg config.Config) (string, error) {
	if genPrompt != "" && genPromptFile != "" {
		return "", fmt.Errorf("--prompt and --prompt-file are mutually exclusive; provide only one")
	}
	if genPromptFile != "" {
		data, err := os.ReadFile(genPromptFile)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file: %w", err)
		}
		return string(data), nil
	}
	if cfg.Prompt == "" {
		return "", fmt.Errorf("--prompt or --prompt-file is required (via flag or config)")
	}
	return cfg.Prompt, nil
}

// loadOverrides reads the optional JSON overrides file.
func loadOverrides(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	var overrides map[string]any
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse overrides JSON: %w", err)
	}
	return overrides, nil
}

// validateInputAgainstSchema checks the assembled input (including override
// shapes) against the user_input schema. Validation failures are fatal;
// schema loading problems only warn.
func validateInputAgainstSchema(input types.UserInput) error {
	schemaPath := schemas.ResolveSchemaPath("schemas/user_input.schema.json")
	if schemaPath == "" {
		return nil
	}

	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: could not read input schema: %v\n", err)
		return nil
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	if err := schemas.ValidateJSONString(string(schemaBytes), string(inputJSON)); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("input does not validate against schema: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Warning: could not validate input against schema: %v\n", err)
	}
	return nil
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := mergeGenerateConfig(cmd)
	if err != nil {
		return err
	}

	prompt, err := loadPrompt(cfg)
	if err != nil {
		return err
	}

	overrides, err := loadOverrides(genOverridesFile)
	if err != nil {
		return err
	}

	// API key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Database is optional for the CLI; runs are persisted only when a URL
	// is available
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	template, templateSource, err := loadTemplate(ctx, cfg)
	if err != nil {
		return err
	}

	input := types.UserInput{
		ProjectName:        cfg.ProjectName,
		ProjectDescription: cfg.ProjectDescription,
		PromptText:         prompt,
		JSONOverrides:      overrides,
	}
	if err := ingestion.ValidateInput(input); err != nil {
		return err
	}
	if err := validateInputAgainstSchema(input); err != nil {
		return err
	}
	pctx := ingestion.BuildContext(input)

	llmCfg := llm.DefaultConfig()
	if cfg.Model != "" {
		llmCfg = llmCfg.WithModel(llm.TierStandard, cfg.Model)
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	generator := generation.NewGenerator(llm.NewSectionModel(client, llm.TierStandard))
	collector := observability.NewCollector()

	workflow := pipeline.NewWorkflow(generator)
	workflow.Recorder = collector
	if cfg.Verbose {
		workflow.OnProgress = func(event pipeline.ProgressEvent) {
			if event.TotalCount > 0 {
				_, _ = fmt.Fprintf(os.Stdout, "[%s] %s (%d/%d)\n", event.Stage, event.Message, event.SectionIndex+1, event.TotalCount)
			} else {
				_, _ = fmt.Fprintf(os.Stdout, "[%s] %s\n", event.Stage, event.Message)
			}
		}
	}

	start := time.Now()
	state := workflow.Run(ctx, template, pctx)
	result := state.Result(time.Since(start))
	collector.RecordRun(result)

	if cfg.DatabaseURL != "" {
		if err := persistRun(ctx, cfg.DatabaseURL, templateSource, template, pctx, state, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist run: %v\n", err)
		}
	}

	if err := os.WriteFile(cfg.Output, []byte(state.FinalHTML), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if cfg.PDFOutput != "" {
		opts := export.DefaultOptions()
		opts.Verbose = cfg.Verbose
		if err := export.WritePDF(ctx, state.FinalHTML, cfg.PDFOutput, opts); err != nil {
			return fmt.Errorf("failed to render PDF: %w", err)
		}
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintSections(state.Sections)
		printer.PrintMetrics(analysis.NewAnalyzer().Analyze(pctx))
		printer.PrintResult(result)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Generated %d sections (%d failed) in %dms\n", result.SectionsProcessed, result.SectionsFailed, result.GenerationTimeMs)
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", cfg.Output)
	if cfg.PDFOutput != "" {
		_, _ = fmt.Fprintf(os.Stdout, "PDF: %s\n", cfg.PDFOutput)
	}

	if result.Status == types.GenerationFailed {
		return fmt.Errorf("generation failed: all sections failed validation")
	}
	return nil
}

// persistRun stores the run row and its artifacts, mirroring what the HTTP
// server records for API-triggered runs.
func persistRun(ctx context.Context, databaseURL, templateSource, template string, pctx types.ProjectContext, state *pipeline.State, result types.GenerationResult) error {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	runID, err := database.CreateRun(ctx, pctx.ProjectName, templateSource)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	saves := []struct {
		step string
		err  error
	}{
		{db.StepTemplateHTML, database.SaveTextArtifact(ctx, runID, db.StepTemplateHTML, "input", template)},
		{db.StepProjectContext, database.SaveArtifact(ctx, runID, db.StepProjectContext, "input", pctx)},
		{db.StepSections, database.SaveArtifact(ctx, runID, db.StepSections, "parsing", state.Sections)},
		{db.StepProjectMetrics, database.SaveArtifact(ctx, runID, db.StepProjectMetrics, "analysis", analysis.NewAnalyzer().Analyze(pctx))},
		{db.StepGeneratedSections, database.SaveArtifact(ctx, runID, db.StepGeneratedSections, "generation", state.GeneratedSections)},
		{db.StepFinalHTML, database.SaveTextArtifact(ctx, runID, db.StepFinalHTML, "output", state.FinalHTML)},
		{db.StepRunResult, database.SaveArtifact(ctx, runID, db.StepRunResult, "output", result)},
	}
	for _, save := range saves {
		if save.err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to save artifact %s: %v\n", save.step, save.err)
		}
	}

	if err := database.CompleteRun(ctx, runID, string(result.Status), result.SectionsProcessed, result.SectionsFailed); err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Run persisted: %s\n", runID)
	return nil
}
