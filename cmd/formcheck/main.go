// Command formcheck loads a form schema, resolves its lookups, validates a
// model against it and prints a report.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-formengine/internal/config"
	"github.com/goliatone/go-formengine/internal/logging"
	"github.com/goliatone/go-formengine/internal/prompt"
	"github.com/goliatone/go-formengine/pkg/lookup"
	"github.com/goliatone/go-formengine/pkg/orchestrator"
	"github.com/goliatone/go-formengine/pkg/report"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/validation"
)

const (
	exitValid   = 0
	exitInvalid = 1
	exitUsage   = 2
)

type options struct {
	schemaPath  string
	modelPath   string
	lookupsPath string
	configPath  string
	presetPath  string
	locale      string
	format      string
	title       string
	output      string
	logLevel    string
	interactive bool
	lintOnly    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}

// run executes formcheck and returns the process exit code. A nil driver
// selects the terminal prompts for --interactive.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, driver prompt.Driver) int {
	var opts options
	flagSet := pflag.NewFlagSet("formcheck", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.schemaPath, "schema", "s", "", "form schema file (JSON, YAML or TOML)")
	flagSet.StringVarP(&opts.modelPath, "model", "m", "", "model file to validate")
	flagSet.StringVar(&opts.lookupsPath, "lookups", "", "lookup data file (overrides config)")
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "config file (default: $"+config.EnvVar+")")
	flagSet.StringVarP(&opts.presetPath, "preset", "p", "", "field patches applied to the schema before checking")
	flagSet.StringVar(&opts.locale, "locale", "", "validator message locale (overrides config)")
	flagSet.StringVarP(&opts.format, "format", "f", "text", "report format: text, html or json")
	flagSet.StringVar(&opts.title, "title", "", "report title (default: schema file name)")
	flagSet.StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	flagSet.BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for field values before validating")
	flagSet.BoolVar(&opts.lintOnly, "lint", false, "only check the schema document")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  formcheck --schema form.yaml [--model model.json] [flags]\n\nFlags:\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitValid
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		fmt.Fprintf(stderr, "error: unexpected argument: %s\n", rest[0])
		return exitUsage
	}
	if opts.schemaPath == "" {
		fmt.Fprintln(stderr, "error: --schema is required")
		return exitUsage
	}

	valid, err := check(ctx, opts, stdout, driver)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	if !valid {
		return exitInvalid
	}
	return exitValid
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	default:
		cfg, err = config.Load()
		if errors.Is(err, config.ErrNoConfig) {
			cfg, err = config.Default(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if opts.locale != "" {
		cfg.Locale = opts.locale
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.lookupsPath != "" {
		cfg.Lookups = opts.lookupsPath
	}
	return cfg, cfg.Validate()
}

func check(ctx context.Context, opts options, stdout io.Writer, driver prompt.Driver) (bool, error) {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return false, err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return false, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return false, err
	}
	defer logger.Sync() //nolint:errcheck

	messages, err := validation.NewMessages(cfg.Locale, cfg.LocaleFiles...)
	if err != nil {
		return false, err
	}

	model := map[string]any{}
	if opts.modelPath != "" {
		if model, err = loadModel(opts.modelPath); err != nil {
			return false, err
		}
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithRegistry(validation.NewRegistry(messages)),
		orchestrator.WithFormOptions(cfg.Form.ValidationOptions(nil)),
		orchestrator.WithFieldIDPrefix(cfg.Form.FieldIDPrefix),
	}
	if cfg.Lookups != "" {
		orchOpts = append(orchOpts, orchestrator.WithLookupService(lookup.NewFileService(cfg.Lookups)))
	}
	if opts.presetPath != "" {
		preset, err := orchestrator.NewPresetTransformerFromFile(opts.presetPath)
		if err != nil {
			return false, err
		}
		orchOpts = append(orchOpts, orchestrator.WithSchemaTransformer(preset))
	}
	if opts.interactive {
		if driver == nil {
			driver = prompt.NewSurveyDriver()
		}
		orchOpts = append(orchOpts, orchestrator.WithFiller(func(ctx context.Context, v *validation.Validator, fields []*schema.Field, values map[string]any) (int, error) {
			return prompt.NewFiller(driver, v).Fill(ctx, fields, values)
		}))
	}

	rep, err := orchestrator.New(orchOpts...).Generate(ctx, orchestrator.Request{
		SchemaPath: opts.schemaPath,
		Model:      model,
		Title:      opts.title,
		LintOnly:   opts.lintOnly,
	})
	if err != nil {
		return false, err
	}
	return writeReport(stdout, opts.output, format, rep)
}

func loadModel(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	model := map[string]any{}
	if err := schema.Unmarshal(data, schema.FormatFromPath(path), &model); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	return model, nil
}

func writeReport(stdout io.Writer, output string, format report.Format, rep report.Report) (bool, error) {
	engine, err := report.NewEngine()
	if err != nil {
		return false, err
	}

	w := stdout
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return false, fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		w = file
	}
	if err := engine.Write(w, format, rep); err != nil {
		return false, err
	}
	return rep.Valid(), nil
}
