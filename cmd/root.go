// Package cmd implements the CLI command structure for jsonedit.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"github.com/nibzard/jsonedit/internal/config"
	"github.com/nibzard/jsonedit/internal/docio"
	"github.com/nibzard/jsonedit/internal/editor"
	"github.com/nibzard/jsonedit/internal/jsontree"
	"github.com/nibzard/jsonedit/internal/logging"
	"github.com/nibzard/jsonedit/internal/parallel"
	"github.com/nibzard/jsonedit/internal/ui"
	"github.com/nibzard/jsonedit/internal/validation"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, swapped by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var (
	errText  = color.New(color.FgRed).SprintFunc()
	okText   = color.New(color.FgGreen).SprintFunc()
	pathText = color.New(color.FgYellow).SprintFunc()
	dimText  = color.New(color.Faint).SprintFunc()
)

// errInvalid is returned when at least one document fails validation.
var errInvalid = errors.New("validation failed")

// Run executes the jsonedit CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("jsonedit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	remainingArgs := fs.Args()
	if len(remainingArgs) == 0 {
		printUsage(fs, stderr)
		return fmt.Errorf("missing command")
	}
	subcommand, remainingArgs := remainingArgs[0], remainingArgs[1:]
	logger := logging.FromConfig(cfg)

	switch subcommand {
	case "validate":
		return validateCommand(ctx, cfg, logger, remainingArgs)
	case "infer":
		return inferCommand(cfg, remainingArgs)
	case "apply":
		return applyCommand(cfg, logger, remainingArgs)
	case "diff":
		return diffCommand(remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		// A bare existing file is validated.
		if fi, err := os.Stat(subcommand); err == nil && !fi.IsDir() {
			return validateCommand(ctx, cfg, logger, append([]string{subcommand}, remainingArgs...))
		}
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// validateCommand validates documents concurrently against one schema.
func validateCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("jsonedit validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemaPath := fs.String("schema", cfg.SchemaFile, "Schema file (JSON or YAML)")
	failFast := fs.Bool("fail-fast", false, "Stop at the first document that cannot be read")
	quiet := fs.Bool("quiet", false, "Only report invalid documents")
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return fmt.Errorf("validate: no documents given")
	}
	if *schemaPath == "" {
		return fmt.Errorf("validate: no schema (pass -schema or set schema_file)")
	}

	schema, err := docio.Load(*schemaPath)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}
	opts := []parallel.Option{parallel.WithLogger(logger)}
	if *failFast {
		opts = append(opts, parallel.WithFailFast())
	}
	pool, err := parallel.NewPool(schema, cfg.Workers, opts...)
	if err != nil {
		return err
	}

	jobs := make([]parallel.Job, len(paths))
	for i, path := range paths {
		jobs[i] = parallel.Job{Name: path, Load: func() (jsontree.Value, error) {
			return docio.Load(path)
		}}
	}
	results, runErr := pool.Run(ctx, jobs)
	for _, r := range results {
		printResult(r, *quiet)
	}
	if runErr != nil {
		return runErr
	}

	summary := parallel.Summarize(results)
	if !*quiet {
		fmt.Fprintf(stdout, "\n%d valid, %d invalid, %d failed\n", summary.Valid, summary.Invalid, summary.Failed)
	}
	if summary.Invalid+summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d documents", errInvalid, summary.Invalid+summary.Failed, len(results))
	}
	return nil
}

func printResult(r parallel.Result, quiet bool) {
	switch {
	case r.Err != nil:
		fmt.Fprintf(stdout, "%s %s: %v\n", errText("error"), r.Name, r.Err)
	case len(r.Errors) > 0:
		fmt.Fprintf(stdout, "%s %s: %d errors\n", errText("invalid"), r.Name, len(r.Errors))
		printErrors(stdout, r.Errors)
	case !quiet:
		fmt.Fprintf(stdout, "%s %s\n", okText("valid"), r.Name)
	}
}

func printErrors(w io.Writer, errs []validation.Error) {
	for _, e := range errs {
		fmt.Fprintf(w, "  %s: %s %s\n", pathText(e.Path.String()), e.Message, dimText("("+e.Keyword+")"))
	}
}

// inferCommand prints a schema inferred from one document.
func inferCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("jsonedit infer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", "", "Write the schema to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("infer: expected exactly one document")
	}

	doc, err := docio.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	schema := validation.InferSchema(doc)
	if *out != "" {
		return docio.Save(*out, schema, cfg.OutputFormat)
	}
	data, err := docio.Encode(schema, cfg.OutputFormat)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

// applyCommand applies an RFC 6902 patch through the editor.
func applyCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("jsonedit apply", flag.ContinueOnError)
	fs.SetOutput(stderr)
	patchPath := fs.String("patch", "", "JSON patch file (required)")
	out := fs.String("out", "", "Write the result to this file instead of stdout")
	showDiff := fs.Bool("diff", false, "Print a diff instead of the patched document")
	strict := fs.Bool("strict", false, "Refuse to write a document with validation errors")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *patchPath == "" {
		return fmt.Errorf("apply: -patch is required")
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("apply: expected exactly one document")
	}

	ctrl, err := openDocument(cfg, logger, fs.Arg(0))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	patchData, err := os.ReadFile(*patchPath)
	if err != nil {
		return fmt.Errorf("read patch: %w", err)
	}
	ops, err := docio.DecodePatch(patchData)
	if err != nil {
		return err
	}
	before := ctrl.State().Value
	if err := docio.ApplyPatch(ctrl, ops); err != nil {
		return err
	}

	st := ctrl.State()
	if errs := ctrl.ValidateNow(); len(errs) > 0 {
		fmt.Fprintf(stderr, "%s patched document has %d validation errors\n", errText("warning"), len(errs))
		printErrors(stderr, errs)
		if *strict {
			return fmt.Errorf("%w: patched document not written", errInvalid)
		}
	}

	if *showDiff {
		lines, err := docio.Diff(before, st.Value)
		if err != nil {
			return err
		}
		if err := docio.FormatDiff(stdout, lines, colorDiff); err != nil {
			return err
		}
	}
	if *out != "" {
		return docio.Save(*out, st.Value, cfg.OutputFormat)
	}
	if *showDiff {
		return nil
	}
	data, err := docio.Encode(st.Value, cfg.OutputFormat)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

// diffCommand prints a line diff of two documents.
func diffCommand(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("diff: expected two documents")
	}
	a, err := docio.Load(args[0])
	if err != nil {
		return err
	}
	b, err := docio.Load(args[1])
	if err != nil {
		return err
	}
	lines, err := docio.Diff(a, b)
	if err != nil {
		return err
	}
	if !docio.Changed(lines) {
		fmt.Fprintln(stdout, "documents are equal")
		return nil
	}
	return docio.FormatDiff(stdout, lines, colorDiff)
}

func colorDiff(op docio.LineOp, s string) string {
	switch op {
	case docio.LineDelete:
		return errText(s)
	case docio.LineInsert:
		return okText(s)
	}
	return s
}

// tuiCommand opens a document in the terminal browser.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("tui: expected exactly one document")
	}
	path := args[0]
	// The alternate screen owns the terminal, so editor logs are dropped.
	ctrl, err := openDocument(cfg, logging.Discard(), path)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	save := func(v jsontree.Value) error {
		return docio.Save(path, v, cfg.OutputFormat)
	}
	return ui.RunTUI(ctx, ctrl, ui.WithTitle(path), ui.WithSave(save))
}

// openDocument loads path into a new controller configured from cfg.
func openDocument(cfg *config.Config, logger *log.Logger, path string) (*editor.Controller, error) {
	opts := []editor.Option{editor.WithLogger(logger)}
	if cfg.SchemaFile != "" {
		schema, err := docio.Load(cfg.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("loading schema: %w", err)
		}
		opts = append(opts, editor.WithSchema(schema))
	}
	ctrl, err := editor.New(cfg.Editor(), opts...)
	if err != nil {
		return nil, err
	}
	doc, err := docio.Load(path)
	if err != nil {
		ctrl.Close()
		return nil, err
	}
	if err := ctrl.Initialize(doc); err != nil {
		ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}

// configCommand shows where the effective configuration came from.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("jsonedit config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	file := cws.GetConfigFile()
	if file == "" {
		file = "(none)"
	}
	fmt.Fprintf(stdout, "Config file: %s\n", file)
	fmt.Fprintf(stdout, "Project root: %s\n", cws.Config.ProjectRoot)
	overridden := cws.Overridden()
	if len(overridden) == 0 {
		fmt.Fprintln(stdout, "All settings are defaults.")
		return nil
	}
	fmt.Fprintln(stdout, "Overridden settings:")
	for _, field := range overridden {
		fmt.Fprintf(stdout, "  %-16s %s\n", field, cws.Sources[field])
	}
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "jsonedit version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	lines := []string{
		"jsonedit - Schema-aware JSON document editing",
		"",
		"Usage:",
		"  jsonedit [options] <command> [command options]",
		"",
		"Commands:",
		"  validate [-schema f] doc...   Validate documents concurrently",
		"  infer [-out f] doc             Print a schema inferred from a document",
		"  apply -patch p [-out f] [-diff] [-strict] doc",
		"                                 Apply an RFC 6902 patch through the editor",
		"  diff a b                       Line diff of two documents",
		"  tui doc                        Browse and edit a document in the terminal",
		"  config [-example]              Show where settings come from",
		"  version                        Show version information",
		"  help                           Show this help message",
		"",
		"Global Options:",
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(stderr)
}
