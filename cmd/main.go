// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"costcenter-linker/internal/aliases"
	"costcenter-linker/internal/config"
	"costcenter-linker/internal/core"
	"costcenter-linker/internal/help"
	"costcenter-linker/internal/invoice"
	"costcenter-linker/internal/observability"
	"costcenter-linker/internal/paths"
	"costcenter-linker/internal/report"
	"costcenter-linker/internal/version"

	"costcenter-linker/internal/formatters"
	_ "costcenter-linker/internal/formatters/csv"
	_ "costcenter-linker/internal/formatters/json"
	_ "costcenter-linker/internal/formatters/text"
	_ "costcenter-linker/internal/formatters/xlsx"
	_ "costcenter-linker/internal/formatters/yaml"
)

// errUsage is returned after usage has been printed
var errUsage = errors.New("usage")

// cliFlags holds the raw command line values
type cliFlags struct {
	pdf             string
	registry        string
	sheet           string
	output          string
	similarity      float64
	suggestions     int
	format          string
	outFile         string
	reportMode      string
	configFile      string
	profileName     string
	listProfiles    bool
	aliasesFile     string
	generateAliases bool
	statistics      bool
	verbose         bool
	debug           bool
	quiet           bool
	noColor         bool
	showVersion     bool
	showHelp        bool
}

func newFlagSet(stderr io.Writer) (*flag.FlagSet, *cliFlags) {
	f := &cliFlags{}
	fs := flag.NewFlagSet(version.Name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.pdf, "pdf", "", "Invoice PDF to read employees from")
	fs.StringVar(&f.registry, "registry", "", "Employee registry workbook (.xlsx)")
	fs.StringVar(&f.sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	fs.StringVar(&f.output, "output", "", "Directory for the PDF report (default: ./output)")
	fs.Float64Var(&f.similarity, "similarity", 0, "Minimum name similarity, 0.5 to 1.0 (default: 0.7)")
	fs.IntVar(&f.suggestions, "suggestions", 0, "Candidates suggested per unmatched employee (default: 3)")
	fs.StringVar(&f.format, "format", "", "Output format: csv, json, text, xlsx, yaml (default: text)")
	fs.StringVar(&f.outFile, "out-file", "", "Write formatted output to a file instead of stdout")
	fs.StringVar(&f.reportMode, "report", "", "PDF report: merged, standalone or none (default: merged)")
	fs.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&f.profileName, "profile", "", "Profile name to use from config file")
	fs.BoolVar(&f.listProfiles, "list-profiles", false, "List available profiles")
	fs.StringVar(&f.aliasesFile, "aliases", "", "Alias file of confirmed manual matches")
	fs.BoolVar(&f.generateAliases, "generate-aliases", false, "Store the top suggestion of each unmatched employee as a disabled alias")
	fs.BoolVar(&f.statistics, "report-statistics", false, "Add the statistics table to the PDF report")
	fs.BoolVar(&f.verbose, "verbose", false, "Include matched detail and unmatched rows in the output")
	fs.BoolVar(&f.debug, "debug", false, "Trace every pipeline step on stderr")
	fs.BoolVar(&f.quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")
	fs.BoolVar(&f.showHelp, "help", false, "Show help information")
	return fs, f
}

// parseInterleaved parses flags that may appear before, between or after
// positional arguments and returns the positional ones
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	config.Defaults
	sheet       string
	aliasesFile string
}

// resolveConfiguration applies built-in < defaults < profile < flag
func resolveConfiguration(cfg *config.Config, profile *config.Profile, fs *flag.FlagSet, f *cliFlags) *finalConfiguration {
	final := &finalConfiguration{
		Defaults:    cfg.Effective(profile),
		sheet:       cfg.SheetFor(profile),
		aliasesFile: cfg.Aliases.File,
	}

	if isFlagSet(fs, "format") && f.format != "" {
		final.Format = f.format
	}
	if isFlagSet(fs, "similarity") {
		final.Similarity = f.similarity
	}
	if isFlagSet(fs, "suggestions") {
		final.Suggestions = f.suggestions
	}
	if isFlagSet(fs, "output") && f.output != "" {
		final.OutputDir = f.output
	}
	if isFlagSet(fs, "report") && f.reportMode != "" {
		final.Report = f.reportMode
	}
	if isFlagSet(fs, "report-statistics") {
		final.Statistics = f.statistics
	}
	if isFlagSet(fs, "verbose") {
		final.Verbose = f.verbose
	}
	if isFlagSet(fs, "debug") {
		final.Debug = f.debug
	}
	if isFlagSet(fs, "no-color") {
		final.NoColor = f.noColor
	}
	if isFlagSet(fs, "sheet") && f.sheet != "" {
		final.sheet = f.sheet
	}
	if isFlagSet(fs, "aliases") && f.aliasesFile != "" {
		final.aliasesFile = f.aliasesFile
	}
	return final
}

// loadConfiguration loads the configuration file or falls back to defaults
// with a warning
func loadConfiguration(configFile string, stderr io.Writer) *config.Config {
	cfg, err := config.LoadConfigOrDefault(configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(stderr, "Using default configuration\n")
	}
	return cfg
}

func listProfiles(cfg *config.Config, stdout io.Writer) {
	profiles := cfg.ListProfiles()
	if len(profiles) == 0 {
		fmt.Fprintln(stdout, "No profiles defined.")
		return
	}
	fmt.Fprintln(stdout, "Available profiles:")
	for _, name := range profiles {
		if p := cfg.GetProfile(name); p != nil && p.Description != "" {
			fmt.Fprintf(stdout, "  - %s: %s\n", name, p.Description)
		} else {
			fmt.Fprintf(stdout, "  - %s\n", name)
		}
	}
}

// openAliases returns the manager for an explicit or configured alias file,
// the default file when it exists, or a new default file when aliases are
// to be generated. It returns nil when no alias file is in play.
func openAliases(path string, generate bool) (*aliases.Manager, error) {
	if path == "" && !generate {
		if _, err := os.Stat(paths.GetAliasesFile()); err != nil {
			return nil, nil
		}
	}
	if err := paths.ValidatePath(path); err != nil {
		return nil, err
	}
	return aliases.NewManager(path)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	if err := execute(args, stdout, stderr); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func execute(args []string, stdout, stderr io.Writer) error {
	fs, f := newFlagSet(stderr)
	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}

	interactive := isTerminal(stderr)
	if !interactive || f.quiet || os.Getenv("CI") != "" || f.noColor {
		color.NoColor = true
	}

	if f.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return nil
	}
	if f.showHelp {
		h := help.NewSystem(stdout, color.NoColor)
		switch {
		case len(positional) == 0:
			h.ShowGeneralHelp()
		case positional[0] == "topics":
			h.ShowTopicsHelp()
		case !h.ShowTopicHelp(positional[0]):
			return errUsage
		}
		return nil
	}

	cfg := loadConfiguration(f.configFile, stderr)
	if f.listProfiles {
		listProfiles(cfg, stdout)
		return nil
	}

	var profile *config.Profile
	if f.profileName != "" {
		if profile = cfg.GetProfile(f.profileName); profile == nil {
			return fmt.Errorf("profile '%s' not found (available: %s)", f.profileName, strings.Join(cfg.ListProfiles(), ", "))
		}
	}
	final := resolveConfiguration(cfg, profile, fs, f)
	if final.NoColor {
		color.NoColor = true
	}

	pdfPath, registryPath := f.pdf, f.registry
	if pdfPath == "" && len(positional) > 0 {
		pdfPath, positional = positional[0], positional[1:]
	}
	if registryPath == "" && len(positional) > 0 {
		registryPath, positional = positional[0], positional[1:]
	}
	if len(positional) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(positional, " "))
	}
	if pdfPath == "" || registryPath == "" {
		fmt.Fprintf(stderr, "Usage: %s --pdf <factura.pdf> --registry <empleados.xlsx> [options]\n", version.Name)
		fmt.Fprintf(stderr, "Run '%s --help' for more information.\n", version.Name)
		return errUsage
	}

	if err := config.ValidateSimilarity(final.Similarity); err != nil {
		return fmt.Errorf("invalid --similarity: %w", err)
	}
	if err := config.ValidateReportMode(final.Report); err != nil {
		return fmt.Errorf("invalid --report: %w", err)
	}
	if _, ok := formatters.Get(final.Format); !ok {
		return fmt.Errorf("unsupported format '%s'. Available formats: %s", final.Format, strings.Join(formatters.List(), ", "))
	}
	if final.Format == "xlsx" && f.outFile == "" {
		return fmt.Errorf("format xlsx writes a binary workbook; use --out-file")
	}
	for _, p := range []string{pdfPath, registryPath, final.OutputDir, f.outFile} {
		if err := paths.ValidatePath(p); err != nil {
			return err
		}
	}

	var obs *observability.StandardObserver
	if final.Debug {
		debugObs := observability.NewDebugObserver(stderr)
		debugObs.LogDetail("main", fmt.Sprintf("Command line arguments: %v", args))
		obs = debugObs.StandardObserver
	} else {
		obs = observability.NewStandardObserver(observability.ObservabilityOff, stderr)
	}

	manager, err := openAliases(final.aliasesFile, f.generateAliases)
	if err != nil {
		return fmt.Errorf("alias file: %w", err)
	}

	showProgress := interactive && !f.quiet && !final.Debug
	if showProgress {
		fmt.Fprintf(stderr, "Procesando %s contra %s...\n", pdfPath, registryPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tables := cfg.NameTables()
	result, err := core.Run(ctx, core.RunConfig{
		InvoicePath:     pdfPath,
		RegistryPath:    registryPath,
		Sheet:           final.sheet,
		Columns:         cfg.Registry.Columns,
		MinSimilarity:   final.Similarity,
		Suggestions:     final.Suggestions,
		NameTables:      &tables,
		ExcludedWords:   cfg.ExcludedWords(invoice.DefaultExcludedWords),
		MaxPages:        cfg.Invoice.MaxPages,
		Aliases:         manager,
		GenerateAliases: f.generateAliases,
		ReportMode:      final.Report,
		OutputDir:       final.OutputDir,
		ReportOptions: &report.Options{
			IncludeConfidence: true,
			IncludeStatistics: final.Statistics,
		},
		Observer: obs,
	})
	if err != nil {
		return err
	}

	out, err := formatters.Export(final.Format, result, formatters.FormatterOptions{
		Verbose: final.Verbose,
		NoColor: color.NoColor || f.outFile != "",
	})
	if err != nil {
		return err
	}

	if f.outFile != "" {
		if err := os.WriteFile(f.outFile, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if showProgress {
			fmt.Fprintf(stderr, "Resultados guardados en %s\n", f.outFile)
		}
	} else if _, err := stdout.Write(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if f.generateAliases && manager != nil && !f.quiet {
		fmt.Fprintf(stderr, "Alias pendientes de revisión en %s\n", manager.Path())
	}
	return nil
}
