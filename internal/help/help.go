// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"costcenter-linker/internal/config"
	"costcenter-linker/internal/formatters"
	"costcenter-linker/internal/linker"
	"costcenter-linker/internal/version"
)

// TopicInfo is one page of `--help <topic>`
type TopicInfo struct {
	Name             string   // e.g. "matching"
	ShortDescription string   // one line for the topic list
	Details          string   // paragraph shown first
	Items            []string // bullet list
	Examples         []string
}

// Provider supplies a help topic
type Provider interface {
	GetTopicInfo() TopicInfo
}

// staticTopic is a Provider over a fixed TopicInfo
type staticTopic TopicInfo

func (s staticTopic) GetTopicInfo() TopicInfo { return TopicInfo(s) }

// System renders usage and topic pages
type System struct {
	out       io.Writer
	providers map[string]Provider
	colors    map[string]*color.Color
}

// NewSystem creates a help system writing to out, with the built-in topics
// registered. noColor disables colour globally.
func NewSystem(out io.Writer, noColor bool) *System {
	if noColor {
		color.NoColor = true
	}

	h := &System{
		out:       out,
		providers: make(map[string]Provider),
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"negative": color.New(color.FgRed),
			"example":  color.New(color.FgMagenta),
		},
	}
	for _, t := range builtinTopics() {
		h.RegisterProvider(t)
	}
	return h
}

// RegisterProvider adds a topic, replacing any topic with the same name
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetTopicInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

func (h *System) println(c string, a ...interface{}) {
	h.colors[c].Fprintln(h.out, a...)
}

// ShowGeneralHelp prints usage, options, examples and the config file layout
func (h *System) ShowGeneralHelp() {
	h.println("title", "Costcenter Linker - vincula facturas PDF con el registro de empleados")
	fmt.Fprintln(h.out, strings.Repeat("=", 70))
	fmt.Fprintln(h.out)
	h.println("header", "USAGE:")
	fmt.Fprintf(h.out, "  %s --pdf <factura.pdf> --registry <empleados.xlsx> [options]\n", version.Name)
	fmt.Fprintf(h.out, "  %s <factura.pdf> <empleados.xlsx> [options]\n", version.Name)
	fmt.Fprintln(h.out)

	h.println("header", "OPTIONS:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --pdf\t<path>\tInvoice PDF to read employees from (required)")
	fmt.Fprintln(w, "  --registry\t<path>\tEmployee registry workbook, .xlsx (required)")
	fmt.Fprintln(w, "  --sheet\t<name>\tWorksheet to read (default: first sheet)")
	fmt.Fprintln(w, "  --output\t<dir>\tDirectory for the PDF report (default: ./output)")
	fmt.Fprintf(w, "  --similarity\t<0.5-1.0>\tMinimum name similarity for a match (default: %.1f)\n", linker.DefaultMinSimilarity)
	fmt.Fprintf(w, "  --suggestions\t<n>\tCandidates suggested per unmatched employee (default: %d)\n", linker.DefaultSuggestions)
	fmt.Fprintf(w, "  --format\t<format>\tConsole output format: %s (default: text)\n", strings.Join(formatters.List(), ", "))
	fmt.Fprintln(w, "  --out-file\t<path>\tWrite the formatted output to a file instead of stdout")
	fmt.Fprintf(w, "  --report\t<mode>\tPDF report: %s, %s or %s (default: %s)\n", config.ReportMerged, config.ReportStandalone, config.ReportNone, config.ReportMerged)
	fmt.Fprintln(w, "  --report-statistics\t\tAdd the statistics table to the PDF report")
	fmt.Fprintln(w, "  --config\t<path>\tConfiguration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile from the configuration file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles and exit")
	fmt.Fprintln(w, "  --aliases\t<path>\tAlias file of confirmed manual matches")
	fmt.Fprintln(w, "  --generate-aliases\t\tStore the top suggestion of each unmatched employee as a disabled alias")
	fmt.Fprintln(w, "  --verbose\t\tInclude matched detail and unmatched rows in the output")
	fmt.Fprintln(w, "  --debug\t\tTrace every pipeline step on stderr")
	fmt.Fprintln(w, "  --quiet\t\tSuppress progress output")
	fmt.Fprintln(w, "  --no-color\t\tDisable coloured output")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help [topic]\t\tShow this help, or a topic page")
	w.Flush()

	fmt.Fprintln(h.out)
	h.println("header", "EXAMPLES:")
	fmt.Fprintln(h.out, "  Basic Usage:")
	h.println("example", "    "+version.Name+" --pdf factura.pdf --registry empleados.xlsx")
	h.println("example", "    "+version.Name+" factura.pdf empleados.xlsx --similarity 0.8 --verbose")
	fmt.Fprintln(h.out, "  Output:")
	h.println("example", "    "+version.Name+" factura.pdf empleados.xlsx --format xlsx --out-file resultado.xlsx")
	h.println("example", "    "+version.Name+" factura.pdf empleados.xlsx --report standalone --output ./reportes")
	fmt.Fprintln(h.out, "  Configuration and Profiles:")
	h.println("example", "    "+version.Name+" factura.pdf empleados.xlsx --config costcenter.yaml --profile strict")
	h.println("example", "    "+version.Name+" --list-profiles")

	fmt.Fprintln(h.out)
	h.println("header", "CONFIGURATION:")
	fmt.Fprintln(h.out, "  Project config: costcenter.yaml or .costcenter-linker.yaml (current directory)")
	fmt.Fprintln(h.out, "  User config:    <user config dir>/costcenter-linker/config.yaml")
	fmt.Fprintln(h.out, "  Environment:    COSTCENTER_CONFIG_DIR overrides the user config directory")
	fmt.Fprintln(h.out, "  Precedence:     built-in < defaults: < profile < command-line flag")
	fmt.Fprintf(h.out, "  Topics:         %s --help topics\n", version.Name)
}

// ShowTopicsHelp lists every registered topic
func (h *System) ShowTopicsHelp() {
	h.println("title", "Help topics")
	fmt.Fprintln(h.out, "===========")
	fmt.Fprintln(h.out)

	names := make([]string, 0, len(h.providers))
	for name := range h.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		info := h.providers[name].GetTopicInfo()
		fmt.Fprint(w, "  ")
		h.colors["emphasis"].Fprint(w, info.Name)
		fmt.Fprintf(w, "\t%s\n", info.ShortDescription)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "For a topic page, use:")
	h.println("example", "  "+version.Name+" --help <topic>")
}

// ShowTopicHelp prints one topic and reports whether it exists
func (h *System) ShowTopicHelp(name string) bool {
	provider, ok := h.providers[strings.ToLower(name)]
	if !ok {
		h.colors["negative"].Fprintf(h.out, "Error: topic '%s' not found.\n", name)
		fmt.Fprintf(h.out, "Use '%s --help topics' to see the available topics.\n", version.Name)
		return false
	}

	info := provider.GetTopicInfo()
	h.println("title", strings.ToUpper(info.Name))
	fmt.Fprintln(h.out, strings.Repeat("=", len(info.Name)))
	fmt.Fprintln(h.out)
	if info.Details != "" {
		fmt.Fprintln(h.out, info.Details)
		fmt.Fprintln(h.out)
	}
	for _, item := range info.Items {
		fmt.Fprint(h.out, "  - ")
		h.println("item", item)
	}
	if len(info.Items) > 0 {
		fmt.Fprintln(h.out)
	}
	if len(info.Examples) > 0 {
		h.println("header", "EXAMPLES:")
		for _, ex := range info.Examples {
			h.println("example", "  "+ex)
		}
	}
	return true
}

func builtinTopics() []Provider {
	return []Provider{
		staticTopic{
			Name:             "matching",
			ShortDescription: "How invoice employees are linked to the registry",
			Details: "Every employee found in the invoice is first looked up by cédula. " +
				"Employees whose cédula is missing or unknown are then compared by name " +
				"against every registry row; the best score wins if it reaches the similarity threshold.",
			Items: []string{
				"cédulas are compared digits only, so 52.345.678 equals 52345678",
				"names are compared lower-cased, without accents or punctuation",
				"the name score is the best of a sequence ratio, shared words, and containment (0.8)",
				"on equal scores the first registry row wins",
				"unmatched employees get candidates scoring above 0.3 as suggestions",
			},
			Examples: []string{version.Name + " factura.pdf empleados.xlsx --similarity 0.85 --suggestions 5"},
		},
		staticTopic{
			Name:             "names",
			ShortDescription: "How concatenated registry names are rebuilt",
			Details: "Registry names often arrive as one upper-case word such as TRUJILLOPEREZMARIACLARA. " +
				"The report shows them as \"Maria Clara Trujillo Perez\".",
			Items: []string{
				"names that already contain spaces are only title-cased",
				"the overrides table is consulted next",
				"then known surnames and given names are located in the word",
				"otherwise the word is split near its middle, or capitalized as a last resort",
			},
			Examples: []string{
				"names:",
				"  surnames: [quintero]",
				"  overrides: {QUINTEROYESENIA: Yesenia Quintero}",
			},
		},
		staticTopic{
			Name:             "config",
			ShortDescription: "Configuration file reference",
			Items: []string{
				"defaults: format, similarity, suggestions, output_dir, report, report_statistics, verbose, debug, no_color",
				"registry: sheet, columns {name, id, cost_center}",
				"invoice: excluded_words, replace_excluded, max_pages",
				"names: surnames, given_names, overrides, replace_builtin",
				"aliases: file",
				"profiles: <name>: any defaults key, plus description and sheet",
			},
			Examples: []string{version.Name + " --config costcenter.yaml --list-profiles"},
		},
		staticTopic{
			Name:             "aliases",
			ShortDescription: "Confirmed manual matches",
			Details: "An alias maps an invoice name to a registry cédula. Enabled aliases are applied before " +
				"matching to employees whose cédula is missing or unknown to the registry.",
			Items: []string{
				"--generate-aliases stores the top suggestion of each unmatched employee, disabled",
				"generated aliases expire after 7 days unless enabled",
				"manage them with the costcenter-aliases tool",
			},
			Examples: []string{
				"costcenter-aliases --action list",
				"costcenter-aliases --action enable --id ALS-00000001 --reason \"verificado con nómina\"",
				"costcenter-aliases --action search --registry empleados.xlsx --query \"maria garcia\"",
			},
		},
		staticTopic{
			Name:             "formats",
			ShortDescription: "Console output formats",
			Items: []string{
				"text: coloured summary and table",
				"json, yaml: the full run, matched detail only with --verbose",
				"csv: one row per linked employee, safe to open in spreadsheets",
				"xlsx: workbook with consolidated, unmatched, suggestion and statistics sheets",
			},
			Examples: []string{version.Name + " factura.pdf empleados.xlsx --format json --out-file run.json"},
		},
	}
}
