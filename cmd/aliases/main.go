// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"costcenter-linker/internal/aliases"
	"costcenter-linker/internal/registry"
)

const dateLayout = "2006-01-02"

type options struct {
	action    string
	file      string
	name      string
	id        string
	reason    string
	expires   string
	registry  string
	sheet     string
	query     string
	limit     int
	noColor   bool
	createdBy string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("costcenter-aliases", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.action, "action", "list", "Action: list, add, remove, enable, disable, cleanup, search")
	fs.StringVar(&o.file, "file", "", "Alias file (default: user config directory)")
	fs.StringVar(&o.name, "name", "", "Invoice name to alias (add)")
	fs.StringVar(&o.id, "id", "", "Registry cédula (add) or alias id (remove, enable, disable)")
	fs.StringVar(&o.reason, "reason", "", "Why the alias is correct (add, enable)")
	fs.StringVar(&o.expires, "expires", "", "Expiry date YYYY-MM-DD (add)")
	fs.StringVar(&o.registry, "registry", "", "Registry workbook to search (search)")
	fs.StringVar(&o.sheet, "sheet", "", "Worksheet to search (search)")
	fs.StringVar(&o.query, "query", "", "Name to look for (search)")
	fs.IntVar(&o.limit, "limit", 10, "Maximum search results")
	fs.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if f, ok := stdout.(*os.File); o.noColor || !ok || !term.IsTerminal(int(f.Fd())) {
		color.NoColor = true
	}
	o.createdBy = currentUser()

	if err := execute(o, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

func execute(o options, out io.Writer) error {
	if o.action == "search" {
		return search(o, out)
	}

	m, err := aliases.NewManager(o.file)
	if err != nil {
		return err
	}

	switch o.action {
	case "list":
		list(m, out)
	case "add":
		if o.name == "" || o.id == "" {
			return errors.New("add requires --name and --id")
		}
		var expires *time.Time
		if o.expires != "" {
			t, err := time.Parse(dateLayout, o.expires)
			if err != nil {
				return fmt.Errorf("invalid --expires: %w", err)
			}
			expires = &t
		}
		rule, err := m.Add(o.name, o.id, o.reason, o.createdBy, expires)
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(out, "Added %s: %s -> %s\n", rule.ID, rule.SourceName, rule.RegistryID)
	case "remove", "enable", "disable":
		if o.id == "" {
			return fmt.Errorf("%s requires --id", o.action)
		}
		switch o.action {
		case "remove":
			err = m.Remove(o.id)
		case "enable":
			err = m.Enable(o.id, o.reason)
		default:
			err = m.Disable(o.id)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %sd\n", o.id, o.action)
	case "cleanup":
		n, err := m.CleanupExpired()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d expired aliases\n", n)
	default:
		return fmt.Errorf("unknown action %q (use list, add, remove, enable, disable, cleanup or search)", o.action)
	}
	return nil
}

func list(m *aliases.Manager, out io.Writer) {
	rules := m.List()
	if len(rules) == 0 {
		fmt.Fprintf(out, "No aliases in %s\n", m.Path())
		return
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tESTADO\tNOMBRE FACTURA\tCÉDULA\tREGISTRO\tVENCE")
	for _, r := range rules {
		state := color.New(color.FgGreen).Sprint("activo")
		switch {
		case r.Expired(now):
			state = color.New(color.FgRed).Sprint("vencido")
		case !r.Enabled:
			state = color.New(color.FgYellow).Sprint("pendiente")
		}
		expires := "-"
		if r.ExpiresAt != nil {
			expires = r.ExpiresAt.Format(dateLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, state, r.SourceName, r.RegistryID, r.RegistryName, expires)
	}
	w.Flush()
}

func search(o options, out io.Writer) error {
	if o.registry == "" || strings.TrimSpace(o.query) == "" {
		return errors.New("search requires --registry and --query")
	}
	wb, err := registry.Load(o.registry, registry.Options{Sheet: o.sheet})
	if err != nil {
		return err
	}
	hits := wb.Search(o.query, o.limit)
	if len(hits) == 0 {
		fmt.Fprintf(out, "No registry names match %q\n", o.query)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PUNTAJE\tNOMBRE\tCÉDULA\tCENTRO DE COSTO")
	for _, h := range hits {
		fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\n", h.Score, h.Record.Name, h.Record.ID, h.Record.CostCenter)
	}
	return w.Flush()
}
