package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// table writes tab-aligned rows; headers are i18n keys.
type table struct {
	w *tabwriter.Writer
}

func (a *app) newTable(headerKeys ...string) *table {
	t := &table{w: tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)}
	headers := make([]string, 0, len(headerKeys))
	for _, key := range headerKeys {
		headers = append(headers, strings.ToUpper(a.tr.T(key)))
	}
	t.row(headers...)
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.w.Flush()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func printLines(w io.Writer, lines ...string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
