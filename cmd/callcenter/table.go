package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

type table struct {
	w *tabwriter.Writer
}

func (a *app) table(header ...string) *table {
	t := &table{w: tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)}
	t.row(toAny(header)...)
	return t
}

func (t *table) row(cols ...interface{}) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(t.w, strings.Join(parts, "\t"))
}

func (t *table) flush() error { return t.w.Flush() }

func toAny(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
