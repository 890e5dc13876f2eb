package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"callcenter-go/internal/report"
)

func (a *app) reporter() *report.Reporter {
	return report.New(a.client, a.log)
}

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Statistics, dashboard and Excel reports",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Project statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			st, ok := a.reporter().Statistics(cmd.Context(), pid)
			if !ok {
				fmt.Fprintln(a.out, report.Placeholder)
				return nil
			}
			if a.asJSON {
				return a.printJSON(st)
			}
			fmt.Fprintf(a.out, "Contacts: %d  calls: %d  answered: %d\n", st.TotalContacts, st.TotalCalls, st.AnsweredCalls)
			t := a.table("BREAKDOWN", "VALUE", "COUNT")
			for _, k := range sortedKeys(st.StatusCounts) {
				t.row("status", k, st.StatusCounts[k])
			}
			for _, k := range sortedKeys(st.ResultCounts) {
				t.row("result", k, st.ResultCounts[k])
			}
			for _, k := range sortedKeys(st.CallerCounts) {
				t.row("caller", k, st.CallerCounts[k])
			}
			return t.flush()
		},
	}

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Admin dashboard totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			d, ok := a.reporter().Dashboard(cmd.Context())
			if !ok {
				fmt.Fprintln(a.out, report.Placeholder)
				return nil
			}
			if a.asJSON {
				return a.printJSON(d)
			}
			t := a.table("METRIC", "VALUE")
			t.row("projects", d.TotalProjects)
			t.row("contacts", d.TotalContacts)
			t.row("callers", d.TotalCallers)
			t.row("calls", d.TotalCalls)
			t.row("calls today", d.CallsToday)
			for _, k := range sortedKeys(d.StatusCounts) {
				t.row("status "+k, d.StatusCounts[k])
			}
			return t.flush()
		},
	}

	var (
		out    string
		params []string
	)
	download := &cobra.Command{
		Use:   "download <kind>",
		Short: "Download a server-generated workbook (e.g. contacts, calls)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			q := url.Values{}
			if a.projectID > 0 {
				q.Set("project_id", fmt.Sprint(a.projectID))
			}
			for _, p := range params {
				k, v, ok := strings.Cut(p, "=")
				if !ok {
					return fmt.Errorf("--param %q: want key=value", p)
				}
				q.Add(k, v)
			}
			dest := out
			if dest == "" {
				dest = a.cfg.DownloadDir
			}
			path, err := a.reporter().DownloadExcel(cmd.Context(), args[0], q, dest)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved %s.\n", path)
			return nil
		},
	}
	download.Flags().StringVarP(&out, "out", "o", "", "file or directory (default: download_dir)")
	download.Flags().StringArrayVar(&params, "param", nil, "extra query parameter key=value, repeatable")

	inspect := &cobra.Command{
		Use:   "inspect <file.xlsx>",
		Short: "List the sheets of a workbook with row counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheets, err := report.InspectWorkbook(args[0])
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(sheets)
			}
			t := a.table("SHEET", "ROWS", "HEADER")
			for _, s := range sheets {
				t.row(s.Name, s.Rows, strings.Join(s.Header, ", "))
			}
			return t.flush()
		},
	}

	cmd.AddCommand(stats, dashboard, download, inspect)
	return cmd
}
