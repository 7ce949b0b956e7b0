package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/gotag/pkg/release"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(f string) error {
	switch f {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", f)
}

func renderReport(w io.Writer, format string, report *release.Report) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}
	return renderText(w, report)
}

func renderText(w io.Writer, report *release.Report) error {
	fmt.Fprintf(w, "release %s (%s): %s\n", report.Version, report.Mode, stateLabel(report.State))
	if len(report.Results) == 0 {
		return nil
	}
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("STATUS", "REPOSITORY", "TAG", "ERROR")
	for _, res := range report.Results {
		table.AddRow(statusLabel(res.Status), res.Repo, string(res.Tag), res.Error)
	}
	_, err := fmt.Fprintln(w, table)
	return err
}

func stateLabel(s release.State) string {
	switch s {
	case release.StateCompleted:
		return color.GreenString(string(s))
	case release.StatePartiallyCompleted:
		return color.RedString(string(s))
	}
	return color.YellowString(string(s))
}

func statusLabel(s release.Status) string {
	switch s {
	case release.StatusCreated:
		return color.GreenString(string(s))
	case release.StatusFailed:
		return color.RedString(string(s))
	case release.StatusSkipped:
		return color.YellowString(string(s))
	}
	return string(s)
}
