package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSubmoduleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submodule",
		Short: "List or register nested repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			subs, err := r.Submodules()
			if err != nil {
				return err
			}
			for _, sm := range subs {
				line := sm.Name + "\t" + sm.Path
				if sm.URL != "" {
					line += "\t" + sm.URL
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <path> [url]",
		Short: "Register an initialized repository at path as a submodule",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			url := ""
			if len(args) == 3 {
				url = args[2]
			}
			if err := r.AddSubmodule(args[0], args[1], url); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added submodule %q at %s\n", args[0], args[1])
			return nil
		},
	})

	return cmd
}
