package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wayfare-dev/wayfare/internal/config"
)

func routesCmd() *cobra.Command {
	var resolve string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Validate and list the route table",
		Long: `Load wayfare.json, validate the route table, and print it in
match order. The table is rejected unless the last entry is a
catch-all, so every URL resolves to some view.

Examples:
  wayfare routes
  wayfare routes --resolve /users/42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(resolve)
		},
	}

	cmd.Flags().StringVarP(&resolve, "resolve", "r", "", "Resolve a URL against the table and exit")

	return cmd
}

func runRoutes(resolve string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	table, err := cfg.BuildTable()
	if err != nil {
		return err
	}

	if resolve != "" {
		m := table.Match(resolve)
		success("%s → %s", resolve, m.Name)
		for name, value := range m.Params {
			info("%s = %s", name, value)
		}
		return nil
	}

	success("Route table is valid (%d routes)", table.Len())
	fmt.Println()
	for i, r := range table.Routes() {
		marker := " "
		if r.IsCatchAll() {
			marker = "*"
		}
		fmt.Printf("  %2d %s %-20s %s\n", i+1, marker, r.Name, r.Pattern)
	}
	fmt.Println()

	return nil
}
