package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wayfare-dev/wayfare/internal/config"
	"github.com/wayfare-dev/wayfare/internal/errors"
)

func initCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a wayfare.json in the current directory",
		Long: `Create a starter wayfare.json with a minimal route table.

The generated table has a home route and the required trailing
catch-all. Edit it to add your own views; order matters, and the
catch-all must stay last.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: directory name)")

	return cmd
}

func runInit(name string) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	if config.Exists(dir) {
		return errors.New("W004").
			WithDetail("wayfare.json already exists in " + dir).
			WithSuggestion("Edit the existing file, or remove it and run 'wayfare init' again")
	}

	if name == "" {
		name = filepath.Base(dir)
	}

	cfg := config.New()
	cfg.Name = name
	cfg.Routes = []config.RouteConfig{
		{Name: "home", Pattern: "/"},
		{Name: "not-found", Pattern: "/*rest"},
	}

	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return err
	}

	printBanner()
	success("Created %s", config.ConfigFileName)
	info("Run 'wayfare serve' to start the server")

	return nil
}
