// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vehicle-search/pkg/registry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var registryPath string

	root := &cobra.Command{
		Use:           "registry-updater",
		Short:         "Inspect and edit the activity registry served by the worker manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&registryPath, "path", "p", "configs/activity-registry.json", "path to registry file")

	root.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			problems := reg.Check()
			for _, p := range problems {
				fmt.Fprintln(cmd.ErrOrStderr(), "  -", p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("registry validation failed with %d problem(s)", len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities, %d implemented.\n",
				len(reg.Activities), len(reg.Implemented()))
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "set <id> <field> <value>",
		Short: "Update one field of an activity (status, version, displayName, description, timeout, retries)",
		Example: `  registry-updater set query-vehicles status planned
  registry-updater set relax-vehicle-filters timeout 3s`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Set(args[0], args[1], args[2]); err != nil {
				return err
			}
			if err := reg.Save(registryPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", args[0], args[1], args[2])
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List activities and their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			for _, a := range reg.Activities {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-12s %-6s %s\n", a.TaskType, a.ImplementationStatus, a.Timeout, a.DisplayName)
			}
			return nil
		},
	})

	return root
}
