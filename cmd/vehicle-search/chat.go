// cmd/vehicle-search/chat.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"vehicle-search/internal/conversation"
)

func chatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive search with yes/no relaxation questions",
		Long: `Start an interactive session against the Query Service.

Commands inside the session:
  :tests   run the built-in requests
  :q       quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			session := conversation.NewSession(a.parser, a.engine, a.client(),
				cmd.InOrStdin(), cmd.OutOrStdout(), a.log)
			err := session.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func searchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Run one automated search, relaxing when nothing matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conversation.WriteOutcome(cmd.Context(), cmd.OutOrStdout(), a.searchService(), strings.Join(args, " "))
			return nil
		},
	}
	return cmd
}

func scenariosCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "Run the built-in requests against the Query Service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			session := conversation.NewSession(a.parser, a.engine, a.client(),
				strings.NewReader(""), cmd.OutOrStdout(), a.log)
			session.RunScenarios(ctx)
			return nil
		},
	}
}
