package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhuss/promptly/pkg/api"
	"github.com/rhuss/promptly/pkg/provider"
	"github.com/rhuss/promptly/pkg/provider/stub"
)

// Probe prompt texts.
const (
	probeUser   = "Tell me a joke about programming"
	probeSystem = "You are a humorous AI assistant."
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "promptly",
		Short:         "Run chat-completion workflows against an LLM provider",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: PROMPTLY_CONFIG or ./promptly.yaml)")

	rootCmd.AddCommand(
		newPlanCmd(&configPath),
		newAskCmd(&configPath),
		newChainCmd(&configPath),
		newProbeCmd(&configPath),
	)
	return rootCmd
}

func newPlanCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [topic]",
		Short: "Create a plan for a topic and expand its steps concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				topic := a.cfg.Workflow.Topic
				if len(args) == 1 {
					topic = args[0]
				}

				res, err := a.engine.ExecutePlan(ctx, topic)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Plan (%s):\n%s\n\n", res.RunID, res.Plan)
				fmt.Fprintf(out, "Results:\n%s\n", res.Aggregate)
				return nil
			})
		},
	}
}

func newAskCmd(configPath *string) *cobra.Command {
	var system string

	cmd := &cobra.Command{
		Use:   "ask <text>",
		Short: "Submit a single prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				answer, err := a.engine.Prompt(ctx, args[0], system)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), answer)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&system, "system", "", "System instruction")
	return cmd
}

func newChainCmd(configPath *string) *cobra.Command {
	var (
		system     string
		iterations int
	)

	cmd := &cobra.Command{
		Use:   "chain <text>",
		Short: "Feed each answer back as the next prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				n := iterations
				if !cmd.Flags().Changed("iterations") {
					n = a.cfg.Workflow.ChainIterations
				}

				turns, err := a.engine.Chain(ctx, args[0], system, n)
				if err != nil {
					return err
				}
				for _, t := range turns {
					fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n", t.Iteration, t.Response)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&system, "system", "", "System instruction")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Number of turns (default: workflow.chain_iterations)")
	return cmd
}

func newProbeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Time a fixed prompt against the stub and the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				providers := []provider.Provider{a.provider}
				if a.provider.Name() != "stub" {
					s := stub.New(stub.WithDelay(a.cfg.Stub.Delay), stub.WithLogger(a.logger))
					providers = []provider.Provider{s, a.provider}
				}

				prompt := api.NewPrompt(probeUser, probeSystem)
				for _, p := range providers {
					start := time.Now()
					answer, err := p.Complete(ctx, prompt)
					if err != nil {
						return fmt.Errorf("%s: %w", p.Name(), err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", p.Name(), time.Since(start).Round(time.Millisecond), answer)
				}
				return nil
			})
		},
	}
}
