package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/actuate"
	"github.com/ZevCorp/iu-screenagent/internal/agent"
	"github.com/ZevCorp/iu-screenagent/internal/config"
	"github.com/ZevCorp/iu-screenagent/internal/gateway"
	"github.com/ZevCorp/iu-screenagent/internal/observability"
	"github.com/ZevCorp/iu-screenagent/internal/schemas"
	"github.com/ZevCorp/iu-screenagent/internal/screen"
)

// newRunCmd creates and configures the `run` command, which executes one
// action loop against the live screen.
func newRunCmd() *cobra.Command {
	var (
		goal string
		app  string
		hint string
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the action loop until the goal is reached or the budget is spent",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the context passed from main.go (signal-aware).
			ctx := cmd.Context()
			logger := observability.GetLogger()

			gw, err := gateway.New(ctx, cfg.LLM, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize reasoning gateway: %w", err)
			}

			deps := agent.Deps{
				Gateway: gw,
				Logger:  logger,
				Bus:     agent.NewEventBus(logger, 64),
			}
			defer deps.Bus.Shutdown()

			switch cfg.Screen.Driver {
			case config.DriverCDP:
				session, err := actuate.NewCDPSession(ctx, cfg.Screen.CDPURL, logger)
				if err != nil {
					return fmt.Errorf("failed to open browser session: %w", err)
				}
				defer session.Close()
				deps.Capturer = screen.NewCapturer(screen.NopOverlay{}, session, cfg.Screen, logger)
				deps.Executor = actuate.NewExecutor(session, cfg.Agent.HoverPause, logger)
				deps.Launcher = session
			default:
				deps.Capturer = screen.NewCapturer(screen.NopOverlay{}, screen.NativeDisplay{}, cfg.Screen, logger)
				deps.Executor = actuate.NewExecutor(actuate.NativeInput{}, cfg.Agent.HoverPause, logger)
				deps.Launcher = actuate.NewNativeLauncher(logger)
			}

			if cfg.Debug.Enabled {
				recorder, err := screen.NewRecorder(cfg.Debug.Directory, logger)
				if err != nil {
					return fmt.Errorf("failed to initialize debug recorder: %w", err)
				}
				deps.Recorder = recorder
			}

			// Mirror lifecycle events to the log so progress is visible.
			events, cancelSub := deps.Bus.Subscribe()
			defer cancelSub()
			go func() {
				for evt := range events {
					logger.Info("Lifecycle event",
						zap.String("phase", string(evt.Phase)),
						zap.Any("fields", evt.Fields),
					)
				}
			}()

			ag := agent.NewScreenAgent(deps, cfg.Agent)
			result := ag.StartAction(ctx, schemas.GoalRequest{
				Goal:              goal,
				TargetApplication: app,
				StepHint:          hint,
			})

			fmt.Fprintf(cmd.OutOrStdout(), "success=%t iterations=%d\n", result.Success, result.IterationsUsed)
			if result.Error != "" {
				return fmt.Errorf("run ended without success: %s", result.Error)
			}
			if !result.Success {
				return fmt.Errorf("iteration budget exhausted after %d iterations", result.IterationsUsed)
			}
			return nil
		},
	}

	runCmd.Flags().StringVar(&goal, "goal", "", "goal the agent should accomplish (required)")
	runCmd.Flags().StringVar(&app, "app", "", "target application to bring to the foreground first")
	runCmd.Flags().StringVar(&hint, "hint", "", "hint for the current step of a larger plan")
	_ = runCmd.MarkFlagRequired("goal")

	return runCmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
