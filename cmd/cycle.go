package cmd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Run the deadline cycle and dispatch alerts now?",
	Items: []string{PromptYes, PromptNo},
}

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one deadline evaluation cycle immediately",
	Run: func(cmd *cobra.Command, _ []string) {
		runCycle(cmd)
	},
}

func init() {
	rootCmd.AddCommand(cycleCmd)

	cycleCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before dispatching alerts")
}

func runCycle(cmd *cobra.Command) {
	ctx := context.Background()

	logger, _, runtime := bootstrap(ctx)

	if cmd.Flag("auto-approve").Value.String() == "false" {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action == PromptNo {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	outcomes, err := runtime.runner.RunDeadlineCycle(ctx, time.Now().UTC())
	if err != nil {
		logger.Fatal("deadline cycle failed", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(outcomes, "", "  ")
	logger.Info(string(pretty), zap.Int("outcomes", len(outcomes)))
}
