package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/joincivil/wavs-rewards-client/pkg/clientmain"
	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

// withComponents loads the config from the environment and runs fn with the
// initialized components
func withComponents(fn func(ctx context.Context, c *clientmain.Components) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		config := &utils.RewardsConfig{}
		err := config.PopulateFromEnv()
		if err != nil {
			config.OutputUsage()
			return fmt.Errorf("Invalid rewards client config: err: %v", err)
		}
		ctx, cancel := clientmain.SetupKillNotify(cmd.Context())
		defer cancel()

		c, err := clientmain.InitComponents(ctx, config)
		if err != nil {
			return err
		}
		defer c.Close()
		return fn(ctx, c)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rewardsclient",
		Short:         "Reconcile and claim WAVS NFT rewards.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(configCmd())
	root.AddCommand(rewardsCmds()...)
	root.AddCommand(mintCmds()...)
	root.AddCommand(faucetCmd())
	return root
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the environment variables used for configuration.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			config := &utils.RewardsConfig{}
			config.OutputUsage()
		},
	}
}

func main() {
	err := rootCmd().Execute()
	log.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
