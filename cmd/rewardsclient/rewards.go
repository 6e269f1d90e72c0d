package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joincivil/wavs-rewards-client/pkg/clientmain"
	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

func rewardsCmds() []*cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the reconciled rewards for the account.",
		Args:  cobra.NoArgs,
		RunE: withComponents(func(ctx context.Context, c *clientmain.Components) error {
			if err := c.LoadAccount(ctx); err != nil {
				return err
			}
			return clientmain.PrintView(os.Stdout, c.Reconciler.View())
		}),
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the rewards view current from events and the refresh schedule.",
		Args:  cobra.NoArgs,
		RunE: withComponents(func(ctx context.Context, c *clientmain.Components) error {
			return clientmain.RunWatch(ctx, c)
		}),
	}

	claimCmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim the pending reward for the signing account.",
		Args:  cobra.NoArgs,
		RunE: withComponents(func(ctx context.Context, c *clientmain.Components) error {
			if err := c.LoadAccount(ctx); err != nil {
				return err
			}
			record, err := c.Rewards.Claim(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Claimed %v in tx %v\n", utils.FormatEther(record.Claimed()), record.TxHash().Hex())
			return nil
		}),
	}

	triggerCmd := &cobra.Command{
		Use:   "trigger",
		Short: "Request a rewards update from the WAVS operators.",
		Args:  cobra.NoArgs,
		RunE: withComponents(func(ctx context.Context, c *clientmain.Components) error {
			if err := c.LoadAccount(ctx); err != nil {
				return err
			}
			txHash, err := c.Rewards.TriggerUpdate(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Update requested in tx %v, trigger id %v\n", txHash.Hex(),
				c.Reconciler.View().PendingUpdate)
			return nil
		}),
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List the local claim history of the account.",
		Args:  cobra.NoArgs,
		RunE: withComponents(func(ctx context.Context, c *clientmain.Components) error {
			if err := c.LoadAccount(ctx); err != nil {
				return err
			}
			records, err := c.Rewards.ClaimHistory()
			if err != nil {
				return err
			}
			return clientmain.PrintClaimRecords(os.Stdout, records)
		}),
	}

	return []*cobra.Command{statusCmd, watchCmd, claimCmd, triggerCmd, historyCmd}
}
