package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/joincivil/wavs-rewards-client/pkg/clientmain"
	"github.com/joincivil/wavs-rewards-client/pkg/devnet"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

func mintCmds() []*cobra.Command {
	priceCmd := &cobra.Command{
		Use:   "price",
		Short: "Show the current mint price.",
		Args:  cobra.NoArgs,
		RunE: withComponents(func(ctx context.Context, c *clientmain.Components) error {
			fmt.Printf("%v ETH\n", utils.FormatEther(c.Minter.MintPrice(ctx)))
			return nil
		}),
	}

	mintCmd := &cobra.Command{
		Use:   "mint <prompt>",
		Short: "Pay the mint price to request an NFT for the prompt.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(func(ctx context.Context, c *clientmain.Components) error {
				triggerID, err := c.Minter.TriggerMint(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Mint requested with trigger id %v\n", triggerID)
				return nil
			})(cmd, args)
		},
	}

	pendingCmd := &cobra.Command{
		Use:   "pending-mints",
		Short: "List mints from the last 24 hours that are not fulfilled yet.",
		Args:  cobra.NoArgs,
		RunE: withComponents(func(ctx context.Context, c *clientmain.Components) error {
			if !c.Executor.Connected() {
				return model.ErrNotConnected
			}
			mints, err := c.Minter.PendingMints(c.Minter.Account())
			if err != nil {
				return err
			}
			return clientmain.PrintPendingMints(os.Stdout, mints)
		}),
	}

	nftsCmd := &cobra.Command{
		Use:   "nfts",
		Short: "List the NFTs held by the account.",
		Args:  cobra.NoArgs,
		RunE: withComponents(func(ctx context.Context, c *clientmain.Components) error {
			if c.Executor.Connected() {
				owned, err := c.Minter.ReloadOwnedNFTs(ctx)
				if err != nil {
					return err
				}
				return clientmain.PrintNFTs(os.Stdout, owned)
			}
			if c.Account == (common.Address{}) {
				return model.ErrNoAccount
			}
			owned, err := c.Collection.OwnedNFTs(ctx, c.Account)
			if err != nil {
				return err
			}
			return clientmain.PrintNFTs(os.Stdout, owned)
		}),
	}

	var pages int
	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "Page through the whole NFT collection.",
		Args:  cobra.NoArgs,
		RunE: withComponents(func(ctx context.Context, c *clientmain.Components) error {
			for i := 0; i < pages; i++ {
				if _, err := c.Explorer.LoadPage(ctx); err != nil {
					return err
				}
				if !c.Explorer.HasMore() {
					break
				}
			}
			fmt.Printf("Loaded %v of %v tokens\n", len(c.Explorer.NFTs()), c.Explorer.TotalSupply())
			return clientmain.PrintNFTs(os.Stdout, c.Explorer.NFTs())
		}),
	}
	exploreCmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")

	return []*cobra.Command{priceCmd, mintCmd, pendingCmd, nftsCmd, exploreCmd}
}

func faucetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "faucet [amount]",
		Short: "Set the account balance on a local Anvil node. Defaults to " + devnet.DefaultFaucetAmount + " ETH.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount := ""
			if len(args) == 1 {
				amount = args[0]
			}
			return withComponents(func(ctx context.Context, c *clientmain.Components) error {
				if c.Faucet == nil {
					return errors.New("the faucet needs REWARDS_LOCALHOST=true")
				}
				wei, err := c.Faucet.RequestEth(ctx, c.Account, amount)
				if err != nil {
					return err
				}
				fmt.Printf("Balance of %v set to %v ETH\n", c.Account.Hex(), utils.FormatEther(wei))
				return nil
			})(cmd, args)
		},
	}
}
