package clientmain

import (
	"fmt"
	"io"
	"math/big"
	"text/tabwriter"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/rewards"
	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
}

func amount(v *big.Int) string {
	if v == nil {
		return "-"
	}
	return utils.FormatEther(v)
}

// PrintView writes a readable summary of a rewards view
func PrintView(w io.Writer, v rewards.View) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Account:\t%v\n", v.Account.Hex())
	fmt.Fprintf(tw, "Status:\t%v\n", v.Status)
	if v.Err != nil {
		fmt.Fprintf(tw, "Error:\t%v\n", v.Err)
	}
	if v.State == nil {
		fmt.Fprintf(tw, "Rewards:\tnone published\n")
	} else {
		fmt.Fprintf(tw, "Merkle root:\t%v\n", v.State.MerkleRoot.Hex())
		fmt.Fprintf(tw, "Content id:\t%v\n", v.State.ContentID)
	}
	fmt.Fprintf(tw, "Reward token:\t%v\n", v.RewardToken.Hex())
	if v.PendingReward != nil {
		fmt.Fprintf(tw, "Claimable (cumulative):\t%v\n", amount(v.PendingReward.Claimable))
	} else {
		fmt.Fprintf(tw, "Claimable (cumulative):\t-\n")
	}
	fmt.Fprintf(tw, "Claimed:\t%v\n", amount(v.ClaimedAmount))
	fmt.Fprintf(tw, "Can claim:\t%v\n", v.CanClaim())
	fmt.Fprintf(tw, "Token balance:\t%v\n", amount(v.TokenBalance))
	for _, source := range v.Sources {
		line := fmt.Sprintf("%v %v", source.Name, source.Metadata.Address.Hex())
		if source.IsERC721() {
			line = fmt.Sprintf("%v, holding %v", line, source.Balance)
		}
		fmt.Fprintf(tw, "Source:\t%v\n", line)
	}
	if v.PendingUpdate != "" {
		fmt.Fprintf(tw, "Pending update:\t%v\n", v.PendingUpdate)
	}
	return tw.Flush()
}

// PrintClaimRecords writes the claim history as a table
func PrintClaimRecords(w io.Writer, records []*model.ClaimRecord) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tCLAIMABLE\tCLAIMED\tTX")
	for _, r := range records {
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\n",
			utils.MillisToTime(r.Timestamp()).UTC().Format("2006-01-02 15:04:05"),
			amount(r.Claimable()), amount(r.Claimed()), r.TxHash().Hex())
	}
	return tw.Flush()
}

// PrintPendingMints writes pending mints as a table
func PrintPendingMints(w io.Writer, mints []*model.PendingMint) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TRIGGER\tSUBMITTED\tPROMPT")
	for _, p := range mints {
		fmt.Fprintf(tw, "%v\t%v\t%v\n", p.TriggerID(),
			utils.MillisToTime(p.Timestamp()).UTC().Format("2006-01-02 15:04:05"), p.Prompt())
	}
	return tw.Flush()
}

// PrintNFTs writes tokens as a table
func PrintNFTs(w io.Writer, nfts []*model.NFT) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TOKEN\tNAME\tOWNER\tIMAGE")
	for _, n := range nfts {
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\n", n.TokenID(), n.Name(), n.Owner().Hex(), n.ImageURL())
	}
	return tw.Flush()
}
