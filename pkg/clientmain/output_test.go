package clientmain_test

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/wavs-rewards-client/pkg/clientmain"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/rewards"
)

func TestPrintView(t *testing.T) {
	eth := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	v := rewards.View{
		Status:  rewards.StatusReady,
		Account: common.HexToAddress("0x01"),
		State:   &model.RewardState{ContentID: "bafkreitest"},
		PendingReward: &model.RewardEntry{
			Claimable: new(big.Int).Mul(eth, big.NewInt(3)),
		},
		ClaimedAmount: eth,
		Sources: []*model.RewardSource{
			{Name: model.ERC721SourceName, Balance: big.NewInt(2)},
		},
		PendingUpdate: "7",
	}
	buf := &bytes.Buffer{}
	if err := clientmain.PrintView(buf, v); err != nil {
		t.Fatalf("Should have printed view: err: %v", err)
	}
	out := buf.String()
	for _, expected := range []string{"bafkreitest", "Can claim:", "true", "holding 2", "Pending update:"} {
		if !strings.Contains(out, expected) {
			t.Errorf("Output should contain %q: %v", expected, out)
		}
	}
}

func TestPrintViewAbsent(t *testing.T) {
	buf := &bytes.Buffer{}
	_ = clientmain.PrintView(buf, rewards.View{Status: rewards.StatusReady})
	if !strings.Contains(buf.String(), "none published") {
		t.Errorf("Absent state should be reported: %v", buf.String())
	}
}

func TestPrintPendingMints(t *testing.T) {
	buf := &bytes.Buffer{}
	mints := []*model.PendingMint{
		model.NewPendingMint(&model.PendingMintParams{TriggerID: "42", Prompt: "a lighthouse", Timestamp: 0}),
	}
	_ = clientmain.PrintPendingMints(buf, mints)
	if !strings.Contains(buf.String(), "42") || !strings.Contains(buf.String(), "1970-01-01 00:00:00") {
		t.Errorf("Wrong pending mint output: %v", buf.String())
	}
}
