package devnet_test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/joincivil/wavs-rewards-client/pkg/devnet"
	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

var testAccount = common.HexToAddress("0xDFe273082089bB7f70Ee36Eebcde64832FE97E55")

// anvilService answers anvil_setBalance
type anvilService struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
}

func (s *anvilService) SetBalance(account common.Address, amount hexutil.Big) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[account] = amount.ToInt()
	return nil
}

func setupNode(t *testing.T) (*anvilService, *rpc.Client) {
	svc := &anvilService{balances: map[common.Address]*big.Int{}}
	server := rpc.NewServer()
	if err := server.RegisterName("anvil", svc); err != nil {
		t.Fatalf("Should have registered service: err: %v", err)
	}
	t.Cleanup(server.Stop)
	client := rpc.DialInProc(server)
	t.Cleanup(client.Close)
	return svc, client
}

func TestRequestEthDefault(t *testing.T) {
	svc, client := setupNode(t)
	faucet := devnet.NewFaucet(client)

	wei, err := faucet.RequestEth(context.Background(), testAccount, "")
	if err != nil {
		t.Fatalf("Should have set balance: err: %v", err)
	}
	expected := new(big.Int).Mul(big.NewInt(10), utils.WeiPerEther())
	if wei.Cmp(expected) != 0 || svc.balances[testAccount].Cmp(expected) != 0 {
		t.Errorf("Balance should be 10 ETH: %v %v", wei, svc.balances[testAccount])
	}
}

func TestRequestEthAmount(t *testing.T) {
	svc, client := setupNode(t)
	faucet := devnet.NewFaucet(client)

	_, err := faucet.RequestEth(context.Background(), testAccount, "2.5")
	if err != nil {
		t.Fatalf("Should have set balance: err: %v", err)
	}
	expected, _ := utils.ParseEther("2.5")
	if svc.balances[testAccount].Cmp(expected) != 0 {
		t.Errorf("Wrong balance: %v", svc.balances[testAccount])
	}

	if _, err := faucet.RequestEth(context.Background(), testAccount, "lots"); err == nil {
		t.Errorf("Should have rejected an invalid amount")
	}
	if _, err := faucet.RequestEth(context.Background(), common.Address{}, "1"); err == nil {
		t.Errorf("Should have rejected an empty account")
	}
}

func TestRequestEthUnsupportedNode(t *testing.T) {
	server := rpc.NewServer()
	defer server.Stop()
	client := rpc.DialInProc(server)
	defer client.Close()

	_, err := devnet.NewFaucet(client).RequestEth(context.Background(), testAccount, "1")
	if err == nil {
		t.Errorf("Should have failed on a node without anvil methods")
	}
}
