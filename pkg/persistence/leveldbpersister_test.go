package persistence_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/persistence"
)

var (
	testAccount      = common.HexToAddress("0xDFe273082089bB7f70Ee36Eebcde64832FE97E55")
	testOtherAccount = common.HexToAddress("0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d")
	testToken        = common.HexToAddress("0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9")
)

func setupLevelDB(t *testing.T) *persistence.LevelDBPersister {
	p, err := persistence.NewLevelDBPersisterFromStorage(storage.NewMemStorage())
	if err != nil {
		t.Fatalf("Should have opened leveldb: err: %v", err)
	}
	return p
}

func testRecord(account common.Address, claimable int64, claimed int64, ts int64) *model.ClaimRecord {
	return model.NewClaimRecord(&model.ClaimRecordParams{
		Account:     account,
		RewardToken: testToken,
		Claimable:   big.NewInt(claimable),
		Claimed:     big.NewInt(claimed),
		Timestamp:   ts,
		TxHash:      common.BigToHash(big.NewInt(ts)),
	})
}

func TestLevelDBClaimHistory(t *testing.T) {
	p := setupLevelDB(t)
	defer p.Close()

	history, err := p.ClaimHistory(testAccount)
	if err != nil || len(history) != 0 {
		t.Fatalf("Should have an empty history: %v %v", history, err)
	}

	// 12 records so sequence ordering is checked past a single digit
	for i := int64(1); i <= 12; i++ {
		if err := p.AppendClaimRecord(testRecord(testAccount, i*100, 100, i)); err != nil {
			t.Fatalf("Should have appended record: err: %v", err)
		}
	}
	if err := p.AppendClaimRecord(testRecord(testOtherAccount, 5, 5, 99)); err != nil {
		t.Fatalf("Should have appended record: err: %v", err)
	}

	history, err = p.ClaimHistory(testAccount)
	if err != nil {
		t.Fatalf("Should have read history: err: %v", err)
	}
	if len(history) != 12 {
		t.Fatalf("Wrong number of records: %v", len(history))
	}
	for i, record := range history {
		if record.Timestamp() != int64(i+1) {
			t.Errorf("Records should be oldest first, got %v at %v", record.Timestamp(), i)
		}
	}
	if history[11].Claimable().Int64() != 1200 || history[11].Claimed().Int64() != 100 {
		t.Errorf("Wrong amounts: %v %v", history[11].Claimable(), history[11].Claimed())
	}

	other, _ := p.ClaimHistory(testOtherAccount)
	if len(other) != 1 || other[0].Account() != testOtherAccount {
		t.Errorf("History should be kept per account: %v", other)
	}
}

func TestLevelDBDuplicateRecordsKept(t *testing.T) {
	p := setupLevelDB(t)
	defer p.Close()

	record := testRecord(testAccount, 1000, 600, 1)
	_ = p.AppendClaimRecord(record)
	_ = p.AppendClaimRecord(record)
	history, _ := p.ClaimHistory(testAccount)
	if len(history) != 2 {
		t.Errorf("History should not be deduplicated: %v", len(history))
	}
}

func TestLevelDBPendingMints(t *testing.T) {
	p := setupLevelDB(t)
	defer p.Close()

	mints := []*model.PendingMint{
		model.NewPendingMint(&model.PendingMintParams{TriggerID: "1", Prompt: "a", Timestamp: 10, StartProgress: 5}),
		model.NewPendingMint(&model.PendingMintParams{TriggerID: "2", Prompt: "b", Timestamp: 20}),
	}
	if err := p.SavePendingMints(testAccount, mints); err != nil {
		t.Fatalf("Should have saved pending mints: err: %v", err)
	}
	loaded, err := p.PendingMints(testAccount)
	if err != nil || len(loaded) != 2 {
		t.Fatalf("Should have loaded pending mints: %v %v", loaded, err)
	}
	if loaded[0].TriggerID() != "1" || loaded[0].StartProgress() != 5 || loaded[1].Prompt() != "b" {
		t.Errorf("Wrong pending mints: %+v %+v", loaded[0], loaded[1])
	}

	if err := p.SavePendingMints(testAccount, nil); err != nil {
		t.Fatalf("Should have cleared pending mints: err: %v", err)
	}
	loaded, _ = p.PendingMints(testAccount)
	if len(loaded) != 0 {
		t.Errorf("Pending mints should be cleared: %v", loaded)
	}
}
