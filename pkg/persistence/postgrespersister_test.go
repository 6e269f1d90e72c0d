// +build integration

// This is an integration test file for postgrespersister. Postgres needs to be running.
// Run this using go test -tags=integration
package persistence

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/persistence/postgres"
)

const (
	postgresPort             = 5432
	postgresDBName           = "wavs_rewards"
	postgresUser             = "docker"
	postgresPswd             = "docker"
	postgresHost             = "localhost"
	claimRecordTestTableName = "claim_record_test"
	pendingMintTestTableName = "pending_mint_test"
	testAddress              = "0xDFe273082089bB7f70Ee36Eebcde64832FE97E55"
	testRewardTokenAddress   = "0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d"
)

func setupTestTables() (*PostgresPersister, error) {
	persister, err := NewPostgresPersister(postgresHost, postgresPort, postgresUser, postgresPswd, postgresDBName)
	if err != nil {
		return nil, fmt.Errorf("Error setting up new persister: err: %v", err)
	}
	persister.claimRecordTable = claimRecordTestTableName
	persister.pendingMintTable = pendingMintTestTableName
	err = persister.CreateTables()
	if err != nil {
		return nil, fmt.Errorf("Error setting up tables in db: %v", err)
	}
	return persister, nil
}

func deleteTestTables(t *testing.T, persister *PostgresPersister) {
	for _, tableName := range []string{claimRecordTestTableName, pendingMintTestTableName} {
		_, err := persister.db.Exec(postgres.DropTableQuery(tableName))
		if err != nil {
			t.Errorf("Couldn't delete test table %s: %v", tableName, err)
		}
	}
}

func TestPostgresClaimHistory(t *testing.T) {
	persister, err := setupTestTables()
	if err != nil {
		t.Fatalf("Error connecting to DB: %v", err)
	}
	defer persister.Close()
	defer deleteTestTables(t, persister)

	account := common.HexToAddress(testAddress)
	large, _ := new(big.Int).SetString("1000000000000000000000000", 10)
	for i := int64(1); i <= 3; i++ {
		record := model.NewClaimRecord(&model.ClaimRecordParams{
			Account:     account,
			RewardToken: common.HexToAddress(testRewardTokenAddress),
			Claimable:   new(big.Int).Mul(large, big.NewInt(i)),
			Claimed:     large,
			Timestamp:   i,
			TxHash:      common.BigToHash(big.NewInt(i)),
		})
		err = persister.AppendClaimRecord(record)
		if err != nil {
			t.Errorf("Error saving claim record: %v", err)
		}
	}

	var numRows int
	err = persister.db.QueryRow(postgres.CheckTableCount(claimRecordTestTableName)).Scan(&numRows)
	if err != nil {
		t.Errorf("Problem getting count from table: %v", err)
	}
	if numRows != 3 {
		t.Errorf("Number of rows in table should be 3 but is: %v", numRows)
	}

	history, err := persister.ClaimHistory(account)
	if err != nil {
		t.Fatalf("Error getting claim history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("Should have 3 records but have %v", len(history))
	}
	if history[0].Timestamp() != 1 || history[2].Claimable().Cmp(new(big.Int).Mul(large, big.NewInt(3))) != 0 {
		t.Errorf("Records are not what they should be: %v %v", history[0].Timestamp(), history[2].Claimable())
	}

	other, err := persister.ClaimHistory(common.HexToAddress(testRewardTokenAddress))
	if err != nil || len(other) != 0 {
		t.Errorf("Other account should have no history: %v %v", other, err)
	}
}

func TestPostgresPendingMints(t *testing.T) {
	persister, err := setupTestTables()
	if err != nil {
		t.Fatalf("Error connecting to DB: %v", err)
	}
	defer persister.Close()
	defer deleteTestTables(t, persister)

	account := common.HexToAddress(testAddress)
	mints := []*model.PendingMint{
		model.NewPendingMint(&model.PendingMintParams{TriggerID: "1", Prompt: "a", Timestamp: 10, StartProgress: 5}),
		model.NewPendingMint(&model.PendingMintParams{TriggerID: "2", Prompt: "b", Timestamp: 20}),
	}
	err = persister.SavePendingMints(account, mints)
	if err != nil {
		t.Fatalf("Error saving pending mints: %v", err)
	}
	err = persister.SavePendingMints(account, mints[1:])
	if err != nil {
		t.Fatalf("Error replacing pending mints: %v", err)
	}
	loaded, err := persister.PendingMints(account)
	if err != nil {
		t.Fatalf("Error getting pending mints: %v", err)
	}
	if len(loaded) != 1 || loaded[0].TriggerID() != "2" {
		t.Errorf("Pending mints should have been replaced: %v", loaded)
	}
}
