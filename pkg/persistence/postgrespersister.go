package persistence // import "github.com/joincivil/wavs-rewards-client/pkg/persistence"

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	// driver for postgresql
	_ "github.com/lib/pq"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/persistence/postgres"
)

// NewPostgresPersister creates a new postgres persister
func NewPostgresPersister(host string, port int, user string, password string,
	dbname string) (*PostgresPersister, error) {
	pgPersister := &PostgresPersister{
		claimRecordTable: postgres.ClaimRecordTableName,
		pendingMintTable: postgres.PendingMintTableName,
	}
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
	db, err := sqlx.Connect("postgres", psqlInfo)
	if err != nil {
		return pgPersister, errors.Wrap(err, "error connecting to sqlx")
	}
	pgPersister.db = db
	return pgPersister, nil
}

// PostgresPersister holds the DB connection and persistence
type PostgresPersister struct {
	db               *sqlx.DB
	claimRecordTable string
	pendingMintTable string
}

// CreateTables creates the tables for the client if they don't exist
func (p *PostgresPersister) CreateTables() error {
	_, err := p.db.Exec(postgres.CreateClaimRecordTableQueryString(p.claimRecordTable))
	if err != nil {
		return errors.Wrapf(err, "error creating %v table in postgres", p.claimRecordTable)
	}
	_, err = p.db.Exec(postgres.CreatePendingMintTableQueryString(p.pendingMintTable))
	if err != nil {
		return errors.Wrapf(err, "error creating %v table in postgres", p.pendingMintTable)
	}
	return nil
}

// ClaimHistory returns the claim records for the account, oldest first
func (p *PostgresPersister) ClaimHistory(account common.Address) ([]*model.ClaimRecord, error) {
	queryString := fmt.Sprintf( // nolint: gosec
		"SELECT account, reward_token, claimable, claimed, timestamp, tx_hash FROM %s "+
			"WHERE account=$1 ORDER BY id;", p.claimRecordTable)
	dbRecords := []postgres.ClaimRecord{}
	err := p.db.Select(&dbRecords, queryString, account.Hex())
	if err != nil {
		return nil, errors.Wrap(err, "error retrieving claim records from table")
	}
	records := make([]*model.ClaimRecord, 0, len(dbRecords))
	for _, dbRecord := range dbRecords {
		record, err := dbRecord.DbToClaimRecordData()
		if err != nil {
			return nil, errors.Wrap(err, "error converting claim record")
		}
		records = append(records, record)
	}
	return records, nil
}

// AppendClaimRecord adds a record to the account's history
func (p *PostgresPersister) AppendClaimRecord(record *model.ClaimRecord) error {
	queryString := fmt.Sprintf( // nolint: gosec
		"INSERT INTO %s (account, reward_token, claimable, claimed, timestamp, tx_hash) "+
			"VALUES (:account, :reward_token, :claimable, :claimed, :timestamp, :tx_hash);",
		p.claimRecordTable)
	_, err := p.db.NamedExec(queryString, postgres.NewClaimRecord(record))
	if err != nil {
		return errors.Wrap(err, "error saving claim record to table")
	}
	return nil
}

// PendingMints returns all stored pending mints for the account, oldest first
func (p *PostgresPersister) PendingMints(account common.Address) ([]*model.PendingMint, error) {
	queryString := fmt.Sprintf( // nolint: gosec
		"SELECT account, trigger_id, prompt, timestamp, start_progress FROM %s "+
			"WHERE account=$1 ORDER BY id;", p.pendingMintTable)
	dbMints := []postgres.PendingMint{}
	err := p.db.Select(&dbMints, queryString, account.Hex())
	if err != nil {
		return nil, errors.Wrap(err, "error retrieving pending mints from table")
	}
	mints := make([]*model.PendingMint, len(dbMints))
	for i, dbMint := range dbMints {
		mints[i] = dbMint.DbToPendingMintData()
	}
	return mints, nil
}

// SavePendingMints replaces the stored pending mints for the account
func (p *PostgresPersister) SavePendingMints(account common.Address, mints []*model.PendingMint) error {
	tx, err := p.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "error starting pending mint transaction")
	}
	deleteString := fmt.Sprintf("DELETE FROM %s WHERE account=$1;", p.pendingMintTable) // nolint: gosec
	_, err = tx.Exec(deleteString, account.Hex())
	if err != nil {
		_ = tx.Rollback() // nolint: errcheck
		return errors.Wrap(err, "error clearing pending mints")
	}
	insertString := fmt.Sprintf( // nolint: gosec
		"INSERT INTO %s (account, trigger_id, prompt, timestamp, start_progress) "+
			"VALUES (:account, :trigger_id, :prompt, :timestamp, :start_progress);", p.pendingMintTable)
	for _, mint := range mints {
		_, err = tx.NamedExec(insertString, postgres.NewPendingMint(account.Hex(), mint))
		if err != nil {
			_ = tx.Rollback() // nolint: errcheck
			return errors.Wrap(err, "error saving pending mint to table")
		}
	}
	return tx.Commit()
}

// Close closes the db connection
func (p *PostgresPersister) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
