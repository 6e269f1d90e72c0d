package postgres // import "github.com/joincivil/wavs-rewards-client/pkg/persistence/postgres"

import (
	"fmt"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	// PendingMintTableName is the name of the pending mint table
	PendingMintTableName = "pending_mint"
)

// CreatePendingMintTableQuery returns the query to create the pending_mint table
func CreatePendingMintTableQuery() string {
	return CreatePendingMintTableQueryString(PendingMintTableName)
}

// CreatePendingMintTableQueryString returns the query to create this table
func CreatePendingMintTableQueryString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            id SERIAL PRIMARY KEY,
            account TEXT NOT NULL,
            trigger_id TEXT,
            prompt TEXT,
            timestamp BIGINT,
            start_progress DOUBLE PRECISION
        );
        CREATE INDEX IF NOT EXISTS %s ON %s (account);
    `, tableName, tableName+"_account_idx", tableName)
	return queryString
}

// PendingMint is the model definition for the pending_mint table
type PendingMint struct {
	Account string `db:"account"`

	TriggerID string `db:"trigger_id"`

	Prompt string `db:"prompt"`

	Timestamp int64 `db:"timestamp"`

	StartProgress float64 `db:"start_progress"`
}

// NewPendingMint constructs a pending mint for DB from a model.PendingMint
func NewPendingMint(account string, mint *model.PendingMint) *PendingMint {
	return &PendingMint{
		Account:       account,
		TriggerID:     mint.TriggerID(),
		Prompt:        mint.Prompt(),
		Timestamp:     mint.Timestamp(),
		StartProgress: mint.StartProgress(),
	}
}

// DbToPendingMintData creates a model.PendingMint from the db row
func (p *PendingMint) DbToPendingMintData() *model.PendingMint {
	return model.NewPendingMint(&model.PendingMintParams{
		TriggerID:     p.TriggerID,
		Prompt:        p.Prompt,
		Timestamp:     p.Timestamp,
		StartProgress: p.StartProgress,
	})
}
