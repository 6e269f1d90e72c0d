package persistence

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

// NewLevelDBPersister opens or creates a leveldb database at path
func NewLevelDBPersister(path string) (*LevelDBPersister, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening leveldb at %v", path)
	}
	return &LevelDBPersister{db: db}, nil
}

// NewLevelDBPersisterFromStorage opens a leveldb database on the given storage
func NewLevelDBPersisterFromStorage(stor storage.Storage) (*LevelDBPersister, error) {
	db, err := leveldb.Open(stor, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error opening leveldb")
	}
	return &LevelDBPersister{db: db}, nil
}

// LevelDBPersister keeps claim history and pending mints in a local leveldb.
// Each claim record is its own key, ordered by a per account sequence number.
type LevelDBPersister struct {
	db *leveldb.DB
	// serializes sequence allocation for appends
	appendMu sync.Mutex
}

func claimRecordPrefix(account common.Address) []byte {
	return []byte(claimHistoryKey(account) + ":")
}

// ClaimHistory returns the claim records for the account, oldest first
func (l *LevelDBPersister) ClaimHistory(account common.Address) ([]*model.ClaimRecord, error) {
	iter := l.db.NewIterator(util.BytesPrefix(claimRecordPrefix(account)), nil)
	defer iter.Release()
	records := []*model.ClaimRecord{}
	for iter.Next() {
		record, err := decodeClaimRecord(iter.Value())
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "error iterating claim history")
	}
	return records, nil
}

// AppendClaimRecord adds a record to the account's history
func (l *LevelDBPersister) AppendClaimRecord(record *model.ClaimRecord) error {
	data, err := encodeClaimRecord(record)
	if err != nil {
		return err
	}
	l.appendMu.Lock()
	defer l.appendMu.Unlock()

	prefix := claimRecordPrefix(record.Account())
	seq, err := l.nextSequence(prefix)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s%020d", prefix, seq)
	return errors.Wrap(l.db.Put([]byte(key), data, nil), "error saving claim record")
}

func (l *LevelDBPersister) nextSequence(prefix []byte) (uint64, error) {
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	if !iter.Last() {
		return 0, iter.Error()
	}
	last := strings.TrimPrefix(string(iter.Key()), string(prefix))
	seq, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid claim record key %v", string(iter.Key()))
	}
	return seq + 1, nil
}

// PendingMints returns all stored pending mints for the account, oldest first
func (l *LevelDBPersister) PendingMints(account common.Address) ([]*model.PendingMint, error) {
	data, err := l.db.Get([]byte(pendingMintsKey(account)), nil)
	if err == leveldb.ErrNotFound {
		return []*model.PendingMint{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "error reading pending mints")
	}
	return decodePendingMints(data)
}

// SavePendingMints replaces the stored pending mints for the account
func (l *LevelDBPersister) SavePendingMints(account common.Address, mints []*model.PendingMint) error {
	key := []byte(pendingMintsKey(account))
	if len(mints) == 0 {
		return errors.Wrap(l.db.Delete(key, nil), "error clearing pending mints")
	}
	data, err := encodePendingMints(mints)
	if err != nil {
		return err
	}
	return errors.Wrap(l.db.Put(key, data, nil), "error saving pending mints")
}

// Close closes the database
func (l *LevelDBPersister) Close() error {
	return l.db.Close()
}
