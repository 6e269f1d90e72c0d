// Package helpers contains various common helper functions.
// Normally they are shared functions used by the cmds.
package helpers

import (
	"context"

	log "github.com/golang/glog"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/notifier"
	"github.com/joincivil/wavs-rewards-client/pkg/persistence"
	"github.com/joincivil/wavs-rewards-client/pkg/scraper"
	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

// Persister is a helper function to return an initialized persister for the
// configured persister type
func Persister(config *utils.RewardsConfig) (model.ClientPersister, error) {
	var persister model.ClientPersister
	var err error
	switch config.PersisterType {
	case utils.PersisterTypePostgresql:
		persister, err = postgresPersister(config)
	case utils.PersisterTypeLevelDB:
		persister, err = persistence.NewLevelDBPersister(config.PersisterLeveldbPath)
	case utils.PersisterTypeRedis:
		persister, err = persistence.NewRedisPersister(
			config.PersisterRedisAddress,
			config.PersisterRedisPw,
			config.PersisterRedisDb,
		)
	default:
		// Default to the NullPersister
		persister = &persistence.NullPersister{}
	}
	if err != nil {
		return nil, err
	}
	return persister, nil
}

// MerkleTreeScraper returns the scraper for published reward trees
func MerkleTreeScraper(config *utils.RewardsConfig) *scraper.MerkleTreeScraper {
	return scraper.NewMerkleTreeScraper(config.IPFSGatewayURL, nil)
}

// TokenMetadataScraper returns the scraper for NFT metadata
func TokenMetadataScraper(config *utils.RewardsConfig) *scraper.TokenMetadataScraper {
	return scraper.NewTokenMetadataScraper(config.IPFSGatewayURL, nil)
}

// Notifier returns the pubsub notifier, or nil when no project is configured
func Notifier(ctx context.Context, config *utils.RewardsConfig) (*notifier.PubSubNotifier, error) {
	if config.PubSubProjectID == "" || config.PubSubTopicName == "" {
		log.Infof("Pubsub not configured, notifications disabled")
		return nil, nil
	}
	return notifier.NewPubSubNotifier(ctx, config.PubSubProjectID, config.PubSubTopicName)
}

func postgresPersister(config *utils.RewardsConfig) (*persistence.PostgresPersister, error) {
	persister, err := persistence.NewPostgresPersister(
		config.PersisterPostgresAddress,
		config.PersisterPostgresPort,
		config.PersisterPostgresUser,
		config.PersisterPostgresPw,
		config.PersisterPostgresDbname,
	)
	if err != nil {
		return nil, err
	}
	// Attempts to create all the necessary tables here
	err = persister.CreateTables()
	if err != nil {
		return nil, err
	}
	return persister, nil
}
