// Package utils contains various common utils separate by utility types
package utils

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron"
)

// PersisterType is the type of persister to use.
type PersisterType int

const (
	// PersisterTypeInvalid is an invalid persister value
	PersisterTypeInvalid PersisterType = iota

	// PersisterTypeNone is a persister that does nothing but return default values
	PersisterTypeNone

	// PersisterTypePostgresql is a persister that uses PostgreSQL as the backend
	PersisterTypePostgresql

	// PersisterTypeLevelDB is a persister that uses a local LevelDB directory
	PersisterTypeLevelDB

	// PersisterTypeRedis is a persister that uses Redis as the backend
	PersisterTypeRedis
)

var (
	// PersisterNameToType maps valid persister names to the types above
	PersisterNameToType = map[string]PersisterType{
		"none":       PersisterTypeNone,
		"postgresql": PersisterTypePostgresql,
		"leveldb":    PersisterTypeLevelDB,
		"redis":      PersisterTypeRedis,
	}
)

const (
	envVarPrefix = "rewards"

	// LocalEthAPIURL is the node used when the localhost flag is set
	LocalEthAPIURL = "http://127.0.0.1:8545"
	// HoleskyEthAPIURL is the public node used otherwise
	HoleskyEthAPIURL = "https://ethereum-holesky-rpc.publicnode.com"

	usageListFormat = `The rewards client is configured via environment vars only. The following environment variables can be used:
{{range .}}
{{usage_key .}}
  description: {{usage_description .}}
  type:        {{usage_type .}}
  default:     {{usage_default .}}
  required:    {{usage_required .}}
{{end}}
`
)

// RewardsConfig is the master config for the rewards client derived from environment
// variables.
type RewardsConfig struct {
	EthAPIURL string `envconfig:"eth_api_url" desc:"Ethereum API address, http(s) or ws(s). Defaults per localhost flag"`
	Localhost bool   `envconfig:"localhost" default:"false" desc:"Target a local anvil network"`

	MinterAddress      string `split_words:"true" default:"0x0000000000000000000000000000000000000000" desc:"WAVS NFT minter contract"`
	NftAddress         string `split_words:"true" default:"0x0000000000000000000000000000000000000000" desc:"WAVS NFT collection contract"`
	DistributorAddress string `split_words:"true" default:"0x0000000000000000000000000000000000000000" desc:"Merkle reward distributor contract"`
	RewardTokenAddress string `split_words:"true" default:"0x0000000000000000000000000000000000000000" desc:"ERC-20 reward token"`

	IPFSGatewayURL string `envconfig:"ipfs_gateway_url" default:"https://ipfs.io/ipfs/" desc:"IPFS HTTP gateway base URL"`
	IPFSCIDVersion int    `envconfig:"ipfs_cid_version" default:"1" desc:"CID version used to render on-chain digests (0 or 1)"`

	PrivateKey string `split_words:"true" desc:"Hex private key used to sign transactions. Empty runs read-only"`
	Account    string `split_words:"true" desc:"Account to reconcile when running read-only"`

	RefreshCron    string `split_words:"true" default:"@every 1m" desc:"Cron config string for periodic refresh"`
	MetricsAddress string `split_words:"true" desc:"If set, serves prometheus metrics on this address"`

	PersisterType            PersisterType `ignored:"true"`
	PersisterTypeName        string        `split_words:"true" default:"none" desc:"Sets the persister type to use"`
	PersisterLeveldbPath     string        `split_words:"true" desc:"If persister type is leveldb, sets the data directory"`
	PersisterPostgresAddress string        `split_words:"true" desc:"If persister type is Postgresql, sets the address"`
	PersisterPostgresPort    int           `split_words:"true" desc:"If persister type is Postgresql, sets the port"`
	PersisterPostgresDbname  string        `split_words:"true" desc:"If persister type is Postgresql, sets the database name"`
	PersisterPostgresUser    string        `split_words:"true" desc:"If persister type is Postgresql, sets the database user"`
	PersisterPostgresPw      string        `split_words:"true" desc:"If persister type is Postgresql, sets the database password"`
	PersisterRedisAddress    string        `split_words:"true" desc:"If persister type is redis, sets the host:port"`
	PersisterRedisPw         string        `split_words:"true" desc:"If persister type is redis, sets the password"`
	PersisterRedisDb         int           `split_words:"true" desc:"If persister type is redis, sets the database number"`

	PubSubProjectID string `envconfig:"pubsub_project_id" desc:"Sets GPubSub project ID. If not set, notifications are disabled"`
	PubSubTopicName string `envconfig:"pubsub_topic_name" desc:"Sets GPubSub topic name for claim and update notifications"`
}

// OutputUsage prints the usage string to os.Stdout
func (c *RewardsConfig) OutputUsage() {
	tabs := tabwriter.NewWriter(os.Stdout, 1, 0, 4, ' ', 0)
	_ = envconfig.Usagef(envVarPrefix, c, tabs, usageListFormat) // nolint: gosec
	_ = tabs.Flush()                                             // nolint: gosec
}

// PopulateFromEnv processes the environment vars, populates RewardsConfig
// with the respective values, and validates the values.
func (c *RewardsConfig) PopulateFromEnv() error {
	err := envconfig.Process(envVarPrefix, c)
	if err != nil {
		return err
	}

	if c.EthAPIURL == "" {
		c.EthAPIURL = HoleskyEthAPIURL
		if c.Localhost {
			c.EthAPIURL = LocalEthAPIURL
		}
	}

	err = c.validateCronConfig()
	if err != nil {
		return err
	}

	err = c.validateAPIURL()
	if err != nil {
		return err
	}

	err = c.validateAddresses()
	if err != nil {
		return err
	}

	err = c.validateIPFS()
	if err != nil {
		return err
	}

	err = c.validateSigner()
	if err != nil {
		return err
	}

	err = c.populatePersisterType()
	if err != nil {
		return err
	}

	return c.validatePersister()
}

// Minter returns the minter contract address
func (c *RewardsConfig) Minter() common.Address {
	return common.HexToAddress(c.MinterAddress)
}

// Nft returns the NFT collection address
func (c *RewardsConfig) Nft() common.Address {
	return common.HexToAddress(c.NftAddress)
}

// Distributor returns the reward distributor address
func (c *RewardsConfig) Distributor() common.Address {
	return common.HexToAddress(c.DistributorAddress)
}

// RewardToken returns the configured reward token address
func (c *RewardsConfig) RewardToken() common.Address {
	return common.HexToAddress(c.RewardTokenAddress)
}

// SigningKey returns the parsed private key, or nil when running read-only
func (c *RewardsConfig) SigningKey() (*ecdsa.PrivateKey, error) {
	if c.PrivateKey == "" {
		return nil, nil
	}
	return crypto.HexToECDSA(strings.TrimPrefix(c.PrivateKey, "0x"))
}

// AccountAddress returns the account to reconcile. The signer's address wins
// over the configured account.
func (c *RewardsConfig) AccountAddress() (common.Address, bool) {
	key, err := c.SigningKey()
	if err == nil && key != nil {
		return crypto.PubkeyToAddress(key.PublicKey), true
	}
	if c.Account != "" {
		return common.HexToAddress(c.Account), true
	}
	return common.Address{}, false
}

// RefreshSchedule parses the refresh cron string. Five field specs and
// descriptors such as "@every 30s" are accepted.
func (c *RewardsConfig) RefreshSchedule() (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser.Parse(c.RefreshCron)
}

func (c *RewardsConfig) validateCronConfig() error {
	_, err := c.RefreshSchedule()
	if err != nil {
		return fmt.Errorf("Invalid cron config: '%v'", c.RefreshCron)
	}
	return nil
}

// IsValidEthAPIURL returns true if the URL uses a scheme the eth client can dial
func IsValidEthAPIURL(url string) bool {
	for _, prefix := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(url, prefix) && len(url) > len(prefix) {
			return true
		}
	}
	return false
}

func (c *RewardsConfig) validateAPIURL() error {
	if c.EthAPIURL == "" || !IsValidEthAPIURL(c.EthAPIURL) {
		return fmt.Errorf("Invalid eth API URL: '%v'", c.EthAPIURL)
	}
	return nil
}

func (c *RewardsConfig) validateAddresses() error {
	addresses := map[string]string{
		"minter":       c.MinterAddress,
		"nft":          c.NftAddress,
		"distributor":  c.DistributorAddress,
		"reward token": c.RewardTokenAddress,
	}
	for name, addr := range addresses {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("Invalid %v address: '%v'", name, addr)
		}
	}
	if c.Account != "" && !common.IsHexAddress(c.Account) {
		return fmt.Errorf("Invalid account address: '%v'", c.Account)
	}
	return nil
}

func (c *RewardsConfig) validateIPFS() error {
	if !strings.HasPrefix(c.IPFSGatewayURL, "http://") && !strings.HasPrefix(c.IPFSGatewayURL, "https://") {
		return fmt.Errorf("Invalid IPFS gateway URL: '%v'", c.IPFSGatewayURL)
	}
	if c.IPFSCIDVersion != 0 && c.IPFSCIDVersion != 1 {
		return fmt.Errorf("Invalid CID version: %v", c.IPFSCIDVersion)
	}
	return nil
}

func (c *RewardsConfig) validateSigner() error {
	_, err := c.SigningKey()
	if err != nil {
		return errors.New("Invalid private key")
	}
	return nil
}

func (c *RewardsConfig) validatePersister() error {
	switch c.PersisterType {
	case PersisterTypePostgresql:
		return c.validatePostgresqlPersister()
	case PersisterTypeLevelDB:
		if c.PersisterLeveldbPath == "" {
			return errors.New("LevelDB path required")
		}
	case PersisterTypeRedis:
		if c.PersisterRedisAddress == "" {
			return errors.New("Redis address required")
		}
	}
	return nil
}

func (c *RewardsConfig) validatePostgresqlPersister() error {
	if c.PersisterPostgresAddress == "" {
		return errors.New("Postgresql address required")
	}
	if c.PersisterPostgresPort == 0 {
		return errors.New("Postgresql port required")
	}
	if c.PersisterPostgresDbname == "" {
		return errors.New("Postgresql db name required")
	}
	return nil
}

func (c *RewardsConfig) populatePersisterType() error {
	var err error
	c.PersisterType, err = PersisterTypeFromName(c.PersisterTypeName)
	return err
}

// PersisterTypeFromName returns the correct persisterType from the string name
func PersisterTypeFromName(typeStr string) (PersisterType, error) {
	pType, ok := PersisterNameToType[typeStr]
	if !ok {
		validNames := make([]string, len(PersisterNameToType))
		index := 0
		for name := range PersisterNameToType {
			validNames[index] = name
			index++
		}
		return PersisterTypeInvalid,
			fmt.Errorf("Invalid persister value: %v; valid types %v", typeStr, validNames)
	}
	return pType, nil
}
