// Package chain contains the components that read from and write to the
// WAVS contracts through a node connection.
package chain // import "github.com/joincivil/wavs-rewards-client/pkg/chain"

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"

	"github.com/joincivil/wavs-rewards-client/pkg/contract"
	"github.com/joincivil/wavs-rewards-client/pkg/ipfs"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	distributorName = "distributor"
	tokenName       = "token"
	nftName         = "nft"
	minterName      = "minter"
	nodeName        = "node"
)

// Backend is the node connection used by the reader and executor.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// ReaderParams are the params to initialize a new Reader
type ReaderParams struct {
	Backend     Backend
	Distributor common.Address
	RewardToken common.Address
	Nft         common.Address
	Minter      common.Address
	CIDVersion  int
}

// NewReader is a convenience function to init a Reader
func NewReader(params *ReaderParams) *Reader {
	return &Reader{
		backend:     params.Backend,
		rewardToken: params.RewardToken,
		cidVersion:  params.CIDVersion,
		distributor: contract.NewRewardDistributor(params.Distributor, params.Backend),
		nft:         contract.NewWavsNft(params.Nft, params.Backend),
		minter:      contract.NewWavsMinter(params.Minter, params.Backend),
	}
}

// Reader performs typed reads against the configured contracts. Every failure
// is returned as a *model.ReadError.
type Reader struct {
	backend     Backend
	rewardToken common.Address
	cidVersion  int
	distributor *contract.RewardDistributor
	nft         *contract.WavsNft
	minter      *contract.WavsMinter
}

// Backend returns the underlying node connection
func (r *Reader) Backend() Backend {
	return r.backend
}

// Distributor returns the distributor binding
func (r *Reader) Distributor() *contract.RewardDistributor {
	return r.distributor
}

// Nft returns the NFT collection binding
func (r *Reader) Nft() *contract.WavsNft {
	return r.nft
}

// Minter returns the minter binding
func (r *Reader) Minter() *contract.WavsMinter {
	return r.minter
}

// RewardToken returns the configured reward token
func (r *Reader) RewardToken() common.Address {
	return r.rewardToken
}

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func readErr(contractName string, method string, err error) error {
	return &model.ReadError{Contract: contractName, Method: method, Err: err}
}

// RewardState returns the current root and tree content id. It returns nil
// without error when either value is unset on chain.
func (r *Reader) RewardState(ctx context.Context) (*model.RewardState, error) {
	root, err := r.distributor.Root(callOpts(ctx))
	if err != nil {
		return nil, readErr(distributorName, "root", err)
	}
	digest, err := r.distributor.IpfsHash(callOpts(ctx))
	if err != nil {
		return nil, readErr(distributorName, "ipfsHash", err)
	}
	if ipfs.IsZeroDigest(root) || ipfs.IsZeroDigest(digest) {
		log.Infof("No reward state published on %v", r.distributor.Address().Hex())
		return nil, nil
	}
	contentID, err := ipfs.DigestToCID(digest, r.cidVersion)
	if err != nil {
		return nil, readErr(distributorName, "ipfsHash", err)
	}
	return &model.RewardState{MerkleRoot: root, ContentID: contentID}, nil
}

// ClaimedAmount returns the cumulative amount of token claimed by account
func (r *Reader) ClaimedAmount(ctx context.Context, account common.Address,
	token common.Address) (*big.Int, error) {
	claimed, err := r.distributor.Claimed(callOpts(ctx), account, token)
	if err != nil {
		return nil, readErr(distributorName, "claimed", err)
	}
	return claimed, nil
}

// ERC20Balance returns account's balance of token
func (r *Reader) ERC20Balance(ctx context.Context, token common.Address,
	account common.Address) (*big.Int, error) {
	balance, err := contract.NewERC20(token, r.backend).BalanceOf(callOpts(ctx), account)
	if err != nil {
		return nil, readErr(tokenName, "balanceOf", err)
	}
	return balance, nil
}

// ERC721Balance returns how many tokens of the collection at nft account holds
func (r *Reader) ERC721Balance(ctx context.Context, nft common.Address,
	account common.Address) (*big.Int, error) {
	balance, err := contract.NewWavsNftCaller(nft, r.backend).BalanceOf(callOpts(ctx), account)
	if err != nil {
		return nil, readErr(nftName, "balanceOf", err)
	}
	return balance, nil
}

// TokenInfo describes an ERC-20 token
type TokenInfo struct {
	Address  common.Address
	Name     string
	Symbol   string
	Decimals uint8
}

// ERC20Info returns the name, symbol and decimals of token
func (r *Reader) ERC20Info(ctx context.Context, token common.Address) (*TokenInfo, error) {
	erc20 := contract.NewERC20(token, r.backend)
	name, err := erc20.Name(callOpts(ctx))
	if err != nil {
		return nil, readErr(tokenName, "name", err)
	}
	symbol, err := erc20.Symbol(callOpts(ctx))
	if err != nil {
		return nil, readErr(tokenName, "symbol", err)
	}
	decimals, err := erc20.Decimals(callOpts(ctx))
	if err != nil {
		return nil, readErr(tokenName, "decimals", err)
	}
	return &TokenInfo{Address: token, Name: name, Symbol: symbol, Decimals: decimals}, nil
}

// NativeBalance returns the ETH balance of account
func (r *Reader) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := r.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, readErr(nodeName, "balance", err)
	}
	return balance, nil
}

// HasCode returns true if there is contract code at address
func (r *Reader) HasCode(ctx context.Context, address common.Address) (bool, error) {
	code, err := r.backend.CodeAt(ctx, address, nil)
	if err != nil {
		return false, readErr(nodeName, "code", err)
	}
	return len(code) > 0, nil
}

// MintPrice returns the minter's price in wei
func (r *Reader) MintPrice(ctx context.Context) (*big.Int, error) {
	price, err := r.minter.MintPrice(callOpts(ctx))
	if err != nil {
		return nil, readErr(minterName, "mintPrice", err)
	}
	return price, nil
}

// ChainID returns the connected network's chain id
func (r *Reader) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := r.backend.ChainID(ctx)
	if err != nil {
		return nil, readErr(nodeName, "chainId", err)
	}
	return id, nil
}

// NftTotalSupply returns the number of tokens in the collection
func (r *Reader) NftTotalSupply(ctx context.Context) (*big.Int, error) {
	total, err := r.nft.TotalSupply(callOpts(ctx))
	if err != nil {
		return nil, readErr(nftName, "totalSupply", err)
	}
	return total, nil
}

// NftTokenByIndex returns the id of the token at index in the whole collection
func (r *Reader) NftTokenByIndex(ctx context.Context, index int64) (*big.Int, error) {
	tokenID, err := r.nft.TokenByIndex(callOpts(ctx), big.NewInt(index))
	if err != nil {
		return nil, readErr(nftName, "tokenByIndex", err)
	}
	return tokenID, nil
}

// NftTokenOfOwnerByIndex returns the id of the owner's token at index
func (r *Reader) NftTokenOfOwnerByIndex(ctx context.Context, owner common.Address,
	index int64) (*big.Int, error) {
	tokenID, err := r.nft.TokenOfOwnerByIndex(callOpts(ctx), owner, big.NewInt(index))
	if err != nil {
		return nil, readErr(nftName, "tokenOfOwnerByIndex", err)
	}
	return tokenID, nil
}

// NftTokenURI returns the metadata URI of tokenID
func (r *Reader) NftTokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	uri, err := r.nft.TokenURI(callOpts(ctx), tokenID)
	if err != nil {
		return "", readErr(nftName, "tokenURI", err)
	}
	return uri, nil
}

// NftOwnerOf returns the owner of tokenID
func (r *Reader) NftOwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	owner, err := r.nft.OwnerOf(callOpts(ctx), tokenID)
	if err != nil {
		return common.Address{}, readErr(nftName, "ownerOf", err)
	}
	return owner, nil
}
