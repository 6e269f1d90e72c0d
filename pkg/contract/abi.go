// Package contract contains bindings for the WAVS minter, NFT collection,
// reward distributor and ERC-20 reward token contracts.
package contract // import "github.com/joincivil/wavs-rewards-client/pkg/contract"

const (
	// RewardDistributorABI is the subset of the merkle reward distributor used by the client
	RewardDistributorABI = `[
	{"type":"function","name":"root","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"ipfsHash","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"claimed","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"reward","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"addTrigger","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"claim","stateMutability":"nonpayable","inputs":[{"name":"account","type":"address"},{"name":"reward","type":"address"},{"name":"claimable","type":"uint256"},{"name":"proof","type":"bytes32[]"}],"outputs":[{"name":"amount","type":"uint256"}]},
	{"type":"event","name":"WavsRewardsTrigger","anonymous":false,"inputs":[{"name":"triggerId","type":"uint64","indexed":false}]},
	{"type":"event","name":"RewardsUpdate","anonymous":false,"inputs":[{"name":"triggerId","type":"uint64","indexed":false}]}
]`

	// ERC20ABI is the subset of ERC-20 used by the client
	ERC20ABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

	// WavsNftABI is the enumerable ERC-721 collection minted by the WAVS operator
	WavsNftABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"tokenByIndex","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"tokenOfOwnerByIndex","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"WavsNftMint","anonymous":false,"inputs":[{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":false},{"name":"dataUri","type":"string","indexed":false},{"name":"triggerId","type":"uint64","indexed":false}]}
]`

	// WavsMinterABI is the minter that accepts paid prompts and emits triggers
	WavsMinterABI = `[
	{"type":"function","name":"mintPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"triggerMint","stateMutability":"payable","inputs":[{"name":"prompt","type":"string"}],"outputs":[]},
	{"type":"event","name":"WavsNftTrigger","anonymous":false,"inputs":[{"name":"sender","type":"address","indexed":true},{"name":"prompt","type":"string","indexed":false},{"name":"triggerId","type":"uint64","indexed":false}]},
	{"type":"event","name":"MintFulfilled","anonymous":false,"inputs":[{"name":"triggerId","type":"uint64","indexed":false}]}
]`
)
