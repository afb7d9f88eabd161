package domain

import "sort"

type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"

	DefaultNetwork = Mainnet
)

const (
	MainnetUSDCCoinType = "0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC"
	TestnetUSDCCoinType = "0xa1ec7fc00a6f40db9693ad1415d0c193ad3906494428cf252621037bd7117e29::usdc::USDC"

	// DefaultDecimals is assumed whenever coin metadata is unavailable.
	DefaultDecimals uint32 = 6
)

type NetworkConfig struct {
	Key          Network
	DisplayName  string
	USDCCoinType string
}

var networks = map[Network]NetworkConfig{
	Mainnet: {
		Key:          Mainnet,
		DisplayName:  "Mainnet",
		USDCCoinType: MainnetUSDCCoinType,
	},
	Testnet: {
		Key:          Testnet,
		DisplayName:  "Testnet",
		USDCCoinType: TestnetUSDCCoinType,
	},
}

func (n Network) String() string {
	return string(n)
}

func (n Network) Config() (NetworkConfig, bool) {
	cfg, ok := networks[n]
	return cfg, ok
}

func Networks() []Network {
	list := make([]Network, 0, len(networks))
	for n := range networks {
		list = append(list, n)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}
