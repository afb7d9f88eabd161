package stablelayer

import (
	"fmt"
	"strings"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
)

const (
	MainnetPackageID            = "0x41e25d09e20cf3bc43fe321e51ef178fac419ae47b783a7161982158fc9f17d6"
	MainnetRegistryID           = "0x213f4d584c0770f455bb98c94a4ee5ea9ddbc3d4ebb98a0ad6d093eb6da41642"
	MainnetInitialSharedVersion = 696362017
)

// Config locates the protocol contracts on a network.
type Config struct {
	PackageID            string
	RegistryID           string
	InitialSharedVersion uint64
}

// DefaultConfigs has the known deployments. No testnet deployment has been
// published.
func DefaultConfigs() map[domain.Network]Config {
	return map[domain.Network]Config{
		domain.Mainnet: {
			PackageID:            MainnetPackageID,
			RegistryID:           MainnetRegistryID,
			InitialSharedVersion: MainnetInitialSharedVersion,
		},
		domain.Testnet: {
			PackageID:  domain.PlaceholderCoinType,
			RegistryID: domain.PlaceholderCoinType,
		},
	}
}

// WithOverrides returns c with every non-empty override applied.
func (c Config) WithOverrides(packageID, registryID string, initialSharedVersion uint64) Config {
	if len(packageID) > 0 {
		c.PackageID = packageID
	}
	if len(registryID) > 0 {
		c.RegistryID = registryID
	}
	if initialSharedVersion > 0 {
		c.InitialSharedVersion = initialSharedVersion
	}
	return c
}

func (c Config) IsValid() bool {
	return len(c.Errors()) <= 0
}

func (c Config) Errors() []string {
	errs := make([]string, 0)

	if c.PackageID == domain.PlaceholderCoinType || len(c.PackageID) <= 0 {
		errs = append(errs, "package id not configured")
	} else if !strings.HasPrefix(c.PackageID, "0x") {
		errs = append(errs, "malformed package id")
	}

	if c.RegistryID == domain.PlaceholderCoinType || len(c.RegistryID) <= 0 {
		errs = append(errs, "stable registry id not configured")
	} else if !strings.HasPrefix(c.RegistryID, "0x") {
		errs = append(errs, "malformed stable registry id")
	}

	if c.InitialSharedVersion <= 0 {
		errs = append(errs, "initial shared version not configured")
	}

	return errs
}

func (c Config) target(module, function string) string {
	return fmt.Sprintf("%s::%s::%s", c.PackageID, module, function)
}
