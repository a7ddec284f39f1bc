package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"tenorfi/native/flash"
)

// Mainnet deployments of the canonical factories. These are the defaults a
// blank config resolves to.
const (
	DefaultV2Factory      = "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"
	DefaultV2InitCodeHash = "0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f"
	DefaultV3Factory      = "0x1F98431c8aD98523631AE4a59f267346ea31F984"
	DefaultV3InitCodeHash = "0xe34f199b19b2b4f47f68442619d555527d244f78a3297ea89325f843f87b8b54"
)

type Config struct {
	AMM         AMMConfig         `toml:"AMM"`
	Liquidation LiquidationConfig `toml:"Liquidation"`
}

// AMMConfig pins the factory addresses and init code hashes used for
// callback authentication.
type AMMConfig struct {
	V2Factory      string `toml:"V2Factory"`
	V2InitCodeHash string `toml:"V2InitCodeHash"`
	V3Factory      string `toml:"V3Factory"`
	V3InitCodeHash string `toml:"V3InitCodeHash"`
}

// LiquidationConfig identifies the adapter account, its owner, and the
// optional shortfall subsidizer.
type LiquidationConfig struct {
	Adapter    string `toml:"Adapter"`
	Owner      string `toml:"Owner"`
	Subsidizer string `toml:"Subsidizer"`
}

// Load reads the TOML config at path, fills in factory defaults, and
// validates every address field. A missing file yields the defaults with an
// unset adapter identity.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.applyDefaults()
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.AMM.V2Factory) == "" {
		c.AMM.V2Factory = DefaultV2Factory
	}
	if strings.TrimSpace(c.AMM.V2InitCodeHash) == "" {
		c.AMM.V2InitCodeHash = DefaultV2InitCodeHash
	}
	if strings.TrimSpace(c.AMM.V3Factory) == "" {
		c.AMM.V3Factory = DefaultV3Factory
	}
	if strings.TrimSpace(c.AMM.V3InitCodeHash) == "" {
		c.AMM.V3InitCodeHash = DefaultV3InitCodeHash
	}
}

// Validate checks that every populated field parses as an address or hash.
// Adapter and Owner must be set; Subsidizer may be empty, which disables the
// subsidy path.
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"AMM.V2Factory":       c.AMM.V2Factory,
		"AMM.V3Factory":       c.AMM.V3Factory,
		"Liquidation.Adapter": c.Liquidation.Adapter,
		"Liquidation.Owner":   c.Liquidation.Owner,
	} {
		if !common.IsHexAddress(value) {
			return fmt.Errorf("config: %s is not a valid address: %q", name, value)
		}
	}
	if s := strings.TrimSpace(c.Liquidation.Subsidizer); s != "" && !common.IsHexAddress(s) {
		return fmt.Errorf("config: Liquidation.Subsidizer is not a valid address: %q", s)
	}
	for name, value := range map[string]string{
		"AMM.V2InitCodeHash": c.AMM.V2InitCodeHash,
		"AMM.V3InitCodeHash": c.AMM.V3InitCodeHash,
	} {
		if len(common.FromHex(value)) != common.HashLength {
			return fmt.Errorf("config: %s is not a 32-byte hash: %q", name, value)
		}
	}
	return nil
}

// AdapterConfig resolves the parsed fields into the orchestrator's runtime
// configuration.
func (c *Config) AdapterConfig() flash.AdapterConfig {
	return flash.AdapterConfig{
		Adapter:        common.HexToAddress(c.Liquidation.Adapter),
		Owner:          common.HexToAddress(c.Liquidation.Owner),
		Subsidizer:     common.HexToAddress(c.Liquidation.Subsidizer),
		V2Factory:      common.HexToAddress(c.AMM.V2Factory),
		V2InitCodeHash: common.HexToHash(c.AMM.V2InitCodeHash),
		V3Factory:      common.HexToAddress(c.AMM.V3Factory),
		V3InitCodeHash: common.HexToHash(c.AMM.V3InitCodeHash),
	}
}
