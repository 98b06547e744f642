// Package tokenlist serves curated lists of Flow fungible tokens and NFT
// collections.
package tokenlist

import (
	"fmt"
	"strings"
	"time"
)

// FilterType selects a curation subset of a list.
type FilterType int

const (
	FilterAll FilterType = iota
	FilterReviewed
	FilterManaged
	FilterVerified
	FilterFeatured
	FilterBlocked
)

var filterNames = [...]string{"ALL", "REVIEWED", "MANAGED", "VERIFIED", "FEATURED", "BLOCKED"}

func (f FilterType) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("FilterType(%d)", int(f))
	}
	return filterNames[f]
}

// Category is the kind of asset a list holds.
type Category string

const (
	CategoryToken Category = "token"
	CategoryNFT   Category = "nft"
)

// Method returns the list name used in cache keys and logs.
func (c Category) Method() string {
	if c == CategoryNFT {
		return "nft-list"
	}
	return "token-list"
}

// MaxFilter is the highest filter accepted for the category.
// Only NFT lists expose BLOCKED.
func (c Category) MaxFilter() FilterType {
	if c == CategoryNFT {
		return FilterBlocked
	}
	return FilterFeatured
}

// Network is a Flow network name.
type Network string

const (
	NetworkEmulator Network = "emulator"
	NetworkTestnet  Network = "testnet"
	NetworkMainnet  Network = "mainnet"
)

// ParseNetwork validates a network name.
func ParseNetwork(s string) (Network, error) {
	switch n := Network(strings.ToLower(strings.TrimSpace(s))); n {
	case NetworkEmulator, NetworkTestnet, NetworkMainnet:
		return n, nil
	default:
		return "", fmt.Errorf("unknown flow network %q", s)
	}
}

// EVMChainID returns the chain id of the network's EVM side.
func (n Network) EVMChainID() int {
	switch n {
	case NetworkMainnet:
		return 747
	case NetworkTestnet:
		return 545
	default:
		return 646
	}
}

// EVMExplorerURL returns the block explorer of the network's EVM side,
// empty for the emulator.
func (n Network) EVMExplorerURL() string {
	switch n {
	case NetworkMainnet:
		return "https://evm.flowscan.io"
	case NetworkTestnet:
		return "https://evm-testnet.flowscan.io"
	default:
		return ""
	}
}

// TokenIdentity identifies a contract on the Flow ledger.
type TokenIdentity struct {
	Address      string `json:"address"`
	ContractName string `json:"contractName"`
}

// AssetIdentity is the identity of a listed asset with its registration flags.
type AssetIdentity struct {
	TokenIdentity
	IsNFT           bool `json:"isNFT"`
	IsBridged       bool `json:"isBridged"`
	IsWithDisplay   bool `json:"isWithDisplay"`
	IsWithVaultData bool `json:"isWithVaultData"`
}

// Media is a file reference with its MIME type.
type Media struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// TokenPaths are the storage and public paths of a fungible token vault.
type TokenPaths struct {
	Vault    string `json:"vault"`
	Balance  string `json:"balance"`
	Receiver string `json:"receiver"`
	Provider string `json:"provider,omitempty"`
}

// TokenDisplay is the on-chain display metadata of a fungible token.
type TokenDisplay struct {
	Symbol      string            `json:"symbol"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	ExternalURL string            `json:"externalURL,omitempty"`
	Logos       []Media           `json:"logos"`
	Social      map[string]string `json:"social"`
}

// TokenDisplaySource is a token display with the contract it was resolved from.
type TokenDisplaySource struct {
	Source  string       `json:"source,omitempty"`
	Display TokenDisplay `json:"display"`
}

// StandardTokenView is a raw fungible token entry read from the ledger.
// Path and Display are absent for tokens without resolved metadata.
type StandardTokenView struct {
	Identity   AssetIdentity       `json:"identity"`
	EVMAddress string              `json:"evmAddress,omitempty"`
	Decimals   int                 `json:"decimals"`
	Tags       []string            `json:"tags"`
	DataSource string              `json:"dataSource,omitempty"`
	Path       *TokenPaths         `json:"path,omitempty"`
	Display    *TokenDisplaySource `json:"display,omitempty"`
}

// CollectionPaths are the storage and public paths of an NFT collection.
type CollectionPaths struct {
	Storage string `json:"storage"`
	Public  string `json:"public"`
}

// NFTCollectionDisplay is the on-chain display metadata of an NFT collection.
type NFTCollectionDisplay struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	ExternalURL string            `json:"externalURL,omitempty"`
	SquareImage Media             `json:"squareImage"`
	BannerImage Media             `json:"bannerImage"`
	Social      map[string]string `json:"social"`
}

// NFTCollectionDisplaySource is a collection display with its source contract.
type NFTCollectionDisplaySource struct {
	Source  string               `json:"source,omitempty"`
	Display NFTCollectionDisplay `json:"display"`
}

// StandardNFTCollectionView is a raw NFT collection entry read from the ledger.
type StandardNFTCollectionView struct {
	Identity   AssetIdentity               `json:"identity"`
	EVMAddress string                      `json:"evmAddress,omitempty"`
	Tags       []string                    `json:"tags"`
	Paths      *CollectionPaths            `json:"paths,omitempty"`
	Display    *NFTCollectionDisplaySource `json:"display,omitempty"`
}

// ExportedTokenInfo is a token in the published token list.
type ExportedTokenInfo struct {
	ChainID        int               `json:"chainId,omitempty"`
	Address        string            `json:"address"`
	ContractName   string            `json:"contractName"`
	FlowIdentifier string            `json:"flowIdentifier,omitempty"`
	Path           TokenPaths        `json:"path"`
	Symbol         string            `json:"symbol"`
	Name           string            `json:"name"`
	Decimals       int               `json:"decimals"`
	Description    string            `json:"description"`
	LogoURI        string            `json:"logoURI"`
	Tags           []string          `json:"tags"`
	Extensions     map[string]string `json:"extensions"`
}

// ExportedNFTCollectionInfo is a collection in the published NFT list.
type ExportedNFTCollectionInfo struct {
	ChainID        int               `json:"chainId,omitempty"`
	Address        string            `json:"address"`
	ContractName   string            `json:"contractName"`
	FlowIdentifier string            `json:"flowIdentifier,omitempty"`
	Path           CollectionPaths   `json:"path"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	LogoURI        string            `json:"logoURI"`
	BannerURI      string            `json:"bannerURI,omitempty"`
	Tags           []string          `json:"tags"`
	Extensions     map[string]string `json:"extensions"`
}

// TokenTag describes a tag used in list entries.
type TokenTag struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Version is the semantic version of a published list.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// TokenList is the published fungible token list.
type TokenList struct {
	Name        string              `json:"name"`
	Network     Network             `json:"network"`
	ChainID     int                 `json:"chainId"`
	Tokens      []ExportedTokenInfo `json:"tokens"`
	TotalAmount int                 `json:"totalAmount"`
	FilterType  string              `json:"filterType"`
	Timestamp   time.Time           `json:"timestamp"`
	LogoURI     string              `json:"logoURI"`
	Keywords    []string            `json:"keywords"`
	Tags        map[string]TokenTag `json:"tags"`
	Version     Version             `json:"version"`
}

// NFTList is the published NFT collection list.
type NFTList struct {
	Name        string                      `json:"name"`
	Network     Network                     `json:"network"`
	ChainID     int                         `json:"chainId"`
	Tokens      []ExportedNFTCollectionInfo `json:"tokens"`
	TotalAmount int                         `json:"totalAmount"`
	FilterType  string                      `json:"filterType"`
	Timestamp   time.Time                   `json:"timestamp"`
	Tags        map[string]TokenTag         `json:"tags"`
	Version     Version                     `json:"version"`
}

// ReviewerInfo is a curator of the token or NFT list.
type ReviewerInfo struct {
	Address            string `json:"address"`
	Verified           bool   `json:"verified"`
	Name               string `json:"name,omitempty"`
	URL                string `json:"url,omitempty"`
	ManagedTokenAmt    int    `json:"managedTokenAmt"`
	ReviewedTokenAmt   int    `json:"reviewedTokenAmt"`
	CustomizedTokenAmt int    `json:"customziedTokenAmt"` // wire name kept for existing clients
}

const listLogoURI = "https://cdn.jsdelivr.net/gh/FlowFans/flow-token-list@main/token-registry/A.1654653399040a61.FlowToken/logo.svg"

var listVersion = Version{Major: 1, Minor: 0, Patch: 0}

var defaultKeywords = []string{
	"Flow", "Cadence", "EVM", "DeFi", "NFT", "FT", "Dapp", "Blockchain", "Crypto",
}

var defaultTags = map[string]TokenTag{
	"stablecoin": {
		Name:        "stablecoin",
		Description: "Tokens that are fixed to an external asset, e.g. the US dollar",
	},
	"ethereum": {
		Name:        "ethereum",
		Description: "Asset bridged from ethereum",
	},
	"wrapped-celer": {
		Name:        "wrapped-celer",
		Description: "Asset wrapped using celer bridge",
	},
	"utility-token": {
		Name:        "utility-token",
		Description: "Tokens that are designed to be spent within a certain blockchain ecosystem",
	},
	"governance-token": {
		Name:        "governance-token",
		Description: "Tokens that are designed to be use in community governance and maintenance",
	},
	"memecoin": {
		Name:        "memecoin",
		Description: "Tokens that are created for fun and meme",
	},
}
