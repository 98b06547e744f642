package tokenlist

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const evmDefaultDecimals = 18

// Normalizer converts raw ledger views into published list entries.
// Both methods are total: an entry that cannot be published is reported
// with ok == false and never as an error.
type Normalizer struct {
	Network Network
}

// Token exports a fungible token view. Entries without path or display are
// dropped, as are EVM entries without a valid EVM address.
func (n Normalizer) Token(isEVMOnly bool, view StandardTokenView) (ExportedTokenInfo, bool) {
	if view.Path == nil || view.Display == nil {
		return ExportedTokenInfo{}, false
	}
	display := view.Display.Display

	info := ExportedTokenInfo{
		Address:      view.Identity.Address,
		ContractName: view.Identity.ContractName,
		Path:         *view.Path,
		Symbol:       display.Symbol,
		Name:         display.Name,
		Decimals:     view.Decimals,
		Description:  display.Description,
		LogoURI:      firstLogo(display.Logos),
		Tags:         nonNilTags(view.Tags),
		Extensions:   extensions(display.Social, display.ExternalURL, view.Display.Source, view.DataSource),
	}
	if info.LogoURI == "" {
		info.LogoURI = placeholderLogo(firstNonEmpty(display.Symbol, display.Name, view.Identity.ContractName))
	}

	if !isEVMOnly {
		return info, true
	}

	evmAddress, ok := checksumAddress(view.EVMAddress)
	if !ok {
		return ExportedTokenInfo{}, false
	}
	info.FlowIdentifier = flowIdentifier(view.Identity.TokenIdentity, "Vault")
	info.Address = evmAddress
	info.ChainID = n.Network.EVMChainID()
	if info.Decimals == 0 {
		info.Decimals = evmDefaultDecimals
	}
	if explorer := n.Network.EVMExplorerURL(); explorer != "" {
		info.Extensions["website"] = explorer + "/token/" + evmAddress
	}
	return info, true
}

// NFT exports an NFT collection view with the same drop rules as Token.
func (n Normalizer) NFT(isEVMOnly bool, view StandardNFTCollectionView) (ExportedNFTCollectionInfo, bool) {
	if view.Paths == nil || view.Display == nil {
		return ExportedNFTCollectionInfo{}, false
	}
	display := view.Display.Display

	info := ExportedNFTCollectionInfo{
		Address:      view.Identity.Address,
		ContractName: view.Identity.ContractName,
		Path:         *view.Paths,
		Name:         display.Name,
		Description:  display.Description,
		LogoURI:      display.SquareImage.URI,
		BannerURI:    display.BannerImage.URI,
		Tags:         nonNilTags(view.Tags),
		Extensions:   extensions(display.Social, display.ExternalURL, view.Display.Source, ""),
	}
	if info.LogoURI == "" {
		info.LogoURI = placeholderLogo(firstNonEmpty(display.Name, view.Identity.ContractName))
	}

	if !isEVMOnly {
		return info, true
	}

	evmAddress, ok := checksumAddress(view.EVMAddress)
	if !ok {
		return ExportedNFTCollectionInfo{}, false
	}
	info.FlowIdentifier = flowIdentifier(view.Identity.TokenIdentity, "Collection")
	info.Address = evmAddress
	info.ChainID = n.Network.EVMChainID()
	if explorer := n.Network.EVMExplorerURL(); explorer != "" {
		info.Extensions["website"] = explorer + "/token/" + evmAddress
	}
	return info, true
}

// extensions copies the social links and adds the derived keys that are set.
func extensions(social map[string]string, website, displaySource, pathSource string) map[string]string {
	ext := make(map[string]string, len(social)+3)
	for k, v := range social {
		ext[k] = v
	}
	if website != "" {
		ext["website"] = website
	}
	if displaySource != "" {
		ext["displaySource"] = displaySource
	}
	if pathSource != "" {
		ext["pathSource"] = pathSource
	}
	return ext
}

func checksumAddress(addr string) (string, bool) {
	if addr == "" {
		return "", false
	}
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		addr = "0x" + addr
	}
	if !common.IsHexAddress(addr) {
		return "", false
	}
	return common.HexToAddress(addr).Hex(), true
}

// flowIdentifier builds the Cadence type identifier, e.g. A.1654653399040a61.FlowToken.Vault
func flowIdentifier(id TokenIdentity, resource string) string {
	return fmt.Sprintf("A.%s.%s.%s", strings.TrimPrefix(id.Address, "0x"), id.ContractName, resource)
}

func firstLogo(logos []Media) string {
	for _, m := range logos {
		if m.URI != "" {
			return m.URI
		}
	}
	return ""
}

func placeholderLogo(text string) string {
	return "https://placehold.co/256x256?text=" + url.QueryEscape(text)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
