package ledger

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/fixes-world/tokenlist-api/pkg/tokenlist"
)

const ipfsGateway = "https://ipfs.io/ipfs/"

// object is a decoded Cadence composite or dictionary.
type object map[string]any

func asObject(v any) object {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func (o object) obj(key string) object {
	return asObject(o[key])
}

func (o object) str(key string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return ""
}

func (o object) boolean(key string) bool {
	b, _ := o[key].(bool)
	return b
}

func (o object) integer(key string) int {
	n, err := strconv.Atoi(o.str(key))
	if err != nil {
		return 0
	}
	return n
}

func (o object) strings(key string) []string {
	items, _ := o[key].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// parsePath formats a Cadence path as /domain/identifier.
func parsePath(p object) string {
	if p == nil {
		return ""
	}
	return "/" + p.str("domain") + "/" + p.str("identifier")
}

// parseURL resolves an HTTP or IPFS file view.
func parseURL(file object) string {
	if file == nil {
		return ""
	}
	if url := file.str("url"); url != "" {
		return url
	}
	if cid := file.str("cid"); cid != "" {
		return ipfsGateway + cid
	}
	return ""
}

func parseMedia(m object) tokenlist.Media {
	if m == nil {
		return tokenlist.Media{}
	}
	return tokenlist.Media{Type: m.str("mediaType"), URI: parseURL(m.obj("file"))}
}

func parseSocials(o object) map[string]string {
	socials := o.obj("socials")
	out := make(map[string]string, len(socials))
	for k, v := range socials {
		out[k] = parseURL(asObject(v))
	}
	return out
}

func parseIdentity(o object, isNFT bool) tokenlist.AssetIdentity {
	id := o.obj("identity")
	return tokenlist.AssetIdentity{
		TokenIdentity: tokenlist.TokenIdentity{
			Address:      id.str("address"),
			ContractName: id.str("contractName"),
		},
		IsNFT:           isNFT,
		IsBridged:       o.str("evmAddress") != "",
		IsWithDisplay:   o.obj("display") != nil,
		IsWithVaultData: isNFT || o.obj("paths") != nil,
	}
}

func parseTokenView(v any) (tokenlist.StandardTokenView, error) {
	o := asObject(v)
	if o == nil || o.obj("identity") == nil {
		return tokenlist.StandardTokenView{}, fmt.Errorf("token view: unexpected value %T", v)
	}

	view := tokenlist.StandardTokenView{
		Identity:   parseIdentity(o, false),
		EVMAddress: o.str("evmAddress"),
		Decimals:   o.integer("decimals"),
		Tags:       o.strings("tags"),
		DataSource: o.str("dataSource"),
	}

	if paths := o.obj("paths"); paths != nil {
		view.Path = &tokenlist.TokenPaths{
			Vault:    parsePath(paths.obj("vaultPath")),
			Balance:  parsePath(paths.obj("balancePath")),
			Receiver: parsePath(paths.obj("receiverPath")),
		}
	}

	if display := o.obj("display"); display != nil {
		d := display.obj("display")
		logos := d.obj("logos")
		items, _ := logos["items"].([]any)
		media := make([]tokenlist.Media, 0, len(items))
		for _, item := range items {
			media = append(media, parseMedia(asObject(item)))
		}
		view.Display = &tokenlist.TokenDisplaySource{
			Source: display.str("source"),
			Display: tokenlist.TokenDisplay{
				Name:        d.str("name"),
				Symbol:      d.str("symbol"),
				Description: d.str("description"),
				ExternalURL: parseURL(d.obj("externalURL")),
				Logos:       media,
				Social:      parseSocials(d),
			},
		}
	}

	return view, nil
}

func parseNFTCollectionView(v any) (tokenlist.StandardNFTCollectionView, error) {
	o := asObject(v)
	if o == nil || o.obj("identity") == nil {
		return tokenlist.StandardNFTCollectionView{}, fmt.Errorf("nft collection view: unexpected value %T", v)
	}

	view := tokenlist.StandardNFTCollectionView{
		Identity:   parseIdentity(o, true),
		EVMAddress: o.str("evmAddress"),
		Tags:       o.strings("tags"),
	}

	if paths := o.obj("paths"); paths != nil {
		view.Paths = &tokenlist.CollectionPaths{
			Storage: parsePath(paths.obj("storagePath")),
			Public:  parsePath(paths.obj("publicPath")),
		}
	}

	if display := o.obj("display"); display != nil {
		d := display.obj("display")
		view.Display = &tokenlist.NFTCollectionDisplaySource{
			Source: display.str("source"),
			Display: tokenlist.NFTCollectionDisplay{
				Name:        d.str("name"),
				Description: d.str("description"),
				ExternalURL: parseURL(d.obj("externalURL")),
				SquareImage: parseMedia(d.obj("squareImage")),
				BannerImage: parseMedia(d.obj("bannerImage")),
				Social:      parseSocials(d),
			},
		}
	}

	return view, nil
}

func parseReviewer(v any) (tokenlist.ReviewerInfo, error) {
	o := asObject(v)
	if o == nil {
		return tokenlist.ReviewerInfo{}, fmt.Errorf("reviewer: unexpected value %T", v)
	}
	return tokenlist.ReviewerInfo{
		Address:            o.str("address"),
		Verified:           o.boolean("verified"),
		Name:               o.str("name"),
		URL:                o.str("url"),
		ManagedTokenAmt:    o.integer("managedTokenAmt"),
		ReviewedTokenAmt:   o.integer("reviewedTokenAmt"),
		CustomizedTokenAmt: o.integer("customziedTokenAmt"),
	}, nil
}

// rank orders entries Featured first, then Verified, then by contract name.
func rank(tagsA []string, nameA string, tagsB []string, nameB string) int {
	for _, tag := range []string{"Featured", "Verified"} {
		a, b := slices.Contains(tagsA, tag), slices.Contains(tagsB, tag)
		if a != b {
			if a {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(nameA, nameB)
}

func sortTokenViews(views []tokenlist.StandardTokenView) {
	slices.SortStableFunc(views, func(a, b tokenlist.StandardTokenView) int {
		return rank(a.Tags, a.Identity.ContractName, b.Tags, b.Identity.ContractName)
	})
}

func sortNFTCollectionViews(views []tokenlist.StandardNFTCollectionView) {
	slices.SortStableFunc(views, func(a, b tokenlist.StandardNFTCollectionView) int {
		return rank(a.Tags, a.Identity.ContractName, b.Tags, b.Identity.ContractName)
	})
}

// sortReviewers puts verified reviewers first, then by customized entries descending.
func sortReviewers(reviewers []tokenlist.ReviewerInfo) {
	slices.SortStableFunc(reviewers, func(a, b tokenlist.ReviewerInfo) int {
		if a.Verified != b.Verified {
			if a.Verified {
				return -1
			}
			return 1
		}
		return b.CustomizedTokenAmt - a.CustomizedTokenAmt
	})
}
