package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixes-world/tokenlist-api/internal/testutil"
	"github.com/fixes-world/tokenlist-api/pkg/tokenlist"
)

func testScripts() *Scripts {
	return &Scripts{
		QueryTokenList:         []byte("query-token-list"),
		QueryEVMBridgedFTList:  []byte("query-evm-bridged-ft-list"),
		GetReviewers:           []byte("get-reviewers"),
		QueryNFTList:           []byte("nftlist/query-token-list"),
		QueryEVMBridgedNFTList: []byte("nftlist/query-evm-bridged-nft-list"),
		GetNFTListReviewers:    []byte("nftlist/get-reviewers"),
	}
}

func httpFile(url string) testutil.CV {
	return testutil.CStruct("MetadataViews.HTTPFile", testutil.Field{Name: "url", Value: testutil.CString(url)})
}

func ipfsFile(cid string) testutil.CV {
	return testutil.CStruct("MetadataViews.IPFSFile",
		testutil.Field{Name: "cid", Value: testutil.CString(cid)},
		testutil.Field{Name: "path", Value: testutil.COptional(nil)},
	)
}

func media(file testutil.CV, mediaType string) testutil.CV {
	return testutil.CStruct("MetadataViews.Media",
		testutil.Field{Name: "file", Value: file},
		testutil.Field{Name: "mediaType", Value: testutil.CString(mediaType)},
	)
}

func identity(address, name string) testutil.CV {
	return testutil.CStruct("TokenList.TokenIdentity",
		testutil.Field{Name: "address", Value: testutil.CAddress(address)},
		testutil.Field{Name: "contractName", Value: testutil.CString(name)},
	)
}

func tokenViewCV(name string, tags []string, evmAddress string, withDisplay bool) testutil.CV {
	evm := testutil.COptional(nil)
	if evmAddress != "" {
		evm = testutil.COptional(testutil.CString(evmAddress))
	}
	display := testutil.COptional(nil)
	if withDisplay {
		display = testutil.COptional(testutil.CStruct("ViewResolvers.FTDisplayWithSource",
			testutil.Field{Name: "source", Value: testutil.COptional(testutil.CAddress("0x1654653399040a61"))},
			testutil.Field{Name: "display", Value: testutil.CStruct("FungibleTokenMetadataViews.FTDisplay",
				testutil.Field{Name: "name", Value: testutil.CString(name + " Token")},
				testutil.Field{Name: "symbol", Value: testutil.CString(name[:3])},
				testutil.Field{Name: "description", Value: testutil.CString("about " + name)},
				testutil.Field{Name: "externalURL", Value: httpFile("https://" + name + ".io")},
				testutil.Field{Name: "logos", Value: testutil.CStruct("MetadataViews.Medias",
					testutil.Field{Name: "items", Value: testutil.CArray(
						media(httpFile("https://"+name+".io/logo.svg"), "image/svg+xml"),
						media(ipfsFile("bafylogo"), "image/png"),
					)},
				)},
				testutil.Field{Name: "socials", Value: testutil.CDict(map[string]testutil.CV{
					"twitter": httpFile("https://x.com/" + name),
				})},
			)},
		))
	}

	return testutil.CStruct("TokenList.FTView",
		testutil.Field{Name: "identity", Value: identity("0x1654653399040a61", name)},
		testutil.Field{Name: "evmAddress", Value: evm},
		testutil.Field{Name: "decimals", Value: testutil.CUInt8(8)},
		testutil.Field{Name: "tags", Value: testutil.CStrings(tags...)},
		testutil.Field{Name: "dataSource", Value: testutil.COptional(testutil.CAddress("0x1654653399040a61"))},
		testutil.Field{Name: "paths", Value: testutil.COptional(testutil.CStruct("TokenList.FTPaths",
			testutil.Field{Name: "vaultPath", Value: testutil.CPath("storage", name+"Vault")},
			testutil.Field{Name: "balancePath", Value: testutil.CPath("public", name+"Balance")},
			testutil.Field{Name: "receiverPath", Value: testutil.CPath("public", name+"Receiver")},
		))},
		testutil.Field{Name: "display", Value: display},
	)
}

func nftViewCV(name string, tags []string) testutil.CV {
	return testutil.CStruct("NFTList.NFTView",
		testutil.Field{Name: "identity", Value: identity("0x1d7e57aa55817448", name)},
		testutil.Field{Name: "evmAddress", Value: testutil.COptional(nil)},
		testutil.Field{Name: "tags", Value: testutil.CStrings(tags...)},
		testutil.Field{Name: "paths", Value: testutil.CStruct("NFTList.NFTPaths",
			testutil.Field{Name: "storagePath", Value: testutil.CPath("storage", name+"Collection")},
			testutil.Field{Name: "publicPath", Value: testutil.CPath("public", name+"Collection")},
		)},
		testutil.Field{Name: "display", Value: testutil.COptional(testutil.CStruct("NFTList.DisplayWithSource",
			testutil.Field{Name: "source", Value: testutil.COptional(nil)},
			testutil.Field{Name: "display", Value: testutil.CStruct("MetadataViews.NFTCollectionDisplay",
				testutil.Field{Name: "name", Value: testutil.CString(name)},
				testutil.Field{Name: "description", Value: testutil.CString("collection " + name)},
				testutil.Field{Name: "externalURL", Value: httpFile("https://" + name + ".xyz")},
				testutil.Field{Name: "squareImage", Value: media(ipfsFile("bafysquare"), "image/png")},
				testutil.Field{Name: "bannerImage", Value: media(httpFile("https://"+name+".xyz/banner.png"), "image/png")},
				testutil.Field{Name: "socials", Value: testutil.CDict(map[string]testutil.CV{})},
			)},
		))},
	)
}

func queryResult(total int, items ...testutil.CV) testutil.CV {
	return testutil.CStruct("TokenList.QueryResult",
		testutil.Field{Name: "total", Value: testutil.CInt(total)},
		testutil.Field{Name: "list", Value: testutil.CArray(items...)},
	)
}

func reviewerCV(address string, verified bool, customized int) testutil.CV {
	return testutil.CStruct("TokenList.ReviewerInfo",
		testutil.Field{Name: "address", Value: testutil.CAddress(address)},
		testutil.Field{Name: "verified", Value: testutil.CBool(verified)},
		testutil.Field{Name: "name", Value: testutil.COptional(testutil.CString("reviewer " + address[2:6]))},
		testutil.Field{Name: "url", Value: testutil.COptional(nil)},
		testutil.Field{Name: "managedTokenAmt", Value: testutil.CInt(2)},
		testutil.Field{Name: "reviewedTokenAmt", Value: testutil.CInt(10)},
		testutil.Field{Name: "customziedTokenAmt", Value: testutil.CInt(customized)},
	)
}

func newTestSource(t *testing.T) (*Source, *testutil.MockAccessNode) {
	t.Helper()

	node := testutil.NewMockAccessNode()
	t.Cleanup(node.Close)
	return NewSource(newTestClient(t, node.URL()), testScripts()), node
}

func TestSource_QueryTokenList(t *testing.T) {
	src, node := newTestSource(t)
	node.SetResponse("query-token-list", testutil.NewScriptResult(queryResult(42,
		tokenViewCV("zeta", []string{"Verified"}, "", true),
		tokenViewCV("beta", nil, "", true),
		tokenViewCV("alpha", []string{"Featured", "Verified"}, "", false),
		tokenViewCV("delta", nil, "", true),
	)))

	page, err := src.QueryTokenList(context.Background(), 1, 4, "0xa2de93114bae3e73", tokenlist.FilterVerified)
	require.NoError(t, err)
	assert.Equal(t, 42, page.Total)
	require.Len(t, page.List, 4)

	var names []string
	for _, v := range page.List {
		names = append(names, v.Identity.ContractName)
	}
	assert.Equal(t, []string{"alpha", "zeta", "beta", "delta"}, names)

	zeta := page.List[1]
	assert.Equal(t, "0x1654653399040a61", zeta.Identity.Address)
	assert.False(t, zeta.Identity.IsNFT)
	assert.False(t, zeta.Identity.IsBridged)
	assert.True(t, zeta.Identity.IsWithDisplay)
	assert.True(t, zeta.Identity.IsWithVaultData)
	assert.Equal(t, 8, zeta.Decimals)
	assert.Equal(t, "0x1654653399040a61", zeta.DataSource)
	require.NotNil(t, zeta.Path)
	assert.Equal(t, tokenlist.TokenPaths{
		Vault:    "/storage/zetaVault",
		Balance:  "/public/zetaBalance",
		Receiver: "/public/zetaReceiver",
	}, *zeta.Path)
	require.NotNil(t, zeta.Display)
	assert.Equal(t, "0x1654653399040a61", zeta.Display.Source)
	assert.Equal(t, "zeta Token", zeta.Display.Display.Name)
	assert.Equal(t, "zet", zeta.Display.Display.Symbol)
	assert.Equal(t, "https://zeta.io", zeta.Display.Display.ExternalURL)
	assert.Equal(t, []tokenlist.Media{
		{URI: "https://zeta.io/logo.svg", Type: "image/svg+xml"},
		{URI: "https://ipfs.io/ipfs/bafylogo", Type: "image/png"},
	}, zeta.Display.Display.Logos)
	assert.Equal(t, map[string]string{"twitter": "https://x.com/zeta"}, zeta.Display.Display.Social)

	assert.False(t, page.List[0].Identity.IsWithDisplay)
	assert.Nil(t, page.List[0].Display)

	reqs := node.GetRequests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Arguments, 4)
	assert.JSONEq(t, `{"type":"Int","value":"1"}`, string(reqs[0].Arguments[0]))
	assert.JSONEq(t, `{"type":"Int","value":"4"}`, string(reqs[0].Arguments[1]))
	assert.JSONEq(t, `{"type":"Optional","value":{"type":"Address","value":"0xa2de93114bae3e73"}}`, string(reqs[0].Arguments[2]))
	assert.JSONEq(t, `{"type":"Optional","value":{"type":"UInt8","value":"3"}}`, string(reqs[0].Arguments[3]))
}

func TestSource_QueryEVMBridgedTokenList(t *testing.T) {
	src, node := newTestSource(t)
	node.SetResponse("query-evm-bridged-ft-list", testutil.NewScriptResult(queryResult(1,
		tokenViewCV("usdc", nil, "f1815bd50389c46847f0bda824ec8da914045d14", true),
	)))

	page, err := src.QueryEVMBridgedTokenList(context.Background(), 0, 15, "", tokenlist.FilterAll)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.True(t, page.List[0].Identity.IsBridged)
	assert.Equal(t, "f1815bd50389c46847f0bda824ec8da914045d14", page.List[0].EVMAddress)

	reqs := node.GetRequests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"type":"Optional","value":null}`, string(reqs[0].Arguments[2]))
}

func TestSource_QueryNFTList(t *testing.T) {
	src, node := newTestSource(t)
	node.SetResponse("nftlist/query-token-list", testutil.NewScriptResult(queryResult(2,
		nftViewCV("Punks", nil),
		nftViewCV("Flovatar", []string{"Featured"}),
	)))

	page, err := src.QueryNFTList(context.Background(), 0, 50, "", tokenlist.FilterBlocked)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.List, 2)

	first := page.List[0]
	assert.Equal(t, "Flovatar", first.Identity.ContractName)
	assert.True(t, first.Identity.IsNFT)
	assert.True(t, first.Identity.IsWithVaultData)
	require.NotNil(t, first.Paths)
	assert.Equal(t, tokenlist.CollectionPaths{
		Storage: "/storage/FlovatarCollection",
		Public:  "/public/FlovatarCollection",
	}, *first.Paths)
	require.NotNil(t, first.Display)
	assert.Empty(t, first.Display.Source)
	assert.Equal(t, tokenlist.Media{URI: "https://ipfs.io/ipfs/bafysquare", Type: "image/png"}, first.Display.Display.SquareImage)
	assert.Equal(t, "https://Flovatar.xyz/banner.png", first.Display.Display.BannerImage.URI)
	assert.Empty(t, first.Display.Display.Social)
}

func TestSource_QueryEVMBridgedNFTList(t *testing.T) {
	src, node := newTestSource(t)
	node.SetResponse("nftlist/query-evm-bridged-nft-list", testutil.NewScriptResult(queryResult(0)))

	page, err := src.QueryEVMBridgedNFTList(context.Background(), 0, 15, "", tokenlist.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.List)
}

func TestSource_NilResultIsEmptyPage(t *testing.T) {
	src, node := newTestSource(t)
	node.SetResponse("query-token-list", testutil.NewScriptResult(testutil.COptional(nil)))

	page, err := src.QueryTokenList(context.Background(), 0, 50, "", tokenlist.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.List)
}

func TestSource_MalformedResult(t *testing.T) {
	tests := []struct {
		name   string
		result testutil.CV
	}{
		{"not a struct", testutil.CString("oops")},
		{"bad total", testutil.CStruct("R",
			testutil.Field{Name: "total", Value: testutil.CString("many")},
			testutil.Field{Name: "list", Value: testutil.CArray()},
		)},
		{"bad item", queryResult(1, testutil.CString("oops"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, node := newTestSource(t)
			node.SetResponse("query-token-list", testutil.NewScriptResult(tt.result))

			_, err := src.QueryTokenList(context.Background(), 0, 50, "", tokenlist.FilterAll)
			assert.Error(t, err)
		})
	}
}

func TestSource_ExecutionError(t *testing.T) {
	src, node := newTestSource(t)
	node.SetResponse("query-token-list", testutil.NewBadRequestResponse("script failed"))

	_, err := src.QueryTokenList(context.Background(), 0, 50, "", tokenlist.FilterAll)
	var ae *AccessError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "script failed", ae.Message)
}

func TestSource_Reviewers(t *testing.T) {
	src, node := newTestSource(t)
	node.SetResponse("get-reviewers", testutil.NewScriptResult(testutil.CArray(
		reviewerCV("0x1111111111111111", false, 9),
		reviewerCV("0x2222222222222222", true, 1),
		reviewerCV("0x3333333333333333", true, 5),
	)))

	reviewers, err := src.Reviewers(context.Background())
	require.NoError(t, err)
	require.Len(t, reviewers, 3)

	var order []string
	for _, r := range reviewers {
		order = append(order, r.Address)
	}
	assert.Equal(t, []string{"0x3333333333333333", "0x2222222222222222", "0x1111111111111111"}, order)

	assert.Equal(t, tokenlist.ReviewerInfo{
		Address:            "0x3333333333333333",
		Verified:           true,
		Name:               "reviewer 3333",
		ManagedTokenAmt:    2,
		ReviewedTokenAmt:   10,
		CustomizedTokenAmt: 5,
	}, reviewers[0])
}

func TestSource_NFTListReviewers(t *testing.T) {
	src, node := newTestSource(t)
	node.SetResponse("nftlist/get-reviewers", testutil.NewScriptResult(testutil.CArray()))

	reviewers, err := src.NFTListReviewers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reviewers)
	assert.NotNil(t, reviewers)
}

func TestSource_ReviewersUnexpectedShape(t *testing.T) {
	src, node := newTestSource(t)
	node.SetResponse("get-reviewers", testutil.NewScriptResult(testutil.CString("oops")))

	_, err := src.Reviewers(context.Background())
	assert.Error(t, err)
}

func TestLoadScripts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nftlist"), 0o755))
	for _, name := range []string{
		ScriptQueryTokenList, ScriptQueryEVMBridgedFTList, ScriptGetReviewers,
		ScriptQueryNFTList, ScriptQueryEVMBridgedNFTList, ScriptGetNFTListReviewers,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), []byte("// "+name), 0o644))
	}

	scripts, err := LoadScripts(dir)
	require.NoError(t, err)
	assert.Equal(t, "// query-token-list.cdc", string(scripts.QueryTokenList))
	assert.Equal(t, "// nftlist/get-reviewers.cdc", string(scripts.GetNFTListReviewers))
}

func TestLoadScripts_Missing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ScriptQueryTokenList), []byte("x"), 0o644))

	_, err := LoadScripts(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), ScriptGetNFTListReviewers)
}
