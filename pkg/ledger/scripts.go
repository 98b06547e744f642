package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Script file names relative to the scripts directory.
const (
	ScriptQueryTokenList         = "query-token-list.cdc"
	ScriptQueryEVMBridgedFTList  = "query-evm-bridged-ft-list.cdc"
	ScriptGetReviewers           = "get-reviewers.cdc"
	ScriptQueryNFTList           = "nftlist/query-token-list.cdc"
	ScriptQueryEVMBridgedNFTList = "nftlist/query-evm-bridged-nft-list.cdc"
	ScriptGetNFTListReviewers    = "nftlist/get-reviewers.cdc"
)

// Scripts holds the Cadence sources run by the list source.
type Scripts struct {
	QueryTokenList         []byte
	QueryEVMBridgedFTList  []byte
	GetReviewers           []byte
	QueryNFTList           []byte
	QueryEVMBridgedNFTList []byte
	GetNFTListReviewers    []byte
}

// LoadScripts reads every script from dir. All scripts are required.
func LoadScripts(dir string) (*Scripts, error) {
	s := &Scripts{}
	files := []struct {
		name string
		dst  *[]byte
	}{
		{ScriptQueryTokenList, &s.QueryTokenList},
		{ScriptQueryEVMBridgedFTList, &s.QueryEVMBridgedFTList},
		{ScriptGetReviewers, &s.GetReviewers},
		{ScriptQueryNFTList, &s.QueryNFTList},
		{ScriptQueryEVMBridgedNFTList, &s.QueryEVMBridgedNFTList},
		{ScriptGetNFTListReviewers, &s.GetNFTListReviewers},
	}

	var errs []error
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.name)))
		if err != nil {
			errs = append(errs, fmt.Errorf("load script %s: %w", f.name, err))
			continue
		}
		*f.dst = data
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}
