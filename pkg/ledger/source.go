package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fixes-world/tokenlist-api/pkg/pagination"
	"github.com/fixes-world/tokenlist-api/pkg/tokenlist"
)

// Executor runs a Cadence script and returns its decoded result.
type Executor interface {
	ExecuteScript(ctx context.Context, name string, script []byte, args ...Value) (any, error)
}

// Source reads token lists, NFT lists and reviewers from the ledger.
type Source struct {
	exec    Executor
	scripts *Scripts
}

var _ tokenlist.Source = (*Source)(nil)

// NewSource creates a ledger backed list source.
func NewSource(exec Executor, scripts *Scripts) *Source {
	return &Source{exec: exec, scripts: scripts}
}

// QueryTokenList reads one page of the fungible token list.
func (s *Source) QueryTokenList(ctx context.Context, page, limit int, reviewer string, filter tokenlist.FilterType) (*pagination.Page[tokenlist.StandardTokenView], error) {
	return queryList(ctx, s.exec, ScriptQueryTokenList, s.scripts.QueryTokenList,
		listArgs(page, limit, reviewer, filter), parseTokenView, sortTokenViews)
}

// QueryEVMBridgedTokenList reads one page of the tokens bridged to Flow EVM.
func (s *Source) QueryEVMBridgedTokenList(ctx context.Context, page, limit int, reviewer string, filter tokenlist.FilterType) (*pagination.Page[tokenlist.StandardTokenView], error) {
	return queryList(ctx, s.exec, ScriptQueryEVMBridgedFTList, s.scripts.QueryEVMBridgedFTList,
		listArgs(page, limit, reviewer, filter), parseTokenView, sortTokenViews)
}

// QueryNFTList reads one page of the NFT collection list.
func (s *Source) QueryNFTList(ctx context.Context, page, limit int, reviewer string, filter tokenlist.FilterType) (*pagination.Page[tokenlist.StandardNFTCollectionView], error) {
	return queryList(ctx, s.exec, ScriptQueryNFTList, s.scripts.QueryNFTList,
		listArgs(page, limit, reviewer, filter), parseNFTCollectionView, sortNFTCollectionViews)
}

// QueryEVMBridgedNFTList reads one page of the collections bridged to Flow EVM.
func (s *Source) QueryEVMBridgedNFTList(ctx context.Context, page, limit int, reviewer string, filter tokenlist.FilterType) (*pagination.Page[tokenlist.StandardNFTCollectionView], error) {
	return queryList(ctx, s.exec, ScriptQueryEVMBridgedNFTList, s.scripts.QueryEVMBridgedNFTList,
		listArgs(page, limit, reviewer, filter), parseNFTCollectionView, sortNFTCollectionViews)
}

// Reviewers reads the token list curators.
func (s *Source) Reviewers(ctx context.Context) ([]tokenlist.ReviewerInfo, error) {
	return s.reviewers(ctx, ScriptGetReviewers, s.scripts.GetReviewers)
}

// NFTListReviewers reads the NFT list curators.
func (s *Source) NFTListReviewers(ctx context.Context) ([]tokenlist.ReviewerInfo, error) {
	return s.reviewers(ctx, ScriptGetNFTListReviewers, s.scripts.GetNFTListReviewers)
}

func (s *Source) reviewers(ctx context.Context, name string, script []byte) ([]tokenlist.ReviewerInfo, error) {
	result, err := s.exec.ExecuteScript(ctx, name, script)
	if err != nil {
		return nil, err
	}

	items, ok := result.([]any)
	if result != nil && !ok {
		return nil, fmt.Errorf("%s: expected array, got %T", name, result)
	}

	reviewers := make([]tokenlist.ReviewerInfo, 0, len(items))
	for i, item := range items {
		r, err := parseReviewer(item)
		if err != nil {
			return nil, fmt.Errorf("%s: item %d: %w", name, i, err)
		}
		reviewers = append(reviewers, r)
	}
	sortReviewers(reviewers)
	return reviewers, nil
}

func listArgs(page, limit int, reviewer string, filter tokenlist.FilterType) []Value {
	return []Value{
		Int(page),
		Int(limit),
		OptionalAddress(reviewer),
		OptionalUInt8(uint8(filter)),
	}
}

// queryList runs a paged list script. A nil result reads as an empty page.
func queryList[T any](
	ctx context.Context,
	exec Executor,
	name string,
	script []byte,
	args []Value,
	parse func(any) (T, error),
	sortItems func([]T),
) (*pagination.Page[T], error) {
	result, err := exec.ExecuteScript(ctx, name, script, args...)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return &pagination.Page[T]{List: []T{}}, nil
	}

	o := asObject(result)
	if o == nil {
		return nil, fmt.Errorf("%s: expected query result, got %T", name, result)
	}

	total, err := strconv.Atoi(o.str("total"))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid total %q: %w", name, o.str("total"), err)
	}

	items, _ := o["list"].([]any)
	list := make([]T, 0, len(items))
	for i, item := range items {
		v, err := parse(item)
		if err != nil {
			return nil, fmt.Errorf("%s: item %d: %w", name, i, err)
		}
		list = append(list, v)
	}
	sortItems(list)

	return &pagination.Page[T]{Total: total, List: list}, nil
}
