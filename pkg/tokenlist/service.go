package tokenlist

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/fixes-world/tokenlist-api/pkg/cache"
	"github.com/fixes-world/tokenlist-api/pkg/pagination"
)

const (
	// DefaultReviewersTTL is how long reviewer lists stay cached
	DefaultReviewersTTL = time.Hour

	reviewersKey        = "reviewers/"
	nftReviewersKey     = "reviewers-for-nftlist/"
	tokenListName       = "Flow Token List"
	nftListName         = "Flow NFT List"
	noTokenFoundMessage = "No token found"
)

// Source reads paged lists and reviewers from the ledger.
type Source interface {
	QueryTokenList(ctx context.Context, page, limit int, reviewer string, filter FilterType) (*pagination.Page[StandardTokenView], error)
	QueryEVMBridgedTokenList(ctx context.Context, page, limit int, reviewer string, filter FilterType) (*pagination.Page[StandardTokenView], error)
	QueryNFTList(ctx context.Context, page, limit int, reviewer string, filter FilterType) (*pagination.Page[StandardNFTCollectionView], error)
	QueryEVMBridgedNFTList(ctx context.Context, page, limit int, reviewer string, filter FilterType) (*pagination.Page[StandardNFTCollectionView], error)
	Reviewers(ctx context.Context) ([]ReviewerInfo, error)
	NFTListReviewers(ctx context.Context) ([]ReviewerInfo, error)
}

// ServiceConfig holds list service settings.
type ServiceConfig struct {
	Network Network

	// CachePages memoizes every raw list page for ListTTL
	CachePages bool

	// ListTTL is the page cache TTL (default: cache.DefaultTTL)
	ListTTL time.Duration

	// ReviewersTTL is the reviewer list cache TTL (default: 1h)
	ReviewersTTL time.Duration
}

// Service builds published token and NFT lists.
type Service struct {
	source     Source
	cache      *cache.Manager
	config     ServiceConfig
	normalizer Normalizer
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService creates a list service. cm may be nil to run without a cache.
func NewService(source Source, cm *cache.Manager, config ServiceConfig, logger zerolog.Logger) *Service {
	if config.ListTTL <= 0 {
		config.ListTTL = cache.DefaultTTL
	}
	if config.ReviewersTTL <= 0 {
		config.ReviewersTTL = DefaultReviewersTTL
	}

	return &Service{
		source:     source,
		cache:      cm,
		config:     config,
		normalizer: Normalizer{Network: config.Network},
		logger:     logger,
		now:        time.Now,
	}
}

// TokenList returns the fungible token list for q.
func (s *Service) TokenList(ctx context.Context, q Query) (*TokenList, error) {
	q.Category = CategoryToken
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := s.source.QueryTokenList
	if q.EVMOnly {
		query = s.source.QueryEVMBridgedTokenList
	}

	res, err := pagination.Aggregate(ctx, s.cache, s.plan(q),
		func(ctx context.Context, page, limit int) (*pagination.Page[StandardTokenView], error) {
			return query(ctx, page, limit, q.Reviewer, q.Filter)
		},
		func(v StandardTokenView) (ExportedTokenInfo, bool) {
			return s.normalizer.Token(q.EVMOnly, v)
		},
	)
	if err != nil {
		return nil, s.listError(q, err)
	}

	s.logServed(q, len(res.Items), res.Pages)
	return &TokenList{
		Name:        tokenListName,
		Network:     s.config.Network,
		ChainID:     s.config.Network.EVMChainID(),
		Tokens:      res.Items,
		TotalAmount: len(res.Items),
		FilterType:  q.Filter.String(),
		Timestamp:   s.now().UTC(),
		LogoURI:     listLogoURI,
		Keywords:    defaultKeywords,
		Tags:        defaultTags,
		Version:     listVersion,
	}, nil
}

// NFTList returns the NFT collection list for q.
func (s *Service) NFTList(ctx context.Context, q Query) (*NFTList, error) {
	q.Category = CategoryNFT
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := s.source.QueryNFTList
	if q.EVMOnly {
		query = s.source.QueryEVMBridgedNFTList
	}

	res, err := pagination.Aggregate(ctx, s.cache, s.plan(q),
		func(ctx context.Context, page, limit int) (*pagination.Page[StandardNFTCollectionView], error) {
			return query(ctx, page, limit, q.Reviewer, q.Filter)
		},
		func(v StandardNFTCollectionView) (ExportedNFTCollectionInfo, bool) {
			return s.normalizer.NFT(q.EVMOnly, v)
		},
	)
	if err != nil {
		return nil, s.listError(q, err)
	}

	s.logServed(q, len(res.Items), res.Pages)
	return &NFTList{
		Name:        nftListName,
		Network:     s.config.Network,
		ChainID:     s.config.Network.EVMChainID(),
		Tokens:      res.Items,
		TotalAmount: len(res.Items),
		FilterType:  q.Filter.String(),
		Timestamp:   s.now().UTC(),
		Tags:        defaultTags,
		Version:     listVersion,
	}, nil
}

// Reviewers returns the token list curators, cached for ReviewersTTL.
func (s *Service) Reviewers(ctx context.Context) ([]ReviewerInfo, error) {
	reviewers, err := cache.Cached(ctx, s.cache, reviewersKey, s.config.ReviewersTTL, s.source.Reviewers)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load reviewers")
		return nil, upstream("Failed to load reviewers", err)
	}
	return reviewers, nil
}

// NFTListReviewers returns the NFT list curators, cached for ReviewersTTL.
func (s *Service) NFTListReviewers(ctx context.Context) ([]ReviewerInfo, error) {
	reviewers, err := cache.Cached(ctx, s.cache, nftReviewersKey, s.config.ReviewersTTL, s.source.NFTListReviewers)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load NFT list reviewers")
		return nil, upstream("Failed to load NFT list reviewers", err)
	}
	return reviewers, nil
}

func (s *Service) plan(q Query) pagination.Plan {
	limit := q.EffectiveLimit()
	key := cache.PageKey{
		Method:   q.Category.Method(),
		Reviewer: q.Reviewer,
		Filter:   int(q.Filter),
		Limit:    limit,
		EVMOnly:  q.EVMOnly,
	}

	plan := pagination.Plan{
		Name:      q.Category.Method(),
		Key:       func(page int) string { return key.WithPage(page).String() },
		StartPage: q.StartPage(),
		Limit:     limit,
		LoadAll:   q.LoadAll(),
	}
	if s.config.CachePages {
		plan.TTL = s.config.ListTTL
	}
	return plan
}

func (s *Service) listError(q Query, err error) error {
	if errors.Is(err, pagination.ErrNoEntries) {
		return notFound(noTokenFoundMessage)
	}

	s.logger.Error().
		Err(err).
		Str("list", q.Category.Method()).
		Str("reviewer", q.Reviewer).
		Stringer("filter", q.Filter).
		Bool("evm", q.EVMOnly).
		Msg("List aggregation failed")
	return upstream("Failed to load "+q.Category.Method(), err)
}

func (s *Service) logServed(q Query, items, pages int) {
	s.logger.Info().
		Str("list", q.Category.Method()).
		Str("reviewer", q.Reviewer).
		Stringer("filter", q.Filter).
		Bool("evm", q.EVMOnly).
		Int("items", items).
		Int("pages", pages).
		Msg("List served")
}
