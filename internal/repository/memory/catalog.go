package memory

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/repository"
)

// Comments is an in-memory repository.TicketCommentRepository.
type Comments struct {
	mu    sync.RWMutex
	items []domain.TicketComment
}

// NewComments returns an empty store.
func NewComments() *Comments {
	return &Comments{}
}

func (s *Comments) Create(_ context.Context, comment *domain.TicketComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now().UTC()
	s.items = append(s.items, *comment)
	return nil
}

func (s *Comments) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.TicketComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.TicketComment
	for _, c := range s.items {
		if c.TicketID != ticketID || (c.Internal && !includeInternal) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Assets is an in-memory repository.AssetRepository.
type Assets struct {
	mu    sync.RWMutex
	items map[string]domain.Asset
}

// NewAssets returns an empty store.
func NewAssets() *Assets {
	return &Assets{items: make(map[string]domain.Asset)}
}

func (s *Assets) Create(_ context.Context, asset *domain.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tagTaken(asset.AssetTag, "") {
		return duplicate("assets_asset_tag_key")
	}
	now := time.Now().UTC()
	asset.ID = uuid.NewString()
	asset.CreatedAt, asset.UpdatedAt = now, now
	s.items[asset.ID] = cloneAsset(*asset)
	return nil
}

func (s *Assets) Update(_ context.Context, asset *domain.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[asset.ID]; !ok {
		return pgx.ErrNoRows
	}
	if s.tagTaken(asset.AssetTag, asset.ID) {
		return duplicate("assets_asset_tag_key")
	}
	asset.UpdatedAt = time.Now().UTC()
	s.items[asset.ID] = cloneAsset(*asset)
	return nil
}

func (s *Assets) tagTaken(tag, exceptID string) bool {
	for id, existing := range s.items {
		if id != exceptID && existing.AssetTag == tag {
			return true
		}
	}
	return false
}

func (s *Assets) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *Assets) GetByID(_ context.Context, id string) (*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneAsset(asset)
	return &out, nil
}

func (s *Assets) List(_ context.Context, filter repository.AssetFilter) ([]domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Asset
	for _, a := range s.items {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.Criticality != nil && a.Criticality != *filter.Criticality {
			continue
		}
		if !matchesPtr(filter.AssetTypeID, a.AssetTypeID) {
			continue
		}
		if term := searchTerm(filter.Search); term != "" &&
			!strings.Contains(strings.ToLower(a.Name), term) &&
			!strings.Contains(strings.ToLower(a.Hostname), term) &&
			!strings.Contains(strings.ToLower(a.AssetTag), term) {
			continue
		}
		out = append(out, cloneAsset(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetTag < out[j].AssetTag })
	return page(out, filter.Limit, filter.Offset, 50), nil
}

// AssetTypes is an in-memory repository.AssetTypeRepository.
type AssetTypes struct {
	mu    sync.RWMutex
	items map[string]domain.AssetType
}

// NewAssetTypes returns an empty store.
func NewAssetTypes() *AssetTypes {
	return &AssetTypes{items: make(map[string]domain.AssetType)}
}

func (s *AssetTypes) Create(_ context.Context, assetType *domain.AssetType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.Name == assetType.Name {
			return duplicate("asset_types_name_key")
		}
	}
	assetType.ID = uuid.NewString()
	assetType.CreatedAt = time.Now().UTC()
	s.items[assetType.ID] = *assetType
	return nil
}

func (s *AssetTypes) GetByID(_ context.Context, id string) (*domain.AssetType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (s *AssetTypes) List(_ context.Context) ([]domain.AssetType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AssetType, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Articles is an in-memory repository.KnowledgeRepository.
type Articles struct {
	mu    sync.RWMutex
	items map[string]domain.KnowledgeArticle
}

// NewArticles returns an empty store.
func NewArticles() *Articles {
	return &Articles{items: make(map[string]domain.KnowledgeArticle)}
}

func (s *Articles) Create(_ context.Context, article *domain.KnowledgeArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	article.ID = uuid.NewString()
	article.CreatedAt, article.UpdatedAt = now, now
	s.items[article.ID] = cloneArticle(*article)
	return nil
}

func (s *Articles) Update(_ context.Context, article *domain.KnowledgeArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[article.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	// counters are owned by RecordView and RecordVote
	article.ViewCount = stored.ViewCount
	article.HelpfulCount = stored.HelpfulCount
	article.NotHelpfulCount = stored.NotHelpfulCount
	article.UpdatedAt = time.Now().UTC()
	s.items[article.ID] = cloneArticle(*article)
	return nil
}

func (s *Articles) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *Articles) GetByID(_ context.Context, id string) (*domain.KnowledgeArticle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneArticle(a)
	return &out, nil
}

func (s *Articles) List(_ context.Context, filter repository.ArticleFilter) ([]domain.KnowledgeArticle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.KnowledgeArticle
	for _, a := range s.items {
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, a.Status) {
			continue
		}
		if filter.Category != nil && a.Category != *filter.Category {
			continue
		}
		if term := searchTerm(filter.Search); term != "" &&
			!strings.Contains(strings.ToLower(a.Title), term) &&
			!strings.Contains(strings.ToLower(a.Summary), term) &&
			!strings.Contains(strings.ToLower(a.Content), term) {
			continue
		}
		out = append(out, cloneArticle(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return page(out, filter.Limit, filter.Offset, 20), nil
}

func (s *Articles) RecordView(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.ViewCount++
	s.items[id] = a
	return nil
}

func (s *Articles) RecordVote(_ context.Context, id string, vote domain.ArticleVote) (*domain.KnowledgeArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if vote == domain.VoteNotHelpful {
		a.NotHelpfulCount++
	} else {
		a.HelpfulCount++
	}
	s.items[id] = a
	out := cloneArticle(a)
	return &out, nil
}

// Organization is an in-memory repository.OrganizationRepository seeded
// with a default profile.
type Organization struct {
	mu  sync.RWMutex
	org domain.Organization
}

// NewOrganization returns the default profile.
func NewOrganization() *Organization {
	return &Organization{org: domain.Organization{
		ID:        uuid.NewString(),
		Name:      "Service Desk",
		Timezone:  "UTC",
		Settings:  map[string]any{},
		UpdatedAt: time.Now().UTC(),
	}}
}

func (s *Organization) Get(_ context.Context) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org := s.org
	org.Settings = maps.Clone(s.org.Settings)
	return &org, nil
}

func (s *Organization) Update(_ context.Context, org *domain.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org.ID = s.org.ID
	org.UpdatedAt = time.Now().UTC()
	s.org = *org
	s.org.Settings = maps.Clone(org.Settings)
	return nil
}

func cloneAsset(a domain.Asset) domain.Asset {
	if a.Tags != nil {
		a.Tags = append([]string(nil), a.Tags...)
	}
	return a
}

func cloneArticle(a domain.KnowledgeArticle) domain.KnowledgeArticle {
	if a.Tags != nil {
		a.Tags = append([]string(nil), a.Tags...)
	}
	return a
}

var (
	_ repository.TicketCommentRepository = (*Comments)(nil)
	_ repository.AssetRepository         = (*Assets)(nil)
	_ repository.AssetTypeRepository     = (*AssetTypes)(nil)
	_ repository.KnowledgeRepository     = (*Articles)(nil)
	_ repository.OrganizationRepository  = (*Organization)(nil)
)
