package search

import (
	"math"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/emitter"
	"bookstack/core/logger"
	"bookstack/core/types"
)

// SearchResponse is one result page. Cached is true when the page was
// served from the result cache.
type SearchResponse struct {
	Data       []*models.TransactionResponse `json:"data"`
	Pagination types.Pagination              `json:"pagination"`
	Cached     bool                          `json:"cached"`
	TookMs     int64                         `json:"took_ms"`
}

// FilterOptions lists the values the search form can filter on.
type FilterOptions struct {
	Books    []*models.BookSelectOption    `json:"books"`
	Subjects []*models.SubjectSelectOption `json:"subjects"`
	Tags     []*models.TagSelectOption     `json:"tags"`
	Ratings  []string                      `json:"ratings"`
}

// Events whose payload changes search results. Any of them bumps the
// catalog version, which is part of every cache key.
var invalidatingEvents = []string{
	"transactions.create", "transactions.update", "transactions.delete",
	"subjects.create", "subjects.update", "subjects.delete",
	"tags.create", "tags.update", "tags.delete",
	"books.update", "books.delete",
}

type SearchService struct {
	DB      *gorm.DB
	Logger  logger.Logger
	Cache   *ResultCache
	version atomic.Uint64
}

func NewSearchService(db *gorm.DB, em *emitter.Emitter, cache *ResultCache, log logger.Logger) *SearchService {
	s := &SearchService{
		DB:     db,
		Logger: log,
		Cache:  cache,
	}
	for _, event := range invalidatingEvents {
		em.On(event, func(any) { s.version.Add(1) })
	}
	return s
}

// Version returns the current catalog version stamp.
func (s *SearchService) Version() uint64 {
	return s.version.Load()
}

// Search runs a validated request for the given owner. Identical
// requests between two mutations hit the cache regardless of the order
// their filters were written in.
func (s *SearchService) Search(userId uint, req *SearchRequest) (*SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	key := Fingerprint(req, userId, s.version.Load())
	if cached := s.Cache.Get(key); cached != nil {
		hit := *cached
		hit.Cached = true
		hit.TookMs = time.Since(start).Milliseconds()
		return &hit, nil
	}

	cq := Compile(req, userId)

	var (
		items []*models.Transaction
		total int
		err   error
	)
	if cq.PostFilter == nil {
		items, total, err = s.pageInStore(cq)
	} else {
		items, total, err = s.pageWithPostFilter(cq)
	}
	if err != nil {
		s.Logger.Error("search query failed", logger.Uint("user_id", userId), logger.Any("error", err))
		return nil, err
	}

	responses := make([]*models.TransactionResponse, len(items))
	for i, item := range items {
		responses[i] = item.ToResponse()
	}

	totalPages := int(math.Ceil(float64(total) / float64(cq.PageSize)))
	resp := &SearchResponse{
		Data: responses,
		Pagination: types.Pagination{
			Total:       total,
			Page:        cq.Page,
			PageSize:    cq.PageSize,
			TotalPages:  totalPages,
			HasNext:     cq.Page < totalPages,
			HasPrevious: cq.Page > 1,
		},
		TookMs: time.Since(start).Milliseconds(),
	}
	s.Cache.Put(key, resp)
	return resp, nil
}

// pageInStore paginates in SQL when every condition is expressible
// there.
func (s *SearchService) pageInStore(cq *CompiledQuery) ([]*models.Transaction, int, error) {
	query := cq.Apply(s.DB.Model(&models.Transaction{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*models.Transaction
	query = (&models.Transaction{}).Preload(query).
		Order(cq.Sort).
		Offset((cq.Page - 1) * cq.PageSize).
		Limit(cq.PageSize)
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

// pageWithPostFilter fetches the full SQL candidate set in sort order,
// confirms each row in memory and paginates the confirmed set, so the
// reported total reflects rows that actually match.
func (s *SearchService) pageWithPostFilter(cq *CompiledQuery) ([]*models.Transaction, int, error) {
	query := cq.Apply(s.DB.Model(&models.Transaction{}))
	query = (&models.Transaction{}).Preload(query).Order(cq.Sort)

	var candidates []*models.Transaction
	if err := query.Find(&candidates).Error; err != nil {
		return nil, 0, err
	}

	matched := make([]*models.Transaction, 0, len(candidates))
	for _, candidate := range candidates {
		if cq.PostFilter(candidate) {
			matched = append(matched, candidate)
		}
	}

	offset := (cq.Page - 1) * cq.PageSize
	if offset >= len(matched) {
		return []*models.Transaction{}, len(matched), nil
	}
	end := offset + cq.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], len(matched), nil
}

// GetFilterOptions returns the user's books plus the shared subject and
// tag catalogs, and the rating values present in the user's entries.
func (s *SearchService) GetFilterOptions(userId uint) (*FilterOptions, error) {
	opts := &FilterOptions{
		Books:    []*models.BookSelectOption{},
		Subjects: []*models.SubjectSelectOption{},
		Tags:     []*models.TagSelectOption{},
		Ratings:  []string{},
	}

	var books []*models.Book
	if err := s.DB.Where("user_id = ?", userId).Order("title ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	for _, b := range books {
		opts.Books = append(opts.Books, b.ToSelectOption())
	}

	var subjects []*models.Subject
	if err := s.DB.Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	for _, sub := range subjects {
		opts.Subjects = append(opts.Subjects, sub.ToSelectOption())
	}

	var tags []*models.Tag
	if err := s.DB.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	for _, t := range tags {
		opts.Tags = append(opts.Tags, t.ToSelectOption())
	}

	err := s.DB.Model(&models.Transaction{}).
		Where("user_id = ? AND information_rating IS NOT NULL", userId).
		Distinct("information_rating").
		Order("information_rating ASC").
		Pluck("information_rating", &opts.Ratings).Error
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// ClearCache drops every cached result page.
func (s *SearchService) ClearCache() {
	s.Cache.Clear()
	s.Logger.Info("search cache cleared")
}
