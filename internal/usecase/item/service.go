// Package item handles saving, listing, reading and deleting vault items.
package item

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/logger"
	"github.com/kailas-cloud/mindvault/internal/usecase/classify"
)

// SaveInput is a save request as the caller sent it.
type SaveInput struct {
	Title        string
	URL          string
	FileURL      string
	ImageURL     string
	Type         string
	Reason       string
	TopicAuto    string
	TopicUser    []string
	Price        *float64
	SelectedText string
	Description  string
	// PageText is extra page context for classification; it is not stored.
	PageText string
}

// Service handles item CRUD with classification and vectorization.
type Service struct {
	repo        Repository
	classifier  Classifier
	embed       Embedder
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
	defaultList int
	maxList     int
}

// New creates an item service. embed may be nil, leaving items without embeddings.
func New(repo Repository, classifier Classifier, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		classifier:  classifier,
		embed:       embed,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
		defaultList: 1000,
		maxList:     1000,
	}
}

// WithListLimits configures listing size limits.
func (s *Service) WithListLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultList = defaultLimit
	}
	if maxLimit > 0 {
		s.maxList = maxLimit
	}
	return s
}

// Save classifies, embeds and stores a new item.
func (s *Service) Save(ctx context.Context, owner string, in SaveInput) (domitem.Item, error) {
	if strings.TrimSpace(owner) == "" {
		return domitem.Item{}, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(in.Title) == "" {
		return domitem.Item{}, domain.NewValidationError("title", "is required")
	}
	var hint domitem.Type
	if in.Type != "" {
		t, ok := domitem.ParseType(in.Type)
		if !ok {
			return domitem.Item{}, domain.NewValidationError("type", "is not a known item type")
		}
		hint = t
	}

	cls := s.classifier.Classify(ctx, classify.Input{
		Title:        in.Title,
		URL:          in.URL,
		ImageURL:     in.ImageURL,
		Type:         hint,
		Reason:       in.Reason,
		TopicAuto:    in.TopicAuto,
		Price:        in.Price,
		PageText:     in.PageText,
		SelectedText: in.SelectedText,
		Description:  in.Description,
	})

	fields := cls.Apply(domitem.Fields{
		Title:        in.Title,
		URL:          in.URL,
		FileURL:      in.FileURL,
		ImageURL:     in.ImageURL,
		Type:         hint,
		Reason:       in.Reason,
		TopicAuto:    in.TopicAuto,
		TopicUser:    in.TopicUser,
		Price:        in.Price,
		SelectedText: in.SelectedText,
		Description:  in.Description,
	})
	if fields.Reason == "" {
		fields.Reason = domitem.DefaultReason
	}

	it, err := domitem.New(s.newID(), owner, fields, s.vectorize(ctx, fields), s.now())
	if err != nil {
		return domitem.Item{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.repo.Create(ctx, &it); err != nil {
		return domitem.Item{}, fmt.Errorf("create item: %w", err)
	}

	logger.FromContextOr(ctx, s.logger).Debug("Item saved",
		zap.String("id", it.ID()),
		zap.String("type", string(it.Type())),
		zap.String("platform", it.Platform()),
		zap.Int("dims", len(it.Embedding())),
	)
	return it, nil
}

// vectorize embeds the item text. Failures leave the item without an embedding.
func (s *Service) vectorize(ctx context.Context, f domitem.Fields) []float32 {
	if s.embed == nil {
		return nil
	}
	res, err := s.embed.Embed(ctx, domitem.EmbeddingText(f))
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Item embedding failed, saving without vector",
			zap.String("component", "item"),
			zap.Error(err),
		)
		return nil
	}
	return res.Embedding
}

// List returns the owner's newest items. A non-positive limit uses the default.
func (s *Service) List(ctx context.Context, owner string, limit int) ([]domitem.Item, error) {
	if limit <= 0 {
		limit = s.defaultList
	}
	if limit > s.maxList {
		limit = s.maxList
	}
	items, err := s.repo.Find(ctx, domitem.Query{Owner: owner, Order: domitem.OrderNewest, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Get returns one of the owner's items.
func (s *Service) Get(ctx context.Context, owner, id string) (domitem.Item, error) {
	if strings.TrimSpace(owner) == "" {
		return domitem.Item{}, domain.ErrUnauthenticated
	}
	it, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return domitem.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// Delete removes one of the owner's items. Another owner's item reads as not found.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	if strings.TrimSpace(owner) == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
