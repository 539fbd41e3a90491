package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/observability"
	"go.uber.org/zap"
)

//go:generate mockgen -source=service.go -destination=service_mock_test.go -package=service

type Cache interface {
	Set(*domain.Order)
	Get(int64) (*domain.Order, bool)
}

type Storage interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetAll(ctx context.Context) ([]domain.Order, error)
	FindMatching(ctx context.Context, email string, productID int64) ([]domain.Order, error)
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

type Directory interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, bool, error)
}

type Events interface {
	OrderCreated(ctx context.Context, order *domain.Order) error
}

// Service enforces the order-creation rules: the requesting email must
// resolve to a directory user, and a customer may order each product at most
// once. Reads are served cache-first.
type Service struct {
	cache     Cache
	storage   Storage
	directory Directory
	events    Events
	logger    *zap.Logger
	metrics   observability.Metrics
}

// NewService wires the workflow. events may be nil when publishing is not
// configured.
func NewService(cache Cache, storage Storage, directory Directory, events Events, logger *zap.Logger, metrics observability.Metrics) *Service {
	return &Service{
		cache:     cache,
		storage:   storage,
		directory: directory,
		events:    events,
		logger:    logger,
		metrics:   metrics,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, _, err := s.GetByIDWithStats(ctx, id)
	return o, err
}

func (s *Service) GetByIDWithStats(ctx context.Context, id int64) (*domain.Order, LookupStats, error) {
	var st LookupStats

	tCacheStart := time.Now()
	if order, ok := s.cache.Get(id); ok {
		st.Source = SourceCache
		st.CacheMs = convertToMs(tCacheStart)
		s.metrics.IncCacheHit()
		s.metrics.ObserveLookup(string(st.Source), st.CacheMs, 0)

		s.logger.Info("order fetched from cache",
			zap.Int64("order_id", id),
			zap.Float64("cache_ms", st.CacheMs),
		)
		return order, st, nil
	}

	s.metrics.IncCacheMiss()
	st.CacheMs = convertToMs(tCacheStart)

	tDbStart := time.Now()
	order, err := s.storage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, st, fmt.Errorf("%w: id %d", domain.ErrOrderNotFound, id)
		}
		s.logger.Error("order lookup failed",
			zap.Int64("order_id", id),
			zap.Error(err),
		)
		return nil, st, err
	}

	st.Source = SourceDB
	st.DBMs = convertToMs(tDbStart)

	s.cache.Set(order)
	s.metrics.ObserveLookup(string(st.Source), st.CacheMs, st.DBMs)

	s.logger.Info("order fetched from db",
		zap.Int64("order_id", id),
		zap.Float64("cache_ms", st.CacheMs),
		zap.Float64("db_ms", st.DBMs),
	)
	return order, st, nil
}

func (s *Service) GetAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.storage.GetAll(ctx)
	if err != nil {
		s.logger.Error("order list failed", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (s *Service) Create(ctx context.Context, productID int64, email string) (*domain.Order, error) {
	o, _, err := s.CreateWithStats(ctx, productID, email)
	return o, err
}

// CreateWithStats resolves the user, rejects duplicate purchases and
// persists the new order. The duplicate check and the save are not atomic;
// concurrent creates for the same pair can race.
func (s *Service) CreateWithStats(ctx context.Context, productID int64, email string) (*domain.Order, CreateStats, error) {
	var st CreateStats

	user, found, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("user resolution failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, st, err
	}
	if !found {
		return nil, st, fmt.Errorf("%w: email %s", domain.ErrUserNotFound, email)
	}

	existing, err := s.storage.FindMatching(ctx, user.Email, productID)
	if err != nil {
		s.logger.Error("duplicate check failed",
			zap.String("email", user.Email),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return nil, st, err
	}
	if len(existing) > 0 {
		return nil, st, fmt.Errorf("%w: product %d already ordered by customer %s",
			domain.ErrInvalidOrder, productID, user.Email)
	}

	// Snapshot the resolved user, not the raw input.
	order := &domain.Order{
		ProductID: productID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	t0 := time.Now()
	saved, err := s.storage.Save(ctx, order)
	if err != nil {
		s.logger.Error("order save failed",
			zap.Int64("product_id", productID),
			zap.String("email", email),
			zap.Error(err),
		)
		// The storage cause stays in the logs only.
		return nil, st, fmt.Errorf("%w: product_id %d, email %s", domain.ErrOrderSave, productID, email)
	}
	st.DBWriteMs = convertToMs(t0)

	s.cache.Set(saved)
	s.metrics.ObserveCreate(st.DBWriteMs)

	if s.events != nil {
		// Best effort: the order is persisted either way.
		_ = s.events.OrderCreated(ctx, saved)
	}

	s.logger.Info("order created",
		zap.Int64("order_id", saved.OrderID),
		zap.Int64("product_id", saved.ProductID),
		zap.String("email", saved.Email),
		zap.Float64("db_write_ms", st.DBWriteMs),
	)
	return saved, st, nil
}
