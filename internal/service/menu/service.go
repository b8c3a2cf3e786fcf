// Package menu caches the menu served by the configured gateway.
package menu

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/gateway"
)

const DefaultTTL = 2 * time.Minute

type Service struct {
	source gateway.MenuSource
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu        sync.RWMutex
	menu      domain.Menu
	fetchedAt time.Time
	loaded    bool

	group singleflight.Group
}

func New(source gateway.MenuSource, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, ttl: ttl, now: time.Now, logger: logger.Named("menu")}
}

// Get returns the cached menu while fresh. A failed refresh falls back to the
// last good copy when there is one.
func (s *Service) Get(ctx context.Context) (domain.Menu, error) {
	if m, ok := s.fresh(); ok {
		return m, nil
	}
	v, err, _ := s.group.Do("menu", func() (any, error) {
		if m, ok := s.fresh(); ok {
			return m, nil
		}
		return s.refresh(ctx)
	})
	if err == nil {
		return v.(domain.Menu), nil
	}

	s.mu.RLock()
	stale, loaded := s.menu, s.loaded
	s.mu.RUnlock()
	if loaded {
		s.logger.Warn("serving stale menu", zap.Error(err))
		return stale, nil
	}
	return domain.Menu{}, err
}

// Product finds a product in the current menu.
func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	m, err := s.Get(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	p, ok := m.Product(id)
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

// Invalidate forces the next Get to refresh.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

func (s *Service) fresh() (domain.Menu, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded || s.now().Sub(s.fetchedAt) >= s.ttl {
		return domain.Menu{}, false
	}
	return s.menu, true
}

func (s *Service) refresh(ctx context.Context) (domain.Menu, error) {
	m, err := s.source.GetMenu(ctx)
	if err != nil {
		return domain.Menu{}, err
	}
	s.mu.Lock()
	s.menu = m
	s.fetchedAt = s.now()
	s.loaded = true
	s.mu.Unlock()
	s.logger.Debug("menu refreshed", zap.Int("products", len(m.Products)), zap.Int("categories", len(m.Categories)))
	return m, nil
}
