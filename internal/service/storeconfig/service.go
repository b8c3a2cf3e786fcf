// Package storeconfig loads and saves the kiosk's display settings.
package storeconfig

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/repository/kv"
)

// Key is the kv key the configuration blob is stored under.
const Key = "store_config"

var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

// Defaults is the configuration served before anything was saved.
func Defaults() domain.StoreConfig {
	return domain.StoreConfig{
		StoreName:      "Burger House",
		TotemName:      "Totem 01",
		Slogan:         "Fresh every day",
		LogoURL:        "",
		PrimaryColor:   "#E4002B",
		SecondaryColor: "#FFC72C",
		AccentColor:    "#27251F",
		WelcomeMessage: "Touch the screen to start your order",
		AdminPIN:       "1234",
	}
}

type Service struct {
	repo   kv.Repository
	logger *zap.Logger
}

func New(repo kv.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("storeconfig")}
}

// Load returns the saved configuration merged over Defaults. Keys absent from
// the saved blob keep their default. Read or decode failures are logged and
// the defaults are served.
func (s *Service) Load(ctx context.Context) domain.StoreConfig {
	cfg, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("serving default store config", zap.Error(err))
		return Defaults()
	}
	return cfg
}

func (s *Service) load(ctx context.Context) (domain.StoreConfig, error) {
	cfg := Defaults()
	raw, err := s.repo.Get(ctx, Key)
	if errors.Is(err, domain.ErrNotFound) {
		return cfg, nil
	}
	if err != nil {
		return cfg, &domain.PersistenceError{Op: "load store config", Err: err}
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Defaults(), &domain.PersistenceError{Op: "decode store config", Err: err}
	}
	return cfg, nil
}

// Public is Load without the admin PIN.
func (s *Service) Public(ctx context.Context) domain.StoreConfig {
	return s.Load(ctx).Public()
}

// Save validates and persists cfg. An empty PIN keeps the current one.
func (s *Service) Save(ctx context.Context, cfg domain.StoreConfig) (domain.StoreConfig, error) {
	cfg.StoreName = strings.TrimSpace(cfg.StoreName)
	if cfg.StoreName == "" {
		return domain.StoreConfig{}, domain.NewValidationError("storeName", "store name required")
	}
	if cfg.AdminPIN == "" {
		cfg.AdminPIN = s.Load(ctx).AdminPIN
	}
	if !pinPattern.MatchString(cfg.AdminPIN) {
		return domain.StoreConfig{}, domain.NewValidationError("adminPin", "PIN must be 4 to 8 digits")
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return domain.StoreConfig{}, &domain.PersistenceError{Op: "encode store config", Err: err}
	}
	if err := s.repo.Put(ctx, Key, raw); err != nil {
		return domain.StoreConfig{}, &domain.PersistenceError{Op: "save store config", Err: err}
	}
	s.logger.Info("store config saved", zap.String("store_name", cfg.StoreName))
	return cfg, nil
}

// Patch is a partial update. Nil fields keep their current value.
type Patch struct {
	StoreName      *string `json:"storeName"`
	TotemName      *string `json:"totemName"`
	Slogan         *string `json:"slogan"`
	LogoURL        *string `json:"logoUrl"`
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	AccentColor    *string `json:"accentColor"`
	WelcomeMessage *string `json:"welcomeMessage"`
	AdminPIN       *string `json:"adminPin"`
}

// Apply returns cfg with every non-nil field of p written over it.
func (p Patch) Apply(cfg domain.StoreConfig) domain.StoreConfig {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.StoreName, p.StoreName)
	set(&cfg.TotemName, p.TotemName)
	set(&cfg.Slogan, p.Slogan)
	set(&cfg.LogoURL, p.LogoURL)
	set(&cfg.PrimaryColor, p.PrimaryColor)
	set(&cfg.SecondaryColor, p.SecondaryColor)
	set(&cfg.AccentColor, p.AccentColor)
	set(&cfg.WelcomeMessage, p.WelcomeMessage)
	set(&cfg.AdminPIN, p.AdminPIN)
	return cfg
}

// Update applies p over the stored configuration and saves the result. A
// failed read is returned rather than saving the patch over defaults.
func (s *Service) Update(ctx context.Context, p Patch) (domain.StoreConfig, error) {
	current, err := s.load(ctx)
	if err != nil {
		return domain.StoreConfig{}, err
	}
	return s.Save(ctx, p.Apply(current))
}
