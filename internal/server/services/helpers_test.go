package services

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/memory"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	cfg      *config.Config
	mgr      *memory.InMemoryRepositoryManager
	identity *IdentityService
	sessions *SessionService
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.AccessTokenValidityDuration = time.Minute
	cfg.RefreshTokenValidityDuration = time.Hour
	return cfg
}

func newTestEnv(t *testing.T, tweak ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, f := range tweak {
		f(cfg)
	}
	mgr := memory.NewInMemoryRepositoryManager(nil)
	log := logging.NewNopLogger()
	identity := NewIdentityService(nil, mgr, mgr, cfg, log)
	return &testEnv{
		cfg:      cfg,
		mgr:      mgr,
		identity: identity,
		sessions: NewSessionService(identity, cfg, log),
	}
}
