package payments

import (
	"github.com/mirocommunity/localtv/app/repository/repositorytest"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
)

func newTestProcessor(s *repositorytest.Store) *Processor {
	repos := s.Repositories()
	engine := tiers.NewEngine(s.Runner(), repos, nil, true)
	return NewProcessor(engine, s.Runner(), repos)
}
