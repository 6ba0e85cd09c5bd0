// Package status reports liveness and the state of the database.
package status

import (
	"context"
	"time"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/status/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/status/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

type Service struct {
	repo *repo.Repo
	now  func() time.Time
}

func NewService(db database.Queryer) *Service {
	return &Service{repo: repo.NewRepo(db), now: time.Now}
}

func (s *Service) Get(ctx context.Context) (*entity.Status, error) {
	version, err := s.repo.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}
	maxConns, err := s.repo.MaxConnections(ctx)
	if err != nil {
		return nil, err
	}
	opened, err := s.repo.OpenedConnections(ctx)
	if err != nil {
		return nil, err
	}
	return &entity.Status{
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
		Dependencies: entity.Dependencies{
			Database: entity.Database{
				Version:           version,
				MaxConnections:    maxConns,
				OpenedConnections: opened,
			},
		},
	}, nil
}
