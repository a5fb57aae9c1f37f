package http

import (
	"context"
	"time"

	"crpdash/internal/auth"
	"crpdash/internal/dataprocessing"
	"crpdash/internal/services"
	"crpdash/pkg/contracts/domain"
)

// DatasetService is what the handlers need from *services.DatasetService
type DatasetService interface {
	Options(ctx context.Context) (domain.FilterOptions, error)
	Query(ctx context.Context, sel domain.Selection) (dataprocessing.View, error)
	Summary(ctx context.Context, sel domain.Selection) (domain.Summary, dataprocessing.View, error)
	Load(ctx context.Context) (*domain.Dataset, error)
	Status() services.DatasetStatus
}

// SessionManager issues and revokes login sessions. *auth.SessionStore satisfies it.
type SessionManager interface {
	Create(ctx context.Context, username string) (auth.Session, error)
	Revoke(ctx context.Context, token string)
	TTL() time.Duration
}
