package endpoints

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// RepositoryPort defines data access methods for endpoints.
type RepositoryPort interface {
	ListEndpoints(ctx context.Context) ([]Endpoint, error)
	GetEndpoint(ctx context.Context, id int64) (Endpoint, error)
	GetEndpointByName(ctx context.Context, name string) (Endpoint, error)
	CreateEndpoint(ctx context.Context, path, method, name string) (Endpoint, error)
	UpdateEndpoint(ctx context.Context, id int64, path, method, name string) (Endpoint, error)
	DeleteEndpoint(ctx context.Context, id int64) error
}

// Service handles endpoint business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListEndpoints returns all endpoints.
func (s *Service) ListEndpoints(ctx context.Context) ([]Endpoint, error) {
	return s.repo.ListEndpoints(ctx)
}

// GetEndpoint fetches an endpoint by ID.
func (s *Service) GetEndpoint(ctx context.Context, id int64) (Endpoint, error) {
	return s.repo.GetEndpoint(ctx, id)
}

// CreateEndpoint inserts a new endpoint after validating its fields.
func (s *Service) CreateEndpoint(ctx context.Context, path, method, name string) (Endpoint, error) {
	path, method, name, err := normalize(path, method, name)
	if err != nil {
		return Endpoint{}, err
	}
	return s.repo.CreateEndpoint(ctx, path, method, name)
}

// UpdateEndpoint updates an existing endpoint.
func (s *Service) UpdateEndpoint(ctx context.Context, id int64, path, method, name string) (Endpoint, error) {
	path, method, name, err := normalize(path, method, name)
	if err != nil {
		return Endpoint{}, err
	}
	return s.repo.UpdateEndpoint(ctx, id, path, method, name)
}

// DeleteEndpoint removes an endpoint by ID.
func (s *Service) DeleteEndpoint(ctx context.Context, id int64) error {
	return s.repo.DeleteEndpoint(ctx, id)
}

func normalize(path, method, name string) (string, string, string, error) {
	path = strings.TrimSpace(path)
	method = strings.ToUpper(strings.TrimSpace(method))
	name = strings.TrimSpace(name)
	if path == "" || method == "" || name == "" {
		return "", "", "", fmt.Errorf("%w: path, method and name are required", shared.ErrValidation)
	}
	return path, method, name, nil
}
