package service

import (
	"context"

	"go-wiki-api/internal/data"
	"go-wiki-api/internal/query"
)

// AdminService exposes accounts and the audit trail to administrators.
type AdminService struct {
	users UserRepository
	logs  LogRepository
}

func NewAdminService(users UserRepository, logs LogRepository) *AdminService {
	return &AdminService{users: users, logs: logs}
}

func (s *AdminService) ListUsers(ctx context.Context, opts query.Options) ([]data.User, error) {
	return s.users.List(ctx, opts)
}

func (s *AdminService) GetUser(ctx context.Context, id int64) (*data.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AdminService) ListLogs(ctx context.Context, opts query.Options) ([]data.Log, error) {
	return s.logs.List(ctx, opts)
}

// GetLog returns a log with its entries in position order.
func (s *AdminService) GetLog(ctx context.Context, id string) (*data.Log, error) {
	return s.logs.GetByID(ctx, id)
}
