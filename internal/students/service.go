package students

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidArgument = errors.New("students: invalid argument")

const (
	defaultListLimit   = 50
	maxListLimit       = 200
	defaultSearchLimit = 20
)

// Service validates input and delegates persistence to the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Student, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (Student, error) {
	if id <= 0 {
		return Student{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Enroll(ctx context.Context, req EnrollRequest) (Student, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.NationalID = strings.TrimSpace(req.NationalID)
	if req.FirstName == "" || req.LastName == "" || req.NationalID == "" {
		return Student{}, ErrInvalidArgument
	}
	if rep := req.Representative; rep != nil {
		rep.FirstName = strings.TrimSpace(rep.FirstName)
		rep.LastName = strings.TrimSpace(rep.LastName)
		rep.NationalID = strings.TrimSpace(rep.NationalID)
		if rep.FirstName == "" || rep.LastName == "" || rep.NationalID == "" {
			return Student{}, ErrInvalidArgument
		}
	}
	return s.repo.Enroll(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Student, error) {
	if id <= 0 {
		return Student{}, ErrInvalidArgument
	}
	if req.FirstName == nil && req.LastName == nil && req.GradeLevel == nil && req.Section == nil {
		return Student{}, ErrInvalidArgument
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) SearchRepresentatives(ctx context.Context, query string, limit int) ([]Representative, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 || limit > maxListLimit {
		limit = defaultSearchLimit
	}
	return s.repo.SearchRepresentatives(ctx, query, limit)
}
