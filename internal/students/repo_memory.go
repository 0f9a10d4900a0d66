package students

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu         sync.Mutex
	nextID     int64
	nextRepID  int64
	students   map[int64]Student
	reps       map[int64]Representative
	repsByNatl map[string]int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextID:     1,
		nextRepID:  1,
		students:   make(map[int64]Student),
		reps:       make(map[int64]Representative),
		repsByNatl: make(map[string]int64),
	}
}

func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]Student, 0, len(r.students))
	for _, s := range r.students {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].FirstName < all[j].FirstName
	})
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *MemoryRepo) Get(ctx context.Context, id int64) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) Enroll(ctx context.Context, req EnrollRequest) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()

	var repID *int64
	if req.Representative != nil {
		id, ok := r.repsByNatl[req.Representative.NationalID]
		if !ok {
			id = r.nextRepID
			r.nextRepID++
		}
		r.reps[id] = Representative{
			ID:         id,
			FirstName:  req.Representative.FirstName,
			LastName:   req.Representative.LastName,
			NationalID: req.Representative.NationalID,
			Phone:      req.Representative.Phone,
			Email:      req.Representative.Email,
			CreatedAt:  now,
		}
		r.repsByNatl[req.Representative.NationalID] = id
		repID = &id
	}

	s := Student{
		ID:               r.nextID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		NationalID:       req.NationalID,
		GradeLevel:       req.GradeLevel,
		Section:          req.Section,
		RepresentativeID: repID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.nextID++
	r.students[s.ID] = s
	return s, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id int64, req UpdateRequest) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	if req.FirstName != nil {
		s.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		s.LastName = *req.LastName
	}
	if req.GradeLevel != nil {
		s.GradeLevel = *req.GradeLevel
	}
	if req.Section != nil {
		s.Section = *req.Section
	}
	s.UpdatedAt = time.Now().UTC()
	r.students[id] = s
	return s, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[id]; !ok {
		return ErrNotFound
	}
	delete(r.students, id)
	return nil
}

func (r *MemoryRepo) SearchRepresentatives(ctx context.Context, query string, limit int) ([]Representative, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var out []Representative
	for _, rep := range r.reps {
		if strings.Contains(strings.ToLower(rep.FirstName), q) ||
			strings.Contains(strings.ToLower(rep.LastName), q) ||
			strings.Contains(strings.ToLower(rep.NationalID), q) {
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
