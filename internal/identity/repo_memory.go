package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]User

	teacherIDs        map[int64]struct{}
	representativeIDs map[int64]struct{}

	// Err, when set, is returned by every method. Lets tests simulate an
	// unreachable store.
	Err error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextID:            1,
		users:             make(map[int64]User),
		teacherIDs:        make(map[int64]struct{}),
		representativeIDs: make(map[int64]struct{}),
	}
}

// Seed inserts a user as-is and returns its assigned id.
func (r *MemoryRepo) Seed(u User) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	} else if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	r.users[u.ID] = u
	return u.ID
}

// LinkTeacher marks a user as having a teacher profile.
func (r *MemoryRepo) LinkTeacher(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teacherIDs[userID] = struct{}{}
}

// LinkRepresentative marks a user as having a representative profile.
func (r *MemoryRepo) LinkRepresentative(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.representativeIDs[userID] = struct{}{}
}

// StoredPassword reads the raw password field, for migration assertions.
func (r *MemoryRepo) StoredPassword(userID int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[userID].Password
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return User{}, r.Err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return User{}, r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) Create(ctx context.Context, params CreateUserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return User{}, r.Err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, params.Email) || u.Username == params.Username {
			return User{}, ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u := User{
		ID:         r.nextID,
		Email:      params.Email,
		Username:   params.Username,
		Password:   params.Password,
		Status:     params.Status,
		RoleID:     params.RoleID,
		FirstName:  params.FirstName,
		LastName:   params.LastName,
		NationalID: params.NationalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.nextID++
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryRepo) UpdatePassword(ctx context.Context, id int64, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Password = hashed
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	t := at.UTC()
	u.LastLoginAt = &t
	r.users[id] = u
	return nil
}

func (r *MemoryRepo) HasTeacherProfile(ctx context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	_, ok := r.teacherIDs[userID]
	return ok, nil
}

func (r *MemoryRepo) HasRepresentativeProfile(ctx context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	_, ok := r.representativeIDs[userID]
	return ok, nil
}
