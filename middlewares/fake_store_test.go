package middlewares

import (
	"context"
	"time"

	"citysense-be/models"
	"citysense-be/repository"
)

// fakeUserStore is an in-memory UserStore keyed by hex id.
type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.ID.Hex()] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.users[user.ID.Hex()] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, uid string) (*models.User, error) {
	if u, ok := s.users[uid]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) List(_ context.Context, page, limit int) ([]models.User, int64, error) {
	all := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, *u)
	}
	return all, int64(len(all)), nil
}

func (s *fakeUserStore) ListAll(_ context.Context) ([]models.User, error) {
	all := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, *u)
	}
	return all, nil
}

func (s *fakeUserStore) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) UpdateRole(_ context.Context, uid string, role models.UserRole) error {
	u, ok := s.users[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (s *fakeUserStore) UpdateDisplayName(_ context.Context, uid, displayName string) error {
	u, ok := s.users[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.DisplayName = displayName
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, uid string) error {
	if _, ok := s.users[uid]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, uid)
	return nil
}

func (s *fakeUserStore) IncIssuesReported(_ context.Context, uid string, delta int) error {
	u, ok := s.users[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.IssuesReported += delta
	return nil
}

func (s *fakeUserStore) TouchLastLogin(_ context.Context, uid string) error {
	u, ok := s.users[uid]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}
