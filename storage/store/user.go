package store

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/user"
)

func (s *Store) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	for _, usr := range users {
		if usr.Email != email {
			continue
		}
		if !isExcluded(usr, excludedUsers) {
			return core.ErrDuplicateEmail
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.loadUsers(ctx)
	if err != nil {
		return user.User{}, err
	}
	for _, u := range users {
		if u.ID == usr.ID {
			return user.User{}, core.ErrDuplicateKey
		}
		if u.Email == usr.Email {
			return user.User{}, core.ErrDuplicateEmail
		}
	}
	users = append(users, usr)
	return usr, s.save(ctx, usersKey, users)
}

func (s *Store) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadUsers(ctx)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users, err := s.loadUsers(ctx)
	if err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		if usr.ID == id {
			return usr, nil
		}
	}
	return user.User{}, core.ErrNotFound
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users, err := s.loadUsers(ctx)
	if err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, core.ErrNotFound
}

func (s *Store) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.loadUsers(ctx)
	if err != nil {
		return user.User{}, err
	}
	for i := range users {
		if users[i].ID == usr.ID {
			users[i] = usr
			return usr, s.save(ctx, usersKey, users)
		}
	}
	return user.User{}, core.ErrNotFound
}

// DeleteUser removes the user and soft-unlinks it from every batch: the
// id is dropped from enrollments and any instructor reference is cleared.
// Nothing else cascades. Deleting an absent id is a no-op.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i := range users {
		if users[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	users = append(users[:idx], users[idx+1:]...)

	batches, err := s.loadBatches(ctx)
	if err != nil {
		return err
	}
	for i := range batches {
		b := &batches[i]
		studentIDs := make([]string, 0, len(b.StudentIDs))
		for _, sid := range b.StudentIDs {
			if sid != id {
				studentIDs = append(studentIDs, sid)
			}
		}
		b.StudentIDs = studentIDs
		if b.InstructorID.Valid && b.InstructorID.String == id {
			b.InstructorID = null.String{}
		}
	}

	return s.saveAll(ctx, map[string]interface{}{
		usersKey:   users,
		batchesKey: batches,
	})
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, excl := range excludedUsers {
		if excl.ID == usr.ID {
			return true
		}
	}
	return false
}
