// Package memory holds in-process implementations of the repository
// interfaces. They back the "memory" drivers and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
)

type data struct {
	users         map[string]models.User
	dissertations map[string]models.Dissertation
	milestones    map[string]models.Milestone
	submissions   map[string]models.Submission
	messages      map[string]models.Message
}

func newData() *data {
	return &data{
		users:         make(map[string]models.User),
		dissertations: make(map[string]models.Dissertation),
		milestones:    make(map[string]models.Milestone),
		submissions:   make(map[string]models.Submission),
		messages:      make(map[string]models.Message),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.dissertations {
		c.dissertations[k] = v
	}
	for k, v := range d.milestones {
		c.milestones[k] = v
	}
	for k, v := range d.submissions {
		c.submissions[k] = v
	}
	for k, v := range d.messages {
		c.messages[k] = v
	}
	return c
}

type state struct {
	// txMu serializes transactions and every write made outside of one.
	txMu sync.Mutex
	mu   sync.RWMutex
	d    *data
}

// Store is a repository.Store kept in memory. Transactions are serialized
// and roll back by restoring a snapshot taken when they began.
type Store struct {
	st   *state
	inTx bool
}

func NewStore() *Store {
	return &Store{st: &state{d: newData()}}
}

func (s *Store) Users() repository.UserRepository                 { return userRepository{s} }
func (s *Store) Dissertations() repository.DissertationRepository { return dissertationRepository{s} }
func (s *Store) Milestones() repository.MilestoneRepository       { return milestoneRepository{s} }
func (s *Store) Submissions() repository.SubmissionRepository     { return submissionRepository{s} }
func (s *Store) Messages() repository.MessageRepository           { return messageRepository{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.st.mu.RLock()
	snapshot := s.st.d.clone()
	s.st.mu.RUnlock()

	defer func() {
		p := recover()
		if p != nil || err != nil {
			s.st.mu.Lock()
			s.st.d = snapshot
			s.st.mu.Unlock()
		}
		if p != nil {
			panic(p)
		}
	}()

	return fn(&Store{st: s.st, inTx: true})
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) read(fn func(d *data) error) error {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return fn(s.st.d)
}

func (s *Store) write(fn func(d *data) error) error {
	if !s.inTx {
		s.st.txMu.Lock()
		defer s.st.txMu.Unlock()
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return fn(s.st.d)
}

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, constraint)
}

type userRepository struct{ s *Store }

func (r userRepository) Create(ctx context.Context, user *models.User) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.users[user.ID]; ok {
			return duplicate("users_pkey")
		}
		for _, u := range d.users {
			if strings.EqualFold(u.Email, user.Email) {
				return duplicate("users_email_key")
			}
			if u.Subject == user.Subject {
				return duplicate("users_subject_key")
			}
		}
		d.users[user.ID] = *user
		return nil
	})
}

func (r userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var out *models.User
	err := r.s.read(func(d *data) error {
		if u, ok := d.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r userRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Subject == subject })
}

func (r userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r userRepository) find(match func(models.User) bool) (*models.User, error) {
	var out *models.User
	err := r.s.read(func(d *data) error {
		for _, u := range d.users {
			if match(u) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r userRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	err := r.s.read(func(d *data) error {
		for _, id := range ids {
			if u, ok := d.users[id]; ok {
				out = append(out, u)
			}
		}
		return nil
	})
	sortUsers(out)
	return out, err
}

func (r userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := r.s.read(func(d *data) error {
		for _, u := range d.users {
			out = append(out, u)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].DisplayName != users[j].DisplayName {
			return users[i].DisplayName < users[j].DisplayName
		}
		return users[i].ID < users[j].ID
	})
}

func (r userRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	return r.s.write(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return nil
		}
		u.DisplayName = displayName
		u.UpdatedAt = time.Now()
		d.users[id] = u
		return nil
	})
}
