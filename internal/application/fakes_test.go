package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
)

func nullLogger() *logrus.Logger {
	l, _ := test.NewNullLogger()
	return l
}

type inlineTx struct{ calls int }

func (t *inlineTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeHasher struct {
	verifies int
	failHash bool
}

func (h *fakeHasher) Hash(plain string) (string, error) {
	if h.failHash {
		return "", errors.New("hasher down")
	}
	return "hashed:" + plain, nil
}

func (h *fakeHasher) Verify(hash, plain string) (bool, error) {
	h.verifies++
	if strings.HasPrefix(hash, "old:") {
		return strings.TrimPrefix(hash, "old:") == plain, nil
	}
	return hash == "hashed:"+plain, nil
}

func (h *fakeHasher) NeedsRehash(hash string) bool { return strings.HasPrefix(hash, "old:") }

type memUsers struct {
	mu       sync.Mutex
	rows     map[int64]entity.User
	nextID   int64
	saveErr  error
	findErr  error
	onDelete func(id int64)
}

func newMemUsers(users ...entity.User) *memUsers {
	m := &memUsers{rows: map[int64]entity.User{}}
	for _, u := range users {
		if u.ID > m.nextID {
			m.nextID = u.ID
		}
		m.rows[u.ID] = u
	}
	return m
}

func (m *memUsers) get(pred func(entity.User) bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.rows {
		if pred(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.NotFound("USER_NOT_FOUND", "User not found")
}

func (m *memUsers) FindByID(_ context.Context, id int64) (*entity.User, error) {
	return m.get(func(u entity.User) bool { return u.ID == id })
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return m.get(func(u entity.User) bool { return u.Username == username })
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.get(func(u entity.User) bool { return u.PersonalData.Email == email })
}

func (m *memUsers) FindAll(context.Context) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.User, 0, len(m.rows))
	for _, u := range m.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, err := m.FindByID(ctx, id)
	return err == nil, nil
}

func (m *memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) Save(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	} else if _, ok := m.rows[u.ID]; !ok {
		return domain.NotFound("USER_NOT_FOUND", "User not found")
	}
	cp := *u
	cp.Reviews = nil
	m.rows[u.ID] = cp
	return nil
}

func (m *memUsers) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.NotFound("USER_NOT_FOUND", "User not found")
	}
	delete(m.rows, id)
	if m.onDelete != nil {
		m.onDelete(id)
	}
	return nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return domain.NotFound("USER_NOT_FOUND", "User not found")
	}
	u.PasswordHash = hash
	m.rows[id] = u
	return nil
}

type memHosts struct {
	mu     sync.Mutex
	rows   map[int64]entity.Host
	nextID int64
}

func newMemHosts(hosts ...entity.Host) *memHosts {
	m := &memHosts{rows: map[int64]entity.Host{}}
	for _, h := range hosts {
		if h.ID > m.nextID {
			m.nextID = h.ID
		}
		m.rows[h.ID] = h
	}
	return m
}

func (m *memHosts) find(pred func(entity.Host) bool) (*entity.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.rows {
		if pred(h) {
			cp := h
			return &cp, nil
		}
	}
	return nil, domain.NotFound("HOST_NOT_FOUND", "Host not found")
}

func (m *memHosts) FindByID(_ context.Context, id int64) (*entity.Host, error) {
	return m.find(func(h entity.Host) bool { return h.ID == id })
}

func (m *memHosts) FindByEmail(_ context.Context, email string) (*entity.Host, error) {
	return m.find(func(h entity.Host) bool { return h.Contact.Email == email })
}

func (m *memHosts) FindAll(context.Context) ([]entity.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Host, 0, len(m.rows))
	for _, h := range m.rows {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memHosts) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, err := m.FindByID(ctx, id)
	return err == nil, nil
}

func (m *memHosts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memHosts) Save(_ context.Context, h *entity.Host) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.ID == 0 {
		m.nextID++
		h.ID = m.nextID
	}
	m.rows[h.ID] = *h
	return nil
}

func (m *memHosts) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.NotFound("HOST_NOT_FOUND", "Host not found")
	}
	delete(m.rows, id)
	return nil
}

func (m *memHosts) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.rows[id]
	if !ok {
		return domain.NotFound("HOST_NOT_FOUND", "Host not found")
	}
	h.PasswordHash = hash
	m.rows[id] = h
	return nil
}

// memReviews is wired to memUsers.onDelete to mimic ON DELETE CASCADE.
type memReviews struct {
	mu     sync.Mutex
	rows   map[int64]entity.Review
	nextID int64
}

func newMemReviews(reviews ...entity.Review) *memReviews {
	m := &memReviews{rows: map[int64]entity.Review{}}
	for _, r := range reviews {
		if r.ID > m.nextID {
			m.nextID = r.ID
		}
		m.rows[r.ID] = r
	}
	return m
}

func (m *memReviews) FindByID(_ context.Context, id int64) (*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, domain.NotFound("REVIEW_NOT_FOUND", "Review not found")
	}
	return &r, nil
}

func (m *memReviews) FindAllByAuthorID(_ context.Context, authorID int64) ([]entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Review, 0)
	for _, r := range m.rows {
		if r.AuthorID == authorID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memReviews) Save(_ context.Context, r *entity.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	m.rows[r.ID] = *r
	return nil
}

func (m *memReviews) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.NotFound("REVIEW_NOT_FOUND", "Review not found")
	}
	delete(m.rows, id)
	return nil
}

func (m *memReviews) deleteByAuthor(authorID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rows {
		if r.AuthorID == authorID {
			delete(m.rows, id)
		}
	}
}

type recordingPublisher struct {
	events []AccountEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev AccountEvent) error {
	p.events = append(p.events, ev)
	return p.err
}
