package handler_test

import (
	"context"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"chefconnect/internal/domain/model"
	repo "chefconnect/internal/repository"

	"github.com/sirupsen/logrus"
)

// ハンドラテスト用のインメモリストア（WithinTxで全体ロック）
type memStore struct {
	mu     sync.Mutex
	orders map[string]model.Order
	items  map[string][]model.OrderItem
	users  map[string]model.User
	audits []model.AuditLog
}

func newMemStore(users ...model.User) *memStore {
	s := &memStore{
		orders: map[string]model.Order{},
		items:  map[string][]model.OrderItem{},
		users:  map[string]model.User{},
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

func (s *memStore) Orders() repo.OrderRepository         { return memOrders{s} }
func (s *memStore) OrderItems() repo.OrderItemRepository { return memItems{s} }
func (s *memStore) Users() repo.UserRepository           { return memUsers{s} }
func (s *memStore) AuditLogs() repo.AuditLogRepository   { return memAudits{s} }

// TokenVersionGuard / WSHandler はtxの外で使う
func (s *memStore) userRepo() repo.UserRepository { return lockedUsers{s} }

type memOrders struct{ s *memStore }

func (m memOrders) Create(ctx context.Context, o model.Order) error {
	m.s.orders[o.ID] = o
	return nil
}

func (m memOrders) FindByID(ctx context.Context, id string) (model.Order, error) {
	o, ok := m.s.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (m memOrders) ListPendingByChef(ctx context.Context, chefID string, now time.Time) ([]model.Order, error) {
	out := []model.Order{}
	for _, o := range m.s.orders {
		if o.ChefID == chefID && o.Status == model.OrderStatusPending && !o.IsExpired(now) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memOrders) ListByCustomerID(ctx context.Context, customerID string, page int, limit int) ([]model.Order, int64, error) {
	out := []model.Order{}
	for _, o := range m.s.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return []model.Order{}, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (m memOrders) TransitionStatus(ctx context.Context, id string, chefID string, from model.OrderStatus, to model.OrderStatus, now time.Time) (model.Order, bool, error) {
	o, ok := m.s.orders[id]
	if !ok || o.ChefID != chefID || o.Status != from {
		return model.Order{}, false, nil
	}
	o.Status = to
	o.UpdatedAt = now
	m.s.orders[id] = o
	return o, true, nil
}

func (m memOrders) CancelExpired(ctx context.Context, f repo.ExpiredOrderFilter) ([]model.Order, error) {
	out := []model.Order{}
	for id, o := range m.s.orders {
		if o.Status != model.OrderStatusPending || !o.IsExpired(f.Now) {
			continue
		}
		if f.ChefID != "" && o.ChefID != f.ChefID {
			continue
		}
		o.Status = model.OrderStatusCancelled
		o.UpdatedAt = f.Now
		m.s.orders[id] = o
		out = append(out, o)
	}
	return out, nil
}

type memItems struct{ s *memStore }

func (m memItems) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	m.s.items[orderID] = append([]model.OrderItem(nil), items...)
	return nil
}

func (m memItems) ListByOrderIDs(ctx context.Context, ids []string) (map[string][]model.OrderItem, error) {
	out := map[string][]model.OrderItem{}
	for _, id := range ids {
		out[id] = m.s.items[id]
	}
	return out, nil
}

type memUsers struct{ s *memStore }

func (m memUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := m.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m memUsers) FindByIDs(ctx context.Context, ids []string) (map[string]model.User, error) {
	out := map[string]model.User{}
	for _, id := range ids {
		if u, ok := m.s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type lockedUsers struct{ s *memStore }

func (l lockedUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return memUsers{l.s}.FindByID(ctx, id)
}

func (l lockedUsers) FindByIDs(ctx context.Context, ids []string) (map[string]model.User, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return memUsers{l.s}.FindByIDs(ctx, ids)
}

type memAudits struct{ s *memStore }

func (m memAudits) Create(ctx context.Context, log model.AuditLog) error {
	log.ID = int64(len(m.s.audits) + 1)
	m.s.audits = append(m.s.audits, log)
	return nil
}

func (m memAudits) CreateBulk(ctx context.Context, logs []model.AuditLog) error {
	for _, l := range logs {
		if err := m.Create(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// 追記順＝時刻順
func (m memAudits) ListTrail(ctx context.Context, f repo.AuditTrailFilter) ([]model.AuditLog, error) {
	out := []model.AuditLog{}
	for _, a := range m.s.audits {
		if a.ResourceType != f.ResourceType || a.ResourceID != f.ResourceID {
			continue
		}
		out = append(out, a)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "order-" + strconv.Itoa(g.n)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
