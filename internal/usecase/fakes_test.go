package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"chefconnect/internal/domain/model"
	"chefconnect/internal/realtime"
	repo "chefconnect/internal/repository"
	"chefconnect/internal/usecase"
	"chefconnect/internal/validator"

	"github.com/sirupsen/logrus"
)

// =====================
// clock / id
// =====================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

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
	return fmt.Sprintf("order-%d", g.n)
}

// =====================
// notifier（呼ばれた内容を記録）
// =====================

type notification struct {
	Event      realtime.EventType
	Order      usecase.OrderOutput
	Recipients []string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (n *recordingNotifier) Notify(event realtime.EventType, order interface{}, recipients ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	o, _ := order.(usecase.OrderOutput)
	n.calls = append(n.calls, notification{Event: event, Order: o, Recipients: recipients})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.calls...)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// =====================
// インメモリのストア（WithinTxで全体ロック）
// =====================

type memStore struct {
	mu     sync.Mutex
	orders map[string]model.Order
	items  map[string][]model.OrderItem
	users  map[string]model.User
	audits []model.AuditLog

	failCreate error
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
	return fn(memRepos{s: s})
}

func (s *memStore) order(id string) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *memStore) auditLogs() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditLog(nil), s.audits...)
}

type memRepos struct{ s *memStore }

func (r memRepos) Orders() repo.OrderRepository         { return memOrders{r.s} }
func (r memRepos) OrderItems() repo.OrderItemRepository { return memItems{r.s} }
func (r memRepos) Users() repo.UserRepository           { return memUsers{r.s} }
func (r memRepos) AuditLogs() repo.AuditLogRepository   { return memAudits{r.s} }

type memOrders struct{ s *memStore }

func (m memOrders) Create(ctx context.Context, o model.Order) error {
	if m.s.failCreate != nil {
		return m.s.failCreate
	}
	if _, ok := m.s.orders[o.ID]; ok {
		return errors.New("duplicate id")
	}
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
	all := []model.Order{}
	for _, o := range m.s.orders {
		if o.CustomerID == customerID {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (page - 1) * limit
	if start >= len(all) {
		return []model.Order{}, int64(len(all)), nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
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
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memItems struct{ s *memStore }

func (m memItems) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	for i := range items {
		items[i].OrderID = orderID
		items[i].Position = i
	}
	m.s.items[orderID] = append([]model.OrderItem(nil), items...)
	return nil
}

func (m memItems) ListByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]model.OrderItem, error) {
	out := map[string][]model.OrderItem{}
	for _, id := range orderIDs {
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

type memAudits struct{ s *memStore }

func (m memAudits) Create(ctx context.Context, log model.AuditLog) error {
	m.s.audits = append(m.s.audits, log)
	return nil
}

func (m memAudits) CreateBulk(ctx context.Context, logs []model.AuditLog) error {
	m.s.audits = append(m.s.audits, logs...)
	return nil
}

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

// =====================
// 組み立て
// =====================

var (
	testChef     = model.User{ID: "chef-1", Name: "Chef Aiko", Role: model.RoleChef, IsActive: true}
	otherChef    = model.User{ID: "chef-2", Name: "Chef Ben", Role: model.RoleChef, IsActive: true}
	testCustomer = model.User{ID: "cust-1", Name: "Carol", Role: model.RoleCustomer, IsActive: true}
)

var t0 = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type harness struct {
	store    *memStore
	clock    *fakeClock
	notifier *recordingNotifier
	expiry   *usecase.ExpiryUsecase
	orders   *usecase.OrderUsecase
	chef     *usecase.ChefOrderUsecase
}

func newHarness() *harness {
	store := newMemStore(testChef, otherChef, testCustomer)
	clock := newFakeClock(t0)
	notifier := &recordingNotifier{}

	expiry := usecase.NewExpiryUsecase(store, notifier, clock, quietLogger(), nil)
	orders := usecase.NewOrderUsecase(store, expiry, notifier, validator.NewOrderValidator(), &seqIDGen{}, clock, nil)
	chef := usecase.NewChefOrderUsecase(store, notifier, clock, nil)

	return &harness{
		store:    store,
		clock:    clock,
		notifier: notifier,
		expiry:   expiry,
		orders:   orders,
		chef:     chef,
	}
}

func validCreateInput(chefID string) usecase.CreateOrderInput {
	return usecase.CreateOrderInput{
		ChefID: chefID,
		LineItems: []usecase.LineItemInput{
			{Name: "ramen", Price: 1200},
			{Name: "gyoza", Price: 500},
		},
		NumberOfPeople: 2,
		SelectedDay:    "2026-10-20",
		SelectedHours:  []string{"18:00", "19:00"},
		TotalBill:      3400,
	}
}
