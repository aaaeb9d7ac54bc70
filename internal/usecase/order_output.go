package usecase

import (
	"context"
	"time"

	"chefconnect/internal/domain/model"
	repo "chefconnect/internal/repository"
)

type PartyOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LineItemOutput struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// HTTPレスポンスとプッシュの両方で使う注文の形
type OrderOutput struct {
	ID             string           `json:"id"`
	ChefID         string           `json:"chef_id"`
	CustomerID     string           `json:"customer_id"`
	Chef           PartyOutput      `json:"chef"`
	Customer       PartyOutput      `json:"customer"`
	LineItems      []LineItemOutput `json:"line_items"`
	NumberOfPeople int              `json:"number_of_people"`
	SelectedDay    string           `json:"selected_day"`
	SelectedHours  []string         `json:"selected_hours"`
	TotalBill      int64            `json:"total_bill"`
	Status         string           `json:"status"`
	TimerExpiry    time.Time        `json:"timer_expiry"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type OrderListOutput struct {
	Orders []OrderOutput `json:"orders"`
}

// 顧客一覧はページング付き
type CustomerOrderListOutput struct {
	Orders []OrderOutput `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

// 注文履歴の1行（監査ログ1件分）
type OrderHistoryEntry struct {
	Action     string    `json:"action"`
	ActorID    string    `json:"actor_id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	CreatedAt  time.Time `json:"created_at"`
}

type OrderHistoryOutput struct {
	OrderID string              `json:"order_id"`
	Entries []OrderHistoryEntry `json:"entries"`
}

func toOrderHistoryOutput(orderID string, logs []model.AuditLog) OrderHistoryOutput {
	entries := make([]OrderHistoryEntry, 0, len(logs))
	for _, l := range logs {
		before, after := l.StatusChange()
		entries = append(entries, OrderHistoryEntry{
			Action:     string(l.Action),
			ActorID:    l.ActorUserID,
			FromStatus: string(before),
			ToStatus:   string(after),
			CreatedAt:  l.CreatedAt,
		})
	}
	return OrderHistoryOutput{OrderID: orderID, Entries: entries}
}

func toOrderOutput(o model.Order, items []model.OrderItem, users map[string]model.User) OrderOutput {
	outItems := make([]LineItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, LineItemOutput{
			Name:  it.Name,
			Price: it.Price,
		})
	}

	hours := o.SelectedHours
	if hours == nil {
		hours = []string{}
	}

	return OrderOutput{
		ID:             o.ID,
		ChefID:         o.ChefID,
		CustomerID:     o.CustomerID,
		Chef:           PartyOutput{ID: o.ChefID, Name: users[o.ChefID].Name},
		Customer:       PartyOutput{ID: o.CustomerID, Name: users[o.CustomerID].Name},
		LineItems:      outItems,
		NumberOfPeople: o.NumberOfPeople,
		SelectedDay:    o.SelectedDay,
		SelectedHours:  hours,
		TotalBill:      o.TotalBill,
		Status:         string(o.Status),
		TimerExpiry:    o.TimerExpiry,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// 明細と当事者の名前をまとめて読んで埋める
func loadOrderOutputs(ctx context.Context, r repo.TxRepos, orders []model.Order) ([]OrderOutput, error) {
	outs := make([]OrderOutput, 0, len(orders))
	if len(orders) == 0 {
		return outs, nil
	}

	orderIDs := make([]string, 0, len(orders))
	userIDs := make([]string, 0, len(orders)*2)
	seen := make(map[string]struct{}, len(orders)*2)
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
		for _, id := range []string{o.ChefID, o.CustomerID} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			userIDs = append(userIDs, id)
		}
	}

	items, err := r.OrderItems().ListByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	users, err := r.Users().FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, items[o.ID], users))
	}
	return outs, nil
}
