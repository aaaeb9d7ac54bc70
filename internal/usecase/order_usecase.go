package usecase

import (
	"context"
	"net/http"

	"chefconnect/internal/domain/model"
	"chefconnect/internal/metrics"
	"chefconnect/internal/realtime"
	repo "chefconnect/internal/repository"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	expiry    *ExpiryUsecase
	notifier  Notifier
	validator OrderValidator
	idGen     IDGenerator
	clock     Clock
	metrics   *metrics.Metrics
}

// DI
func NewOrderUsecase(
	tx repo.TransactionManager,
	expiry *ExpiryUsecase,
	notifier Notifier,
	validator OrderValidator,
	idGen IDGenerator,
	clock Clock,
	m *metrics.Metrics,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		expiry:    expiry,
		notifier:  notifier,
		validator: validator,
		idGen:     idGen,
		clock:     clock,
		metrics:   m,
	}
}

type LineItemInput struct {
	Name  string
	Price int64
}

// 注文作成の入力。customerIDは認証済みの呼び出し元から取る（bodyには入れない）
type CreateOrderInput struct {
	ChefID         string
	LineItems      []LineItemInput
	NumberOfPeople int
	SelectedDay    string
	SelectedHours  []string
	TotalBill      int64
}

func (u *OrderUsecase) CreateOrder(ctx context.Context, customerID string, in CreateOrderInput) (OrderOutput, error) {
	if customerID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.validator.ValidateCreateOrder(in); err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var out OrderOutput

	//注文と明細は同じトランザクション（途中までの注文を残さない）
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		chef, err := r.Users().FindByID(ctx, in.ChefID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if chef == nil || !chef.IsChef() || !chef.IsActive {
			return NewHTTPError(http.StatusBadRequest, "invalid chef_id")
		}

		now := u.clock.Now()
		order := model.NewPendingOrder(u.idGen.NewID(), now)
		order.CustomerID = customerID
		order.ChefID = chef.ID
		order.NumberOfPeople = in.NumberOfPeople
		order.SelectedDay = in.SelectedDay
		order.SelectedHours = in.SelectedHours
		order.TotalBill = in.TotalBill

		if err := r.Orders().Create(ctx, order); err != nil {
			return NewHTTPError(http.StatusBadRequest, "could not create order")
		}

		//スナップショット
		items := make([]model.OrderItem, 0, len(in.LineItems))
		for _, li := range in.LineItems {
			items = append(items, model.OrderItem{
				Name:      li.Name,
				Price:     li.Price,
				CreatedAt: now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return NewHTTPError(http.StatusBadRequest, "could not create order")
		}

		if err := r.AuditLogs().Create(ctx, model.NewOrderStatusAudit(
			customerID,
			model.AuditActionOrderCreated,
			order.ID,
			"",
			model.OrderStatusPending,
			now,
		)); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		users, err := r.Users().FindByIDs(ctx, []string{chef.ID, customerID})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(order, items, users)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.metrics.OrderCreated()
	u.notifier.Notify(realtime.EventNewOrder, out, out.ChefID)

	return out, nil
}

// シェフのPENDING一覧。先にそのシェフの期限切れをキャンセルしてから返す。
func (u *OrderUsecase) ListPendingForChef(ctx context.Context, chefID string) (OrderListOutput, error) {
	if chefID == "" {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if _, err := u.expiry.SweepChef(ctx, chefID); err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := u.clock.Now()
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListPendingByChef(ctx, chefID, now)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs, err = loadOrderOutputs(ctx, r, orders)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}

	return OrderListOutput{Orders: outs}, nil
}

// 顧客の注文一覧（全ステータス）
func (u *OrderUsecase) ListForCustomer(ctx context.Context, customerID string, page int, limit int) (CustomerOrderListOutput, error) {
	if customerID == "" {
		return CustomerOrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return CustomerOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return CustomerOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var (
		outs  []OrderOutput
		total int64
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var (
			orders []model.Order
			err    error
		)
		orders, total, err = r.Orders().ListByCustomerID(ctx, customerID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs, err = loadOrderOutputs(ctx, r, orders)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return CustomerOrderListOutput{}, err
	}

	return CustomerOrderListOutput{Orders: outs, Total: total, Page: page, Limit: limit}, nil
}

// 当事者（シェフ/顧客）の注文だけ返す。それ以外は404。
func findPartyOrder(ctx context.Context, r repo.TxRepos, callerID string, orderID string) (model.Order, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.ChefID != callerID && o.CustomerID != callerID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return o, nil
}

// 注文1件。当事者（シェフ/顧客）以外には存在しない扱い。
func (u *OrderUsecase) GetOrder(ctx context.Context, callerID string, orderID string) (OrderOutput, error) {
	if callerID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findPartyOrder(ctx, r, callerID, orderID)
		if err != nil {
			return err
		}

		outs, err := loadOrderOutputs(ctx, r, []model.Order{o})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = outs[0]
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 注文のステータス履歴（古い順）。見られるのはGetOrderと同じく当事者だけ。
func (u *OrderUsecase) GetOrderHistory(ctx context.Context, callerID string, orderID string) (OrderHistoryOutput, error) {
	if callerID == "" {
		return OrderHistoryOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return OrderHistoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderHistoryOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := findPartyOrder(ctx, r, callerID, orderID); err != nil {
			return err
		}

		logs, err := r.AuditLogs().ListTrail(ctx, repo.AuditTrailFilter{
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toOrderHistoryOutput(orderID, logs)
		return nil
	})
	if err != nil {
		return OrderHistoryOutput{}, err
	}
	return out, nil
}
