package validator

import (
	"errors"
	"strings"

	"chefconnect/internal/usecase"
)

const (
	maxLineItems     = 100
	maxItemNameLen   = 255
	maxSelectedHours = 24
)

// 入力が不正（メッセージはそのまま400で返す）
var (
	ErrInvalidChefID         = errors.New("invalid chef_id")
	ErrInvalidLineItems      = errors.New("invalid line_items")
	ErrInvalidNumberOfPeople = errors.New("invalid number_of_people")
	ErrInvalidSelectedDay    = errors.New("invalid selected_day")
	ErrInvalidSelectedHours  = errors.New("invalid selected_hours")
	ErrInvalidTotalBill      = errors.New("invalid total_bill")
)

type orderValidator struct{}

// Usecaseは interface を依存注入
func NewOrderValidator() usecase.OrderValidator {
	return &orderValidator{}
}

// 注文作成の入力を検証（シェフの存在確認はDBが必要なのでusecase側）
func (v *orderValidator) ValidateCreateOrder(in usecase.CreateOrderInput) error {
	if strings.TrimSpace(in.ChefID) == "" {
		return ErrInvalidChefID
	}

	// 明細は1件以上
	if len(in.LineItems) == 0 || len(in.LineItems) > maxLineItems {
		return ErrInvalidLineItems
	}
	for _, li := range in.LineItems {
		name := strings.TrimSpace(li.Name)
		if name == "" || len(name) > maxItemNameLen {
			return ErrInvalidLineItems
		}
		if li.Price < 0 {
			return ErrInvalidLineItems
		}
	}

	if in.NumberOfPeople < 1 {
		return ErrInvalidNumberOfPeople
	}

	if strings.TrimSpace(in.SelectedDay) == "" {
		return ErrInvalidSelectedDay
	}

	if len(in.SelectedHours) == 0 || len(in.SelectedHours) > maxSelectedHours {
		return ErrInvalidSelectedHours
	}
	for _, h := range in.SelectedHours {
		if strings.TrimSpace(h) == "" {
			return ErrInvalidSelectedHours
		}
	}

	// 合計は明細と一致を強制しない（人数分の計算はクライアント側）
	if in.TotalBill < 0 {
		return ErrInvalidTotalBill
	}

	return nil
}
