package handler

import (
	"net/http"
	"strconv"

	"chefconnect/internal/config"
	"chefconnect/internal/domain/model"
	"chefconnect/internal/middleware"
	"chefconnect/internal/repository"
	"chefconnect/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /orders の顧客側と注文取得
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type LineItemRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// customer_idはトークンから取る（bodyには入れない）
type OrderCreateRequest struct {
	ChefID         string            `json:"chef_id"`
	LineItems      []LineItemRequest `json:"line_items"`
	NumberOfPeople int               `json:"number_of_people"`
	SelectedDay    string            `json:"selected_day"`
	SelectedHours  []string          `json:"selected_hours"`
	TotalBill      int64             `json:"total_bill"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	customerOnly := middleware.RoleGuard(string(model.RoleCustomer))

	g.POST("", h.create, customerOnly)
	g.GET("/customer", h.listMine, customerOnly)
	g.GET("/:id", h.detail)
	g.GET("/:id/history", h.history)
}

// /orders 全体の認証（JWT + token_version）
func OrdersGroup(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) *echo.Group {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	return g
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.LineItemInput, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		items = append(items, usecase.LineItemInput{Name: li.Name, Price: li.Price})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), userID, usecase.CreateOrderInput{
		ChefID:         req.ChefID,
		LineItems:      items,
		NumberOfPeople: req.NumberOfPeople,
		SelectedDay:    req.SelectedDay,
		SelectedHours:  req.SelectedHours,
		TotalBill:      req.TotalBill,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListForCustomer(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetOrder(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) history(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetOrderHistory(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
