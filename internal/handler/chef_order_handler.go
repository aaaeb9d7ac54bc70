package handler

import (
	"context"
	"net/http"

	"chefconnect/internal/domain/model"
	"chefconnect/internal/middleware"
	"chefconnect/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /orders/chef 配下（シェフのみ）
type ChefOrderHandler struct {
	orders *usecase.OrderUsecase
	chef   *usecase.ChefOrderUsecase
}

func NewChefOrderHandler(orders *usecase.OrderUsecase, chef *usecase.ChefOrderUsecase) *ChefOrderHandler {
	return &ChefOrderHandler{orders: orders, chef: chef}
}

func (h *ChefOrderHandler) RegisterRoutes(g *echo.Group) {
	cg := g.Group("/chef", middleware.RoleGuard(string(model.RoleChef)))

	cg.GET("", h.listPending)
	cg.PUT("/accept/:id", h.accept)
	cg.PUT("/reject/:id", h.reject)
	cg.PUT("/complete/:id", h.complete)
}

func (h *ChefOrderHandler) listPending(c echo.Context) error {
	chefID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.orders.ListPendingForChef(c.Request().Context(), chefID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ChefOrderHandler) accept(c echo.Context) error {
	return h.transition(c, h.chef.Accept)
}

func (h *ChefOrderHandler) reject(c echo.Context) error {
	return h.transition(c, h.chef.Reject)
}

func (h *ChefOrderHandler) complete(c echo.Context) error {
	return h.transition(c, h.chef.Complete)
}

type transitionFunc func(ctx context.Context, chefID string, orderID string) (usecase.OrderOutput, error)

func (h *ChefOrderHandler) transition(c echo.Context, fn transitionFunc) error {
	chefID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := fn(c.Request().Context(), chefID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
