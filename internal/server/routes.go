package server

import (
	"chefconnect/internal/handler"

	"github.com/labstack/echo/v4"
)

// 使うハンドラ一式
type Handlers struct {
	Orders     *handler.OrderHandler
	ChefOrders *handler.ChefOrderHandler
	WS         *handler.WSHandler
}

func (s *Server) registerRoutes(h Handlers) {
	handler.RegisterHealthRoutes(s.echo, s.metrics)
	h.WS.RegisterRoutes(s.echo)

	g := handler.OrdersGroup(s.echo, s.cfg, s.users)
	h.ChefOrders.RegisterRoutes(g)
	h.Orders.RegisterRoutes(g)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}
