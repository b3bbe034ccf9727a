package controllers

import (
	"context"
	"errors"
	"go-restaurant-pos/src/controllers/middleware"
	"go-restaurant-pos/src/controllers/models"
	"go-restaurant-pos/src/infrastructure/log"
	"go-restaurant-pos/src/services/order/domain"
	"go-restaurant-pos/src/services/stats"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// placeOrderAttempts bounds retries when two orders draw the same number.
const placeOrderAttempts = 3

// Replayer re-publishes events parked in the outbox.
type Replayer interface {
	ReplayFailedEvents(ctx context.Context) error
}

type OrderController struct {
	domain.OrderService
	aggregator stats.Aggregator
	replayer   Replayer
	logger     log.Logger
}

// NewOrderController wires the order routes. replayer may be nil when the
// broker relay is disabled.
func NewOrderController(orderService domain.OrderService, aggregator stats.Aggregator, replayer Replayer, logger log.Logger) *OrderController {
	return &OrderController{
		OrderService: orderService,
		aggregator:   aggregator,
		replayer:     replayer,
		logger:       logger,
	}
}

func (c *OrderController) Route(app *fiber.App) {
	cashierOrAdmin := middleware.RequireRoles(domain.RoleCashier, domain.RoleAdmin)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	api := app.Group("/api/v1/orders", middleware.Authenticate())
	api.Get("", c.ListOrders)
	api.Post("", cashierOrAdmin, c.PlaceOrder)
	api.Get("/stats", adminOnly, c.GetStats)
	api.Post("/replay-failed-events", adminOnly, c.ReplayFailedEvents)
	api.Get("/:id", c.GetOrder)
	api.Patch("/:id/status", c.UpdateStatus)
	api.Patch("/:id/payment", cashierOrAdmin, c.UpdatePayment)
}

// ListOrders godoc
// @Summary      List orders
// @Description  Lists orders oldest first. Kitchen staff see pending and preparing orders unless a status filter is given.
// @Tags         orders
// @Produce      json
// @Param        X-Staff-Role  header  string  true   "Staff role"  Enums(cashier, kitchen, admin)
// @Param        status        query   string  false  "Comma separated statuses, or all"
// @Param        payment       query   string  false  "Comma separated payment statuses"
// @Success      200  {array}   domain.Order
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/v1/orders [get]
func (c *OrderController) ListOrders(ctx *fiber.Ctx) error {
	filter, err := parseFilter(ctx)
	if err != nil {
		return err
	}
	orders, err := c.OrderService.ListOrders(ctx.UserContext(), filter)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return ctx.Status(fiber.StatusOK).JSON(orders)
}

// PlaceOrder godoc
// @Summary      Place a new order
// @Description  Prices the cart from the menu, stores a pending order and broadcasts order.created
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Staff-Role  header  string                    true  "Staff role"  Enums(cashier, admin)
// @Param        order         body    models.PlaceOrderRequest  true  "Cart"
// @Success      201  {object}  domain.Order
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Failure      422  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/v1/orders [post]
func (c *OrderController) PlaceOrder(ctx *fiber.Ctx) error {
	var request models.PlaceOrderRequest
	if err := ctx.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	cart := domain.PlaceOrderRequest{TableNumber: request.TableNumber}
	for _, item := range request.Items {
		cart.Items = append(cart.Items, domain.CartItem{MenuItemID: item.MenuItem, Quantity: item.Quantity})
	}

	var order *domain.Order
	var err error
	for attempt := 1; ; attempt++ {
		order, err = c.OrderService.PlaceOrder(ctx.UserContext(), cart)
		if !errors.Is(err, domain.ErrDuplicateOrderNumber) || attempt == placeOrderAttempts {
			break
		}
		c.logger.WarnWithExtra(ctx.UserContext(), "Order number collision, retrying", map[string]any{"attempt": attempt})
	}
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(order)
}

// GetOrder godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        X-Staff-Role  header  string  true  "Staff role"  Enums(cashier, kitchen, admin)
// @Param        id            path    string  true  "Order id"
// @Success      200  {object}  domain.Order
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/v1/orders/{id} [get]
func (c *OrderController) GetOrder(ctx *fiber.Ctx) error {
	order, err := c.OrderService.GetOrder(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusOK).JSON(order)
}

// UpdateStatus godoc
// @Summary      Move an order to a new status
// @Description  Applies one lifecycle transition and broadcasts order.status.changed
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Staff-Role  header  string                      true  "Staff role"  Enums(cashier, kitchen, admin)
// @Param        id            path    string                      true  "Order id"
// @Param        status        body    models.StatusUpdateRequest  true  "Target status"
// @Success      200  {object}  domain.Order
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/v1/orders/{id}/status [patch]
func (c *OrderController) UpdateStatus(ctx *fiber.Ctx) error {
	var request models.StatusUpdateRequest
	if err := ctx.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	to, err := domain.ParseStatus(request.Status)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	order, err := c.OrderService.AdvanceStatus(ctx.UserContext(), ctx.Params("id"), to)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusOK).JSON(order)
}

// UpdatePayment godoc
// @Summary      Mark an order paid or unpaid
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Staff-Role  header  string                       true  "Staff role"  Enums(cashier, admin)
// @Param        id            path    string                       true  "Order id"
// @Param        payment       body    models.PaymentUpdateRequest  true  "Payment flag"
// @Success      200  {object}  domain.Order
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/v1/orders/{id}/payment [patch]
func (c *OrderController) UpdatePayment(ctx *fiber.Ctx) error {
	var request models.PaymentUpdateRequest
	if err := ctx.BodyParser(&request); err != nil || request.Paid == nil {
		return fiber.NewError(fiber.StatusBadRequest, "paid must be true or false")
	}
	order, err := c.OrderService.SetPaymentStatus(ctx.UserContext(), ctx.Params("id"), *request.Paid)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusOK).JSON(order)
}

// GetStats godoc
// @Summary      Revenue and status counts
// @Description  Total revenue and count over paid orders, plus the number of orders in each status
// @Tags         orders
// @Produce      json
// @Param        X-Staff-Role  header  string  true  "Staff role"  Enums(admin)
// @Success      200  {object}  models.StatsResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/v1/orders/stats [get]
func (c *OrderController) GetStats(ctx *fiber.Ctx) error {
	revenue, err := c.aggregator.RevenueSummary(ctx.UserContext())
	if err != nil {
		return err
	}
	breakdown, err := c.aggregator.StatusBreakdown(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusOK).JSON(models.StatsResponse{
		TotalRevenue: revenue.TotalRevenue,
		Count:        revenue.Count,
		ByStatus:     breakdown,
	})
}

// ReplayFailedEvents godoc
// @Summary      Replay failed order events
// @Description  Re-publishes order events that could not be delivered to the broker
// @Tags         orders
// @Produce      json
// @Param        X-Staff-Role  header  string  true  "Staff role"  Enums(admin)
// @Success      200  {object}  models.MessageResponse
// @Failure      500  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/v1/orders/replay-failed-events [post]
func (c *OrderController) ReplayFailedEvents(ctx *fiber.Ctx) error {
	if c.replayer == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "event relay is disabled")
	}
	if err := c.replayer.ReplayFailedEvents(ctx.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return ctx.Status(fiber.StatusOK).JSON(models.MessageResponse{Status: "Replay complete"})
}

func parseFilter(ctx *fiber.Ctx) (domain.OrderFilter, error) {
	var filter domain.OrderFilter

	statusQuery := ctx.Query("status")
	switch statusQuery {
	case "all":
	case "":
		if role, ok := domain.ActorFromContext(ctx.UserContext()); ok && role == domain.RoleKitchen {
			filter.Statuses = []domain.Status{domain.StatusPending, domain.StatusPreparing}
		}
	default:
		for _, name := range splitQuery(statusQuery) {
			status, err := domain.ParseStatus(name)
			if err != nil {
				return filter, fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	for _, name := range splitQuery(ctx.Query("payment")) {
		payment, err := domain.ParsePaymentStatus(name)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		filter.PaymentStatuses = append(filter.PaymentStatuses, payment)
	}
	return filter, nil
}

func splitQuery(value string) []string {
	var parts []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
