package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/dto"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type OrderHandler struct {
	orders   Orders
	currency currency.Unit
}

func NewOrderHandler(orders Orders, cur currency.Unit) *OrderHandler {
	return &OrderHandler{orders: orders, currency: cur}
}

// CreateOrder stores a checkout submission. A repeated Idempotency-Key answers
// with the order stored the first time.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	idempotencyKey := uuid.Nil
	if raw := c.GetHeader(IdempotencyKeyHeader); raw != "" {
		key, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "idempotencyKey", "Idempotency-Key must be a uuid")
			return
		}
		idempotencyKey = key
	}

	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	order, err := req.ToDomain(idempotencyKey, h.currency)
	if err != nil {
		respondError(c, err)
		return
	}

	stored, err := h.orders.CreateOrder(c.Request.Context(), order)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondOrder(c, http.StatusCreated, stored)
}

// ListOrders accepts comma separated status and category filters and RFC 3339
// from/to bounds on the creation time.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter, ok := parseOrderFilter(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := dto.ToOrders(orders)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondOrder(c, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	status, err := domain.ToOrderStatus(req.Status)
	if err != nil {
		badRequest(c, "status", "Status must be one of pending, processing, completed")
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), orderID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondOrder(c, http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(c.Request.Context(), orderID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

func (h *OrderHandler) respondOrder(c *gin.Context, status int, order domain.Order) {
	out, err := dto.ToOrder(order)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(status, out)
}

func parseOrderFilter(c *gin.Context) (domain.OrderFilter, bool) {
	var filter domain.OrderFilter

	for _, raw := range splitQuery(c.Query("status")) {
		status, err := domain.ToOrderStatus(raw)
		if err != nil {
			badRequest(c, "status", "Unknown status "+raw)
			return filter, false
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	for _, raw := range splitQuery(c.Query("category")) {
		category, err := dto.ParseCustomerType(raw)
		if err != nil {
			badRequest(c, "category", "Unknown category "+raw)
			return filter, false
		}
		filter.Categories = append(filter.Categories, category)
	}

	var timeRange domain.TimeRange
	for _, bound := range []struct {
		param  string
		target **time.Time
	}{
		{param: "from", target: &timeRange.After},
		{param: "to", target: &timeRange.Before},
	} {
		raw := c.Query(bound.param)
		if raw == "" {
			continue
		}

		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, bound.param, bound.param+" must be an RFC 3339 timestamp")
			return filter, false
		}
		*bound.target = lo.ToPtr(t)
	}

	if timeRange.After != nil || timeRange.Before != nil {
		if err := timeRange.Validate(); err != nil {
			badRequest(c, "to", err.Error())
			return filter, false
		}
		filter.CreatedAt = &timeRange
	}

	filter.Statuses = lo.Uniq(filter.Statuses)
	filter.Categories = lo.Uniq(filter.Categories)

	return filter, true
}

func splitQuery(raw string) []string {
	return lo.Compact(lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}
