package server

import (
	"net/http"

	orderdomain "github.com/ecomprotect/sentinel/internal/order/domain"
	riskdomain "github.com/ecomprotect/sentinel/internal/risk/domain"
	riskservice "github.com/ecomprotect/sentinel/internal/risk/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders orderdomain.Service
	engine riskservice.Engine
	log    *zap.Logger
}

type OrderHandlerParams struct {
	fx.In

	Orders orderdomain.Service
	Engine riskservice.Engine
	Log    *zap.Logger
}

func NewOrderHandler(p OrderHandlerParams) *OrderHandler {
	return &OrderHandler{
		orders: p.Orders,
		engine: p.Engine,
		log:    p.Log.Named("server.orders"),
	}
}

type createOrderBody struct {
	ShopifyOrderID    string               `json:"shopify_order_id"`
	OrderNumber       string               `json:"order_number" binding:"required"`
	CustomerEmail     string               `json:"customer_email" binding:"required"`
	CustomerFirstName string               `json:"customer_first_name"`
	CustomerLastName  string               `json:"customer_last_name"`
	CustomerAddress   *orderdomain.Address `json:"customer_address"`
	CustomerPhone     string               `json:"customer_phone"`
	CustomerIP        string               `json:"customer_ip"`
	OrderValue        float64              `json:"order_value" binding:"required"`
	Currency          string               `json:"currency"`
	DeliveryMethod    string               `json:"delivery_method"`
}

// Create accepts an inbound order and screens it in the same request.
func (h *OrderHandler) Create(c *gin.Context) {
	var body createOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
		return
	}

	ctx := c.Request.Context()
	order, err := h.orders.Create(ctx, orderdomain.CreateOrderRequest{
		ShopifyOrderID:    body.ShopifyOrderID,
		OrderNumber:       body.OrderNumber,
		CustomerEmail:     body.CustomerEmail,
		CustomerFirstName: body.CustomerFirstName,
		CustomerLastName:  body.CustomerLastName,
		CustomerAddress:   body.CustomerAddress,
		CustomerPhone:     body.CustomerPhone,
		CustomerIP:        body.CustomerIP,
		OrderValue:        body.OrderValue,
		Currency:          body.Currency,
		DeliveryMethod:    body.DeliveryMethod,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	result, err := h.engine.Screen(ctx, order.ID.String())
	if err != nil && err != riskdomain.ErrNotPending {
		h.log.Error("order screening failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusAccepted, gin.H{"order": order, "screened": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":    result.Order,
		"screened": true,
		"flagged":  result.Flagged,
	})
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) List(c *gin.Context) {
	var req orderdomain.ListOrderRequest
	if err := c.ShouldBindQuery(&req.Pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_query"})
		return
	}
	req.Status = orderdomain.Status(c.Query("status"))
	if flagged, ok := c.GetQuery("is_flagged"); ok {
		value := flagged == "true"
		req.IsFlagged = &value
	}
	req.CustomerEmail = c.Query("customer_email")

	resp, err := h.orders.List(c.Request.Context(), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
