package orderservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aresheg/restaurant-storefront/pkg/config"
	"github.com/aresheg/restaurant-storefront/pkg/enums"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// HTTPClient talks to a deployed Order Service over JSON/HTTP.
type HTTPClient struct {
	rest *resty.Client
}

// NewHTTPClient builds a client against the configured base URL.
func NewHTTPClient(cfg config.OrderServiceConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("order service base url required")
	}
	rest := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &HTTPClient{rest: rest}, nil
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type paymentStatusUpdateRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func (c *HTTPClient) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(input).
		Post("/orders")
	return decodeOrder(resp, err, "create order")
}

func (c *HTTPClient) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get("/orders/" + orderID.String())
	return decodeOrder(resp, err, "fetch order")
}

func (c *HTTPClient) GetOrdersForUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get("/users/" + userID.String() + "/orders")
	return decodeOrders(resp, err, "list user orders")
}

func (c *HTTPClient) GetAllOrders(ctx context.Context) ([]*Order, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get("/orders")
	return decodeOrders(resp, err, "list all orders")
}

func (c *HTTPClient) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*Order, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(statusUpdateRequest{Status: status.String()}).
		Patch("/orders/" + orderID.String() + "/status")
	return decodeOrder(resp, err, "set order status")
}

func (c *HTTPClient) SetPaymentStatus(ctx context.Context, orderID uuid.UUID, paymentStatus enums.PaymentStatus) (*Order, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(paymentStatusUpdateRequest{PaymentStatus: paymentStatus.String()}).
		Patch("/orders/" + orderID.String() + "/payment-status")
	return decodeOrder(resp, err, "set payment status")
}

func decodeOrder(resp *resty.Response, err error, op string) (*Order, error) {
	if err := checkResponse(resp, err, op); err != nil {
		return nil, err
	}
	var envelope struct {
		Data Order `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+": decode response")
	}
	return &envelope.Data, nil
}

func decodeOrders(resp *resty.Response, err error, op string) ([]*Order, error) {
	if err := checkResponse(resp, err, op); err != nil {
		return nil, err
	}
	var envelope struct {
		Data []*Order `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+": decode response")
	}
	return envelope.Data, nil
}

func checkResponse(resp *resty.Response, err error, op string) error {
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
	if resp.IsSuccess() {
		return nil
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	message := op + ": order service rejected request"
	if decodeErr := json.Unmarshal(resp.Body(), &envelope); decodeErr == nil && envelope.Error.Message != "" {
		message = op + ": " + envelope.Error.Message
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case http.StatusBadRequest:
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return pkgerrors.New(pkgerrors.CodeConflict, message)
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s: status %d", message, resp.StatusCode()))
	}
}
