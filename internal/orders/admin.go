package orders

import (
	"context"

	"github.com/aresheg/restaurant-storefront/internal/orderservice"
	"github.com/aresheg/restaurant-storefront/pkg/enums"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/aresheg/restaurant-storefront/pkg/logger"
	"github.com/google/uuid"
)

// AdminEditor applies manual status corrections on behalf of back-office
// staff. Unknown status strings are rejected locally before any call reaches
// the order service; transition legality itself is the order service's to
// enforce.
type AdminEditor struct {
	client orderservice.Client
	cache  *Cache
	log    *logger.Logger
}

func NewAdminEditor(client orderservice.Client, cache *Cache, log *logger.Logger) (*AdminEditor, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin editor requires an order service client")
	}
	if cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin editor requires an order cache")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin editor requires a logger")
	}
	return &AdminEditor{client: client, cache: cache, log: log}, nil
}

// SetStatus moves an order to the given status. A transition that goes
// backward relative to the cached copy is logged at warn before the call,
// since the service will normally reject it.
func (a *AdminEditor) SetStatus(ctx context.Context, orderID uuid.UUID, raw string) (*orderservice.Order, error) {
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "unknown order status")
	}
	ctx = a.log.WithOrderID(ctx, orderID.String())

	if cached := a.cache.get(orderID); cached != nil {
		if status.Rank() >= 0 && cached.Status.Rank() >= 0 && status.Rank() < cached.Status.Rank() {
			a.log.Warn(a.log.WithFields(ctx, map[string]any{
				"from": cached.Status.String(),
				"to":   status.String(),
			}), "requested order status moves backward")
		}
	}

	updated, err := a.client.SetOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	a.cache.put(updated)
	a.log.Info(a.log.WithField(ctx, "status", status.String()), "order status updated")
	return updated, nil
}

// SetPaymentStatus overwrites the payment status of an order. The payment
// axis is independent of the order status and has no transition rules.
func (a *AdminEditor) SetPaymentStatus(ctx context.Context, orderID uuid.UUID, raw string) (*orderservice.Order, error) {
	status, err := enums.ParsePaymentStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "unknown payment status")
	}
	ctx = a.log.WithOrderID(ctx, orderID.String())

	updated, err := a.client.SetPaymentStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	a.cache.put(updated)
	a.log.Info(a.log.WithField(ctx, "payment_status", status.String()), "payment status updated")
	return updated, nil
}
