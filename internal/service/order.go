package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lojinha/backoffice/internal/store"
	"github.com/lojinha/backoffice/internal/store/db"
	"github.com/lojinha/backoffice/pkg/messaging"
	"github.com/lojinha/backoffice/pkg/messaging/events"
)

// OrderService defines the methods for managing orders.
// It abstracts the underlying business logic and data access.
type OrderService interface {
	// FindAndCount returns one page of orders plus the total order count.
	FindAndCount(ctx context.Context, query PageQuery) (*OrderPageDto, error)

	// FindByID retrieves a single order by its unique identifier.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*OrderDto, error)

	// Create adds a new order. When no date is supplied the creation time is
	// stamped by the server.
	Create(ctx context.Context, order OrderCreateDto) (*OrderDto, error)

	// Update modifies an existing order's details. When the DTO carries no
	// date the stored order date is preserved.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, order OrderUpdateDto) (*OrderDto, error)

	// DeleteByID removes an order by its ID.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// Metrics aggregates every order into totals and sparse per-period counts.
	Metrics(ctx context.Context) (*OrderMetricsDto, error)
}

type orderService struct {
	repository store.OrderStore
	publisher  messaging.Publisher
	logger     *slog.Logger
}

// NewOrderService creates a new instance of OrderService with the provided repository and publisher.
func NewOrderService(repo store.OrderStore, publisher messaging.Publisher, logger *slog.Logger) OrderService {
	return &orderService{
		repository: repo,
		publisher:  publisher,
		logger:     logger.With("component", "order_service"),
	}
}

// OrderCreateDto represents the data transfer object for creating a new order.
// Total is the caller-computed sum of the referenced products' prices in
// minor currency units; the server does not re-derive it. Product ids are
// weak references and may repeat.
type OrderCreateDto struct {
	ProductIDs []string   `json:"productIds" validate:"omitempty,dive,uuid"`
	Date       *time.Time `json:"date"`
	Total      int64      `json:"total" validate:"min=0"`
}

// OrderUpdateDto represents the data transfer object for updating an order.
// ProductIDs and Total are replaced wholesale; a nil Date keeps the stored
// order date.
type OrderUpdateDto struct {
	ProductIDs []string   `json:"productIds" validate:"omitempty,dive,uuid"`
	Date       *time.Time `json:"date"`
	Total      int64      `json:"total" validate:"min=0"`
}

// OrderDto represents the data transfer object for an order.
type OrderDto struct {
	ID         string   `json:"id"`
	Date       string   `json:"date,omitempty"`
	ProductIDs []string `json:"productIds"`
	Total      int64    `json:"total"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
}

// OrderPageDto is one page of orders plus the total order count.
type OrderPageDto struct {
	Orders []OrderDto `json:"orders"`
	Count  int64      `json:"count"`
}

// FindAndCount retrieves one page of orders and the total count.
func (s *orderService) FindAndCount(ctx context.Context, query PageQuery) (*OrderPageDto, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	orders, count, err := s.repository.FindPage(ctx, store.PageSpec{
		Offset: query.Offset(),
		Limit:  query.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	dtos := make([]OrderDto, len(orders))
	for i := range orders {
		dtos[i] = *toOrderDto(&orders[i])
	}
	return &OrderPageDto{Orders: dtos, Count: count}, nil
}

// FindByID retrieves an order by its ID and returns it as an OrderDto.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (s *orderService) FindByID(ctx context.Context, id uuid.UUID) (*OrderDto, error) {
	order, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order by ID %s: %w", id, err)
	}
	return toOrderDto(order), nil
}

// Create creates a new order and returns it as an OrderDto. The order date
// is the creation time unless the caller backdates it explicitly. A created
// order is announced on the event stream; publish failures are logged and
// do not fail the create.
func (s *orderService) Create(ctx context.Context, order OrderCreateDto) (*OrderDto, error) {
	productIDs, err := parseUUIDs(order.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product ids: %w", err)
	}

	date := time.Now().UTC()
	if order.Date != nil {
		date = order.Date.UTC()
	}

	created, err := s.repository.Create(ctx, date, productIDs, order.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	event := events.OrderCreatedEvent{
		OrderID:   created.ID,
		Total:     created.Total,
		Date:      date,
		CreatedAt: created.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish order created event", "order_id", created.ID, "error", err)
	}

	return toOrderDto(created), nil
}

// Update modifies an order and returns the updated record as an OrderDto.
// An omitted date leaves the stored order date in place.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (s *orderService) Update(ctx context.Context, id uuid.UUID, order OrderUpdateDto) (*OrderDto, error) {
	productIDs, err := parseUUIDs(order.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product ids: %w", err)
	}

	var date *time.Time
	if order.Date != nil {
		d := order.Date.UTC()
		date = &d
	}

	updated, err := s.repository.Update(ctx, id, date, productIDs, order.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to update order with ID %s: %w", id, err)
	}
	return toOrderDto(updated), nil
}

// DeleteByID deletes an order by its ID.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (s *orderService) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteByID(ctx, id)
}

// Metrics aggregates every order in one pass. Orders without a date count
// toward the totals but stay out of the period maps; they are surfaced in
// the log as a data-quality concern.
func (s *orderService) Metrics(ctx context.Context) (*OrderMetricsDto, error) {
	totals, err := s.repository.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load order totals: %w", err)
	}
	metrics, unbucketed := aggregateOrderMetrics(totals)
	if unbucketed > 0 {
		s.logger.WarnContext(ctx, "Orders without a date were left out of the period buckets", "orders", unbucketed)
	}
	return metrics, nil
}

// toOrderDto converts a db.Order to an OrderDto.
func toOrderDto(order *db.Order) *OrderDto {
	productIDs := make([]string, len(order.ProductIDs))
	for i, id := range order.ProductIDs {
		productIDs[i] = id.String()
	}
	dto := &OrderDto{
		ID:         order.ID.String(),
		ProductIDs: productIDs,
		Total:      order.Total,
		CreatedAt:  formatTime(order.CreatedAt),
		UpdatedAt:  formatTime(order.UpdatedAt),
	}
	if order.Date != nil {
		dto.Date = formatTime(*order.Date)
	}
	return dto
}
