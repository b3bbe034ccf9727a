package persistence

import (
	"context"
	"errors"
	"fmt"
	"go-restaurant-pos/src/services/order/domain"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ordersCollection = "orders"

	// A status CAS loses only to a concurrent transition, and the lifecycle
	// has four edges, so a handful of retries always settles.
	maxStatusAttempts = 8
)

type OrderRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// OrderDocument is the storage model for MongoDB
type OrderDocument struct {
	ID            string                 `bson:"id"`
	OrderNumber   string                 `bson:"order_number"`
	Items         []LineItemDocument     `bson:"items"`
	Subtotal      primitive.Decimal128   `bson:"subtotal"`
	TaxAmount     primitive.Decimal128   `bson:"tax_amount"`
	TotalAmount   primitive.Decimal128   `bson:"total_amount"`
	Status        string                 `bson:"status"`
	PaymentStatus string                 `bson:"payment_status"`
	TableNumber   int                    `bson:"table_number"`
	History       []StatusChangeDocument `bson:"history"`
	Version       int64                  `bson:"version"`
	CreatedAt     time.Time              `bson:"created_at"`
	UpdatedAt     time.Time              `bson:"updated_at"`
}

type LineItemDocument struct {
	MenuItemID string               `bson:"menu_item_id"`
	Name       string               `bson:"name"`
	Category   string               `bson:"category,omitempty"`
	Quantity   int                  `bson:"quantity"`
	Price      primitive.Decimal128 `bson:"price"`
}

type StatusChangeDocument struct {
	From      string    `bson:"from"`
	To        string    `bson:"to"`
	ChangedBy string    `bson:"changed_by,omitempty"`
	ChangedAt time.Time `bson:"changed_at"`
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		collection: db.Collection(ordersCollection),
		now:        time.Now,
	}
}

// EnsureIndexes creates the uniqueness constraints the ledger relies on.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_number", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_order_number")},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_order_id")},
		{Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "order_number", Value: 1}}, Options: options.Index().SetName("creation_order")},
		{Keys: bson.D{{Key: "payment_status", Value: 1}}, Options: options.Index().SetName("payment_status")},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	doc, err := toDocument(order)
	if err != nil {
		return err
	}

	_, err = r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), "order_number") {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateOrderNumber, order.OrderNumber)
		}
		return domain.StorageFailure("insert order", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var doc OrderDocument
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(id)
		}
		return nil, domain.StorageFailure("find order", err)
	}
	return decodeOrder(doc)
}

func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "order_number", Value: 1}})
	cursor, err := r.collection.Find(ctx, listFilter(filter), opts)
	if err != nil {
		return nil, domain.StorageFailure("list orders", err)
	}
	defer cursor.Close(ctx)

	orders := []domain.Order{}
	for cursor.Next(ctx) {
		var doc OrderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, domain.StorageFailure("decode order", err)
		}
		order, err := decodeOrder(doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.StorageFailure("list orders", err)
	}
	return orders, nil
}

// UpdateStatus validates against the stored status and writes with a
// {status, version} guard. Losing the guard means another writer moved the
// order first, so the new state is re-read and validated again.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, to domain.Status, changedBy string) (*domain.Order, error) {
	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		current, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := domain.ValidateTransition(current.Status, to); err != nil {
			return nil, &domain.TransitionError{OrderID: id, From: current.Status, To: to}
		}

		now := r.now()
		filter := bson.M{"id": id, "status": current.Status.String(), "version": current.Version}
		update := bson.M{
			"$set": bson.M{"status": to.String(), "updated_at": now},
			"$inc": bson.M{"version": 1},
			"$push": bson.M{"history": StatusChangeDocument{
				From:      current.Status.String(),
				To:        to.String(),
				ChangedBy: changedBy,
				ChangedAt: now,
			}},
		}

		order, matched, err := r.findAndUpdate(ctx, "update order status", filter, update)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		return order, nil
	}
	return nil, domain.StorageFailure("update order status", fmt.Errorf("order %s changed %d times during update", id, maxStatusAttempts))
}

func (r *OrderRepository) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status for order %s", id)
	}
	update := bson.M{
		"$set": bson.M{"payment_status": status.String(), "updated_at": r.now()},
		"$inc": bson.M{"version": 1},
	}
	order, matched, err := r.findAndUpdate(ctx, "update payment status", bson.M{"id": id}, update)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, domain.NotFound(id)
	}
	return order, nil
}

// findAndUpdate returns the updated order, or matched=false when no document
// passes the filter. Every error is a StorageFailure.
func (r *OrderRepository) findAndUpdate(ctx context.Context, op string, filter, update bson.M) (*domain.Order, bool, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc OrderDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, domain.StorageFailure(op, err)
	}
	order, err := decodeOrder(doc)
	if err != nil {
		return nil, true, err
	}
	return order, true, nil
}

// decodeOrder reports a document that no longer parses as a storage failure.
func decodeOrder(doc OrderDocument) (*domain.Order, error) {
	order, err := fromDocument(doc)
	if err != nil {
		return nil, domain.StorageFailure("decode order", err)
	}
	return order, nil
}

func listFilter(filter domain.OrderFilter) bson.M {
	query := bson.M{}
	if len(filter.Statuses) > 0 {
		names := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			names[i] = s.String()
		}
		query["status"] = bson.M{"$in": names}
	}
	if len(filter.PaymentStatuses) > 0 {
		names := make([]string, len(filter.PaymentStatuses))
		for i, p := range filter.PaymentStatuses {
			names[i] = p.String()
		}
		query["payment_status"] = bson.M{"$in": names}
	}
	return query
}

func toDocument(order *domain.Order) (OrderDocument, error) {
	doc := OrderDocument{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		Items:         make([]LineItemDocument, 0, len(order.Items)),
		Status:        order.Status.String(),
		PaymentStatus: order.PaymentStatus.String(),
		TableNumber:   order.TableNumber,
		History:       make([]StatusChangeDocument, 0, len(order.History)),
		Version:       order.Version,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}

	var err error
	if doc.Subtotal, err = toDecimal128(order.Subtotal); err != nil {
		return OrderDocument{}, err
	}
	if doc.TaxAmount, err = toDecimal128(order.TaxAmount); err != nil {
		return OrderDocument{}, err
	}
	if doc.TotalAmount, err = toDecimal128(order.TotalAmount); err != nil {
		return OrderDocument{}, err
	}

	for _, item := range order.Items {
		price, err := toDecimal128(item.Price)
		if err != nil {
			return OrderDocument{}, err
		}
		doc.Items = append(doc.Items, LineItemDocument{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Category:   item.Category,
			Quantity:   item.Quantity,
			Price:      price,
		})
	}
	for _, change := range order.History {
		doc.History = append(doc.History, StatusChangeDocument{
			From:      change.From.String(),
			To:        change.To.String(),
			ChangedBy: change.ChangedBy,
			ChangedAt: change.ChangedAt,
		})
	}
	return doc, nil
}

func fromDocument(doc OrderDocument) (*domain.Order, error) {
	status, err := domain.ParseStatus(doc.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", doc.ID, err)
	}
	paymentStatus, err := domain.ParsePaymentStatus(doc.PaymentStatus)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", doc.ID, err)
	}

	order := &domain.Order{
		ID:            doc.ID,
		OrderNumber:   doc.OrderNumber,
		Items:         make([]domain.LineItem, 0, len(doc.Items)),
		Status:        status,
		PaymentStatus: paymentStatus,
		TableNumber:   doc.TableNumber,
		Version:       doc.Version,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	if order.Subtotal, err = fromDecimal128(doc.Subtotal); err != nil {
		return nil, err
	}
	if order.TaxAmount, err = fromDecimal128(doc.TaxAmount); err != nil {
		return nil, err
	}
	if order.TotalAmount, err = fromDecimal128(doc.TotalAmount); err != nil {
		return nil, err
	}

	for _, item := range doc.Items {
		price, err := fromDecimal128(item.Price)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, domain.LineItem{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Category:   item.Category,
			Quantity:   item.Quantity,
			Price:      price,
		})
	}
	for _, change := range doc.History {
		from, err := domain.ParseStatus(change.From)
		if err != nil {
			return nil, fmt.Errorf("order %s history: %w", doc.ID, err)
		}
		to, err := domain.ParseStatus(change.To)
		if err != nil {
			return nil, fmt.Errorf("order %s history: %w", doc.ID, err)
		}
		order.History = append(order.History, domain.StatusChange{
			From:      from,
			To:        to,
			ChangedBy: change.ChangedBy,
			ChangedAt: change.ChangedAt,
		})
	}
	return order, nil
}

// toDecimal128 keeps full precision; rounding is the pricing rule's job.
func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	value, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("invalid amount %s: %w", d, err)
	}
	return value, nil
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid stored amount %s: %w", d, err)
	}
	return value, nil
}
