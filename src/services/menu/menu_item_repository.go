package menu

import (
	"context"
	"errors"
	"fmt"
	"go-restaurant-pos/src/services/order/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const menuItemsCollection = "menu_items"

type MenuItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"isAvailable"`
	Image     string          `json:"image,omitempty"`
}

func (m MenuItem) entry() *domain.MenuEntry {
	return &domain.MenuEntry{
		ID:        m.ID,
		Name:      m.Name,
		Category:  m.Category,
		Price:     m.Price,
		Available: m.Available,
	}
}

// Catalog is the read side of the menu the order service prices against.
type Catalog interface {
	domain.MenuLookup
	GetAll(ctx context.Context) ([]MenuItem, error)
	// Seed inserts items that do not exist yet and leaves existing ones alone.
	Seed(ctx context.Context, items []MenuItem) error
}

type menuItemDocument struct {
	ID        string               `bson:"id"`
	Name      string               `bson:"name"`
	Category  string               `bson:"category"`
	Price     primitive.Decimal128 `bson:"price"`
	Available bool                 `bson:"is_available"`
	Image     string               `bson:"image,omitempty"`
}

type menuItemRepository struct {
	collection *mongo.Collection
}

func NewMenuItemRepository(db *mongo.Database) Catalog {
	return &menuItemRepository{
		collection: db.Collection(menuItemsCollection),
	}
}

func (r *menuItemRepository) Resolve(ctx context.Context, id string) (*domain.MenuEntry, error) {
	var doc menuItemDocument
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	item, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	return item.entry(), nil
}

func (r *menuItemRepository) GetAll(ctx context.Context) ([]MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []MenuItem{}
	for cursor.Next(ctx) {
		var doc menuItemDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		item, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, cursor.Err()
}

func (r *menuItemRepository) Seed(ctx context.Context, items []MenuItem) error {
	if _, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_menu_item_id"),
	}); err != nil {
		return fmt.Errorf("failed to create menu index: %w", err)
	}

	for _, item := range items {
		doc, err := toDocument(item)
		if err != nil {
			return err
		}
		filter := bson.M{"id": item.ID}
		update := bson.M{"$setOnInsert": doc}
		opts := options.Update().SetUpsert(true)
		if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
			return fmt.Errorf("failed to seed menu item %s: %w", item.ID, err)
		}
	}
	return nil
}

func toDocument(item MenuItem) (menuItemDocument, error) {
	price, err := primitive.ParseDecimal128(item.Price.String())
	if err != nil {
		return menuItemDocument{}, fmt.Errorf("invalid price for menu item %s: %w", item.ID, err)
	}
	return menuItemDocument{
		ID:        item.ID,
		Name:      item.Name,
		Category:  item.Category,
		Price:     price,
		Available: item.Available,
		Image:     item.Image,
	}, nil
}

func fromDocument(doc menuItemDocument) (MenuItem, error) {
	price, err := decimal.NewFromString(doc.Price.String())
	if err != nil {
		return MenuItem{}, fmt.Errorf("invalid stored price for menu item %s: %w", doc.ID, err)
	}
	return MenuItem{
		ID:        doc.ID,
		Name:      doc.Name,
		Category:  doc.Category,
		Price:     price,
		Available: doc.Available,
		Image:     doc.Image,
	}, nil
}
