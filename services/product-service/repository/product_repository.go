package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/common/stock"
	"github.com/Khizarkk7/storefront-backend/services/product-service/models"
)

var ErrNotFound = errors.New("product not found")

// ErrStaleStock is returned when a newer stock version was already applied.
var ErrStaleStock = errors.New("stale stock version")

// ProductRepository is the catalogue store.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByShop(ctx context.Context, shopID string, q models.ListQuery, p pagination.Params) ([]models.Product, int64, error)
	Summarize(ctx context.Context, shopID, search string) (stock.Summary, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	SoftDelete(ctx context.Context, id string) error
	SetStockQuantity(ctx context.Context, id string, quantity int, version int64) (*models.Product, error)
	EnsureIndexes(ctx context.Context) error
}

type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&product)
	if err != nil {
		return nil, mapErr(err)
	}
	return &product, nil
}

func (r *MongoProductRepository) FindByShop(ctx context.Context, shopID string, q models.ListQuery, p pagination.Params) ([]models.Product, int64, error) {
	filter := shopFilter(shopID, q.Search)
	if f := statusFilter(q.Status); f != nil {
		for k, v := range f {
			filter[k] = v
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Summarize counts the shop's products per stock status in one aggregation.
func (r *MongoProductRepository) Summarize(ctx context.Context, shopID, search string) (stock.Summary, error) {
	lowCond := bson.M{"$and": bson.A{
		bson.M{"$gt": bson.A{"$stock_quantity", 0}},
		bson.M{"$lt": bson.A{"$stock_quantity", "$low_stock_threshold"}},
	}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: shopFilter(shopID, search)}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"out":   bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$lte": bson.A{"$stock_quantity", 0}}, 1, 0}}},
			"low":   bson.M{"$sum": bson.M{"$cond": bson.A{lowCond, 1, 0}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return stock.Summary{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int `bson:"total"`
		Out   int `bson:"out"`
		Low   int `bson:"low"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return stock.Summary{}, err
	}
	if len(rows) == 0 {
		return stock.Summary{}, nil
	}
	row := rows[0]
	return stock.Summary{
		Total:      row.Total,
		Active:     row.Total - row.Out - row.Low,
		LowStock:   row.Low,
		OutOfStock: row.Out,
	}, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	_, err := r.collection.InsertOne(ctx, product)
	return err
}

func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID, "is_deleted": false}, product)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "deleted_at": now, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStockQuantity mirrors the inventory level onto the product and returns
// the updated document. It only applies a version above the stored one.
func (r *MongoProductRepository) SetStockQuantity(ctx context.Context, id string, quantity int, version int64) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "stock_version": bson.M{"$not": bson.M{"$gte": version}}},
		bson.M{"$set": bson.M{"stock_quantity": quantity, "stock_version": version, "updated_at": time.Now().UTC()}},
		opts,
	).Decode(&product)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrStaleStock
	}
	return nil, ErrNotFound
}

func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "is_deleted", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "product_name", Value: "text"}}},
	})
	return err
}

func shopFilter(shopID, search string) bson.M {
	filter := bson.M{"shop_id": shopID, "is_deleted": false}
	if s := strings.TrimSpace(search); s != "" {
		filter["product_name"] = bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
	}
	return filter
}

// statusFilter mirrors stock.Classify as a query.
func statusFilter(status string) bson.M {
	switch status {
	case stock.StatusOutOfStock:
		return bson.M{"stock_quantity": bson.M{"$lte": 0}}
	case stock.StatusLowStock:
		return bson.M{
			"stock_quantity": bson.M{"$gt": 0},
			"$expr":          bson.M{"$lt": bson.A{"$stock_quantity", "$low_stock_threshold"}},
		}
	case stock.StatusActive:
		return bson.M{
			"stock_quantity": bson.M{"$gt": 0},
			"$expr":          bson.M{"$gte": bson.A{"$stock_quantity", "$low_stock_threshold"}},
		}
	}
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
