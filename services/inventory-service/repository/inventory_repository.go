package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	ddbpkg "github.com/Khizarkk7/storefront-backend/pkg/dynamodb"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/models"
)

var (
	ErrNotFound          = errors.New("stock record not found")
	ErrAlreadyExists     = errors.New("stock record already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const (
	ShopIndex         = "shop_id-index"
	historySortLayout = "2006-01-02T15:04:05.000000000Z"
)

// DynamoAPI is the subset of the DynamoDB client the repository uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// InventoryRepository defines the interface for inventory data access.
// Every quantity change returns the row as written.
type InventoryRepository interface {
	Get(ctx context.Context, productID string) (*models.Stock, error)
	Create(ctx context.Context, s *models.Stock) error
	ListByShop(ctx context.Context, shopID string) ([]models.Stock, error)
	Add(ctx context.Context, productID string, qty int) (*models.Stock, error)
	Reduce(ctx context.Context, productID string, qty int) (*models.Stock, error)
	Reserve(ctx context.Context, productID string, qty int) (*models.Stock, error)
	Release(ctx context.Context, productID string, qty int) (*models.Stock, error)
	Confirm(ctx context.Context, productID string, qty int) (*models.Stock, error)
	AppendHistory(ctx context.Context, h *models.StockHistory) error
	History(ctx context.Context, productID string, limit int) ([]models.StockHistory, error)
}

// DynamoInventoryRepository implements InventoryRepository using DynamoDB
type DynamoInventoryRepository struct {
	client       DynamoAPI
	table        string
	historyTable string
}

func NewDynamoInventoryRepository(client DynamoAPI, table, historyTable string) *DynamoInventoryRepository {
	return &DynamoInventoryRepository{client: client, table: table, historyTable: historyTable}
}

func productKey(productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberS{Value: productID},
	}
}

func (r *DynamoInventoryRepository) Get(ctx context.Context, productID string) (*models.Stock, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &r.table,
		Key:            productKey(productID),
		ConsistentRead: sdkaws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var s models.Stock
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &s, nil
}

// Create writes a new row; an existing row for the product is left as is.
func (r *DynamoInventoryRepository) Create(ctx context.Context, s *models.Stock) error {
	if s.Version == 0 {
		s.Version = 1
	}
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal stock: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.table,
		Item:                item,
		ConditionExpression: sdkaws.String("attribute_not_exists(product_id)"),
	})
	if err != nil {
		if ddbpkg.IsConditionFailed(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (r *DynamoInventoryRepository) ListByShop(ctx context.Context, shopID string) ([]models.Stock, error) {
	var (
		result []models.Stock
		start  map[string]types.AttributeValue
	)
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              &r.table,
			IndexName:              sdkaws.String(ShopIndex),
			KeyConditionExpression: sdkaws.String("shop_id = :shop"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":shop": &types.AttributeValueMemberS{Value: shopID},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("dynamodb Query failed: %w", err)
		}
		var page []models.Stock
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		result = append(result, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return result, nil
		}
		start = out.LastEvaluatedKey
	}
}

// Add increases quantity and available.
func (r *DynamoInventoryRepository) Add(ctx context.Context, productID string, qty int) (*models.Stock, error) {
	return r.adjust(ctx, productID, qty,
		"SET quantity = quantity + :qty, available = available + :qty, updated_at = :now",
		"attribute_exists(product_id)")
}

// Reduce removes unreserved units.
func (r *DynamoInventoryRepository) Reduce(ctx context.Context, productID string, qty int) (*models.Stock, error) {
	return r.adjust(ctx, productID, qty,
		"SET quantity = quantity - :qty, available = available - :qty, updated_at = :now",
		"attribute_exists(product_id) AND available >= :qty")
}

// Reserve moves units from available to reserved.
func (r *DynamoInventoryRepository) Reserve(ctx context.Context, productID string, qty int) (*models.Stock, error) {
	return r.adjust(ctx, productID, qty,
		"SET reserved = reserved + :qty, available = available - :qty, updated_at = :now",
		"attribute_exists(product_id) AND available >= :qty")
}

// Release returns reserved units to available.
func (r *DynamoInventoryRepository) Release(ctx context.Context, productID string, qty int) (*models.Stock, error) {
	return r.adjust(ctx, productID, qty,
		"SET reserved = reserved - :qty, available = available + :qty, updated_at = :now",
		"attribute_exists(product_id) AND reserved >= :qty")
}

// Confirm permanently deducts reserved units (payment succeeded).
func (r *DynamoInventoryRepository) Confirm(ctx context.Context, productID string, qty int) (*models.Stock, error) {
	return r.adjust(ctx, productID, qty,
		"SET reserved = reserved - :qty, quantity = quantity - :qty, updated_at = :now",
		"attribute_exists(product_id) AND reserved >= :qty AND quantity >= :qty")
}

// adjust runs one conditional update. A failed condition on a missing row
// is ErrNotFound, on an existing row ErrInsufficientStock.
func (r *DynamoInventoryRepository) adjust(ctx context.Context, productID string, qty int, update, cond string) (*models.Stock, error) {
	nowAV, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("marshal timestamp: %w", err)
	}
	update += ", version = if_not_exists(version, :zero) + :one"
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           &r.table,
		Key:                 productKey(productID),
		UpdateExpression:    &update,
		ConditionExpression: &cond,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":qty":  &types.AttributeValueMemberN{Value: fmt.Sprint(qty)},
			":now":  nowAV,
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":one":  &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			if len(ccf.Item) == 0 {
				return nil, ErrNotFound
			}
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("dynamodb UpdateItem failed: %w", err)
	}
	var s models.Stock
	if err := attributevalue.UnmarshalMap(out.Attributes, &s); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &s, nil
}

func (r *DynamoInventoryRepository) AppendHistory(ctx context.Context, h *models.StockHistory) error {
	h.SortKey = h.ChangedAt.UTC().Format(historySortLayout) + "#" + h.HistoryID
	item, err := attributevalue.MarshalMap(h)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &r.historyTable, Item: item}); err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

// History returns the newest rows first.
func (r *DynamoInventoryRepository) History(ctx context.Context, productID string, limit int) ([]models.StockHistory, error) {
	in := &dynamodb.QueryInput{
		TableName:              &r.historyTable,
		KeyConditionExpression: sdkaws.String("product_id = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: productID},
		},
		ScanIndexForward: sdkaws.Bool(false),
	}
	if limit > 0 {
		in.Limit = sdkaws.Int32(int32(limit))
	}
	out, err := r.client.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("dynamodb Query failed: %w", err)
	}
	history := make([]models.StockHistory, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &history); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return history, nil
}

// EnsureTables creates the stock and history tables when missing, for
// LocalStack and fresh environments.
func (r *DynamoInventoryRepository) EnsureTables(ctx context.Context) error {
	stockTable := &dynamodb.CreateTableInput{
		TableName:   &r.table,
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: sdkaws.String("product_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: sdkaws.String("shop_id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: sdkaws.String("product_id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{{
			IndexName: sdkaws.String(ShopIndex),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: sdkaws.String("shop_id"), KeyType: types.KeyTypeHash},
			},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		}},
	}
	historyTable := &dynamodb.CreateTableInput{
		TableName:   &r.historyTable,
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: sdkaws.String("product_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: sdkaws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: sdkaws.String("product_id"), KeyType: types.KeyTypeHash},
			{AttributeName: sdkaws.String("sk"), KeyType: types.KeyTypeRange},
		},
	}
	for _, in := range []*dynamodb.CreateTableInput{stockTable, historyTable} {
		_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: in.TableName})
		if err == nil {
			continue
		}
		var nf *types.ResourceNotFoundException
		if !errors.As(err, &nf) {
			return fmt.Errorf("describe table %s: %w", *in.TableName, err)
		}
		if _, err := r.client.CreateTable(ctx, in); err != nil {
			return fmt.Errorf("create table %s: %w", *in.TableName, err)
		}
	}
	return nil
}
