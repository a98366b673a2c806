package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/repository"
)

const (
	foodsCollection    = "foods"
	countersCollection = "counters"
	foodsCounterID     = "foods"
)

// foodDocument is the stored form of a food. Dates are kept as YYYY-MM-DD
// strings so they sort and compare as calendar days.
type foodDocument struct {
	ID             int64  `bson:"_id"`
	Name           string `bson:"name"`
	BestBeforeDate string `bson:"best_before_date"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// MongoDBRepository implements repository.FoodRepository for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

var _ repository.FoodRepository = (*MongoDBRepository)(nil)

// NewMongoDBRepository connects to uri and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
		logger: logger,
	}, nil
}

func (r *MongoDBRepository) foods() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(foodsCollection)
}

// ListFoods returns at most limit foods ordered by id.
func (r *MongoDBRepository) ListFoods(ctx context.Context, limit int) ([]models.Food, error) {
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit))
	cursor, err := r.foods().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find foods: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []foodDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode foods: %w", err)
	}

	foods := make([]models.Food, 0, len(docs))
	for _, doc := range docs {
		food, err := doc.toFood()
		if err != nil {
			return nil, err
		}
		foods = append(foods, food)
	}
	return foods, nil
}

// CreateFood allocates the next id from the counters collection and inserts
// the food.
func (r *MongoDBRepository) CreateFood(ctx context.Context, food models.NewFood) (models.Food, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return models.Food{}, err
	}

	doc := foodDocument{ID: id, Name: food.Name, BestBeforeDate: food.BestBeforeDate.String()}
	if _, err := r.foods().InsertOne(ctx, doc); err != nil {
		return models.Food{}, fmt.Errorf("failed to insert food: %w", err)
	}

	r.logger.Debug("food inserted", zap.Int64("id", id))
	return models.Food{ID: id, Name: food.Name, BestBeforeDate: food.BestBeforeDate}, nil
}

// DeleteFood removes the food with id; a missing document is not an error.
func (r *MongoDBRepository) DeleteFood(ctx context.Context, id int64) error {
	if _, err := r.foods().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("failed to delete food %d: %w", id, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) nextID(ctx context.Context) (int64, error) {
	counters := r.client.Database(r.dbName).Collection(countersCollection)
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter counterDocument
	err := counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: foodsCounterID}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate food id: %w", err)
	}
	return counter.Seq, nil
}

func (d foodDocument) toFood() (models.Food, error) {
	date, err := models.ParseDate(d.BestBeforeDate)
	if err != nil {
		return models.Food{}, fmt.Errorf("food %d has a malformed best_before_date: %w", d.ID, err)
	}
	return models.Food{ID: d.ID, Name: d.Name, BestBeforeDate: date}, nil
}
