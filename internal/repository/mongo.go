package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"finemed-server/internal/entity"
	"finemed-server/internal/query"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// MongoOrderRepository stores orders in a MongoDB collection.
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(col *mongo.Collection) *MongoOrderRepository {
	return &MongoOrderRepository{col: col}
}

func (r *MongoOrderRepository) Create(ctx context.Context, o *entity.Order) (*entity.Order, error) {
	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = id
	}
	return o, nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error) {
	var o entity.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MongoOrderRepository) Find(ctx context.Context, opts query.Options) ([]entity.Order, error) {
	filter := bson.M{}
	for key, value := range opts.Filter {
		filter[key] = coerce(value)
	}

	findOpts := options.Find().SetSkip(opts.Skip).SetLimit(opts.Limit)
	if len(opts.Sort) > 0 {
		sort := bson.D{}
		for _, f := range opts.Sort {
			dir := 1
			if f.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: f.Key, Value: dir})
		}
		findOpts.SetSort(sort)
	}
	if len(opts.Fields) > 0 {
		projection := bson.M{}
		for _, f := range opts.Fields {
			projection[f] = 1
		}
		findOpts.SetProjection(projection)
	}

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orders []entity.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) FindByEmail(ctx context.Context, email string) ([]entity.Order, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userEmail": email}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orders []entity.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) Update(ctx context.Context, o *entity.Order) (*entity.Order, error) {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return o, nil
}

func (r *MongoOrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoOrderRepository) TotalRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$totalPrice"},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// coerce maps raw filter values onto the types the documents actually store,
// so status=pending and prescriptionRequired=true both match.
func coerce(value string) interface{} {
	if value == "true" || value == "false" {
		return value == "true"
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	return value
}

// MongoProductRepository stores products in MongoDB with a Redis read-through
// cache in front of lookups. A nil Redis client disables caching.
type MongoProductRepository struct {
	col *mongo.Collection
	rdb *redis.Client
}

func NewMongoProductRepository(col *mongo.Collection, rdb *redis.Client) *MongoProductRepository {
	return &MongoProductRepository{col: col, rdb: rdb}
}

func (r *MongoProductRepository) Create(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return p, nil
}

func (r *MongoProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	key := cacheKey(id)
	if r.rdb != nil {
		cached, err := r.rdb.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msgf("Error reading product %s from cache", id.Hex())
		}
		if cached != "" {
			var p entity.Product
			if err := json.Unmarshal([]byte(cached), &p); err == nil {
				return &p, nil
			}
			logger.Warn().Msgf("Dropping unreadable cache entry for product %s", id.Hex())
		}
	}

	var p entity.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.rdb != nil {
		raw, err := json.Marshal(&p)
		if err == nil {
			err = r.rdb.Set(ctx, key, raw, 0).Err()
		}
		if err != nil {
			logger.Error().Err(err).Msgf("Error caching product %s", id.Hex())
		}
	}
	return &p, nil
}

func (r *MongoProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "quantity": bson.M{"$gte": quantity}},
		bson.M{"$inc": bson.M{"quantity": -quantity}},
	)
	if err != nil {
		return false, err
	}

	if r.rdb != nil {
		if err := r.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
			logger.Error().Err(err).Msgf("Error invalidating cache for product %s", id.Hex())
		}
	}
	return res.ModifiedCount == 1, nil
}

func cacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("product:%s", id.Hex())
}

// MongoUserRepository stores users in MongoDB.
type MongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return u, nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
