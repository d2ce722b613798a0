package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"cleanease/internal/domain"
)

const providersCollection = "employees"

// MongoProviderRepository implementa ProviderRepository sobre MongoDB.
type MongoProviderRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewMongoProviderRepository(db *mongo.Database, logger *zap.Logger) *MongoProviderRepository {
	return &MongoProviderRepository{
		collection: db.Collection(providersCollection),
		logger:     logger.Named("provider_repo"),
	}
}

func (r *MongoProviderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "city", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create provider indexes: %w", err)
	}
	return nil
}

func (r *MongoProviderRepository) Create(ctx context.Context, p domain.Provider) error {
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	if p.Bookings == nil {
		p.Bookings = []domain.Booking{}
	}
	_, err := r.collection.InsertOne(ctx, p)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (r *MongoProviderRepository) GetByID(ctx context.Context, id int64) (domain.Provider, error) {
	var p domain.Provider
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Provider{}, ErrNotFound
	}
	return p, err
}

func (r *MongoProviderRepository) List(ctx context.Context, offset, limit int) ([]domain.Provider, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	providers := []domain.Provider{}
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, 0, err
	}
	return providers, total, nil
}

func (r *MongoProviderRepository) Update(ctx context.Context, id int64, u domain.ProviderUpdate) (domain.Provider, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Image != nil {
		set["image"] = *u.Image
	}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.City != nil {
		set["city"] = *u.City
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p domain.Provider
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Provider{}, ErrNotFound
	}
	return p, err
}

func (r *MongoProviderRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddRating filtra por "reviews.name != reviewer" y actualiza con un pipeline,
// de modo que leer y escribir promedio/conteo ocurre dentro del servidor.
func (r *MongoProviderRepository) AddRating(ctx context.Context, id int64, rating float64, review domain.Review) (domain.Provider, error) {
	filter := ratingFilter(id, review.Name)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p domain.Provider
	err := r.collection.FindOneAndUpdate(ctx, filter, ratingUpdatePipeline(rating, review), opts).Decode(&p)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Provider{}, err
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return domain.Provider{}, err
	}
	if n > 0 {
		return domain.Provider{}, ErrDuplicateReview
	}
	return domain.Provider{}, ErrNotFound
}

func (r *MongoProviderRepository) AddBooking(ctx context.Context, id int64, booking domain.Booking) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$push": bson.M{"bookings": booking}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func ratingFilter(id int64, reviewer string) bson.M {
	return bson.M{
		"id":           id,
		"reviews.name": bson.M{"$ne": reviewer},
	}
}

func ratingUpdatePipeline(rating float64, review domain.Review) mongo.Pipeline {
	count := bson.D{{Key: "$ifNull", Value: bson.A{"$rating.count", 0}}}
	average := bson.D{{Key: "$ifNull", Value: bson.A{"$rating.average", 0}}}
	newCount := bson.D{{Key: "$add", Value: bson.A{count, 1}}}
	newAverage := bson.D{{Key: "$divide", Value: bson.A{
		bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$multiply", Value: bson.A{average, count}}},
			rating,
		}}},
		newCount,
	}}}
	// $literal evita que textos que empiezan con "$" se lean como rutas.
	entry := bson.D{{Key: "$literal", Value: bson.D{
		{Key: "name", Value: review.Name},
		{Key: "comments", Value: review.Comments},
		{Key: "created_at", Value: review.CreatedAt},
	}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "rating", Value: bson.D{
				{Key: "average", Value: newAverage},
				{Key: "count", Value: newCount},
			}},
			{Key: "reviews", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}}},
				bson.A{entry},
			}}}},
			{Key: "updated_at", Value: review.CreatedAt},
		}}},
	}
}
