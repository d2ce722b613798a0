package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"cleanease/internal/domain"
)

const usersCollection = "users"

// MongoUserRepository implementa UserRepository sobre MongoDB.
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewMongoUserRepository(db *mongo.Database, logger *zap.Logger) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection(usersCollection),
		logger:     logger.Named("user_repo"),
	}
}

// EnsureIndexes crea los índices únicos de username y email.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user domain.User) error {
	if user.Bookings == nil {
		user.Bookings = []domain.Booking{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var u domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *MongoUserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"password": passwordHash}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) AddBooking(ctx context.Context, username string, booking domain.Booking) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"username": username},
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

func (r *MongoUserRepository) ListBookings(ctx context.Context, username string) ([]domain.Booking, error) {
	var doc struct {
		Bookings []domain.Booking `bson:"bookings"`
	}
	opts := options.FindOne().SetProjection(bson.M{"bookings": 1})
	err := r.collection.FindOne(ctx, bson.M{"username": username}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if doc.Bookings == nil {
		doc.Bookings = []domain.Booking{}
	}
	return doc.Bookings, nil
}

func (r *MongoUserRepository) RemoveBooking(ctx context.Context, username, bookingID string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$pull": bson.M{"bookings": bson.M{"id": bookingID}}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrNotFound
	}
	if res.ModifiedCount == 0 {
		r.logger.Debug("booking not present", zap.String("username", username), zap.String("booking_id", bookingID))
		return false, nil
	}
	return true, nil
}
