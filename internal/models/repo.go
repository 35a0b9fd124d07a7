package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Validate = validator.New()

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrOTPNotFound     = errors.New("otp not found or expired")
)

const (
	BookingColName = "bookings"
	UserColName    = "users"
)

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

// EnsureIndexes creates the indexes the repositories rely on. Safe to call on every start.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	users, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return err
	}
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("error creating users.email index: %w", err)
	}

	bookings, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return err
	}
	if _, err := bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "showDate", Value: 1}, {Key: "reminderSent", Value: 1}},
	}); err != nil {
		return fmt.Errorf("error creating bookings reminder index: %w", err)
	}
	return nil
}

type RedisRepo struct {
	redisClient *redis.Client
}

func RedisNewRepo(redisClient *redis.Client) *RedisRepo {
	return &RedisRepo{
		redisClient: redisClient,
	}
}
