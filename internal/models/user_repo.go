package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepo interface {
	FindOrCreateUserByEmail(ctx context.Context, email string, provider string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func (mdb *MongodbRepo) FindOrCreateUserByEmail(ctx context.Context, email string, provider string) (*User, error) {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()
	filter := bson.M{"email": email}
	update := bson.M{
		"$set": bson.M{
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"email":     email,
			"role":      RoleUser,
			"provider":  provider,
			"createdAt": now,
		},
	}

	var user User
	err = col.FindOneAndUpdate(ctx, filter, update, returnAfter().SetUpsert(true)).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("error upserting user: %w", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var user User
	if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return &user, nil
}
