package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type BookingRepo interface {
	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	GetBookingBySignature(ctx context.Context, id string, signature string) (*Booking, error)
	GetBookingByTransactionID(ctx context.Context, transactionID string) (*Booking, error)
	SetQRSignature(ctx context.Context, id string, signature string, at time.Time) error
	UpdatePaymentStatus(ctx context.Context, id string, status BookingStatus, paymentStatus string, transactionID string) (*Booking, error)
	ListReminderCandidates(ctx context.Context, from, to time.Time) ([]*Booking, error)
	MarkReminderSent(ctx context.Context, id string) error
}

// bookingObjectID maps malformed ids to ErrBookingNotFound: they cannot name a stored booking.
func bookingObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrBookingNotFound
	}
	return oid, nil
}

func (mdb *MongodbRepo) findBooking(ctx context.Context, filter bson.M) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var booking Booking
	if err := col.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("error finding booking: %w", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	oid, err := bookingObjectID(id)
	if err != nil {
		return nil, err
	}
	return mdb.findBooking(ctx, bson.M{"_id": oid})
}

func (mdb *MongodbRepo) GetBookingBySignature(ctx context.Context, id string, signature string) (*Booking, error) {
	oid, err := bookingObjectID(id)
	if err != nil {
		return nil, err
	}
	if signature == "" {
		return nil, ErrBookingNotFound
	}
	return mdb.findBooking(ctx, bson.M{"_id": oid, "qrSignature": signature})
}

func (mdb *MongodbRepo) GetBookingByTransactionID(ctx context.Context, transactionID string) (*Booking, error) {
	if transactionID == "" {
		return nil, ErrBookingNotFound
	}
	return mdb.findBooking(ctx, bson.M{"transactionId": transactionID})
}

func (mdb *MongodbRepo) SetQRSignature(ctx context.Context, id string, signature string, at time.Time) error {
	oid, err := bookingObjectID(id)
	if err != nil {
		return err
	}
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	update := bson.M{
		"$set": bson.M{
			"qrSignature":  signature,
			"lastQRUpdate": at,
			"updatedAt":    at,
		},
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("error updating qr signature: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (mdb *MongodbRepo) UpdatePaymentStatus(ctx context.Context, id string, status BookingStatus, paymentStatus string, transactionID string) (*Booking, error) {
	oid, err := bookingObjectID(id)
	if err != nil {
		return nil, err
	}
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	set := bson.M{
		"status":        status,
		"paymentStatus": paymentStatus,
		"updatedAt":     time.Now().UTC(),
	}
	if transactionID != "" {
		set["transactionId"] = transactionID
	}

	var result Booking
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, returnAfter()).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("error updating payment status: %w", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) ListReminderCandidates(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{
		"status":       BookingConfirmed,
		"reminderSent": bson.M{"$ne": true},
		"showDate":     bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding reminder candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	for cursor.Next(ctx) {
		var b Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, &b)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

func (mdb *MongodbRepo) MarkReminderSent(ctx context.Context, id string) error {
	oid, err := bookingObjectID(id)
	if err != nil {
		return err
	}
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	_, err = col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"reminderSent": true, "updatedAt": time.Now().UTC()},
	})
	return err
}
