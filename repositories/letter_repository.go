package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/justda2ofus/memories_backend/models"
)

type LetterRepository struct {
	collection *mongo.Collection
}

func NewLetterRepository(db *mongo.Database) *LetterRepository {
	return &LetterRepository{
		collection: db.Collection("letters"),
	}
}

// Insert saves one letter for an album with a server-assigned timestamp.
func (r *LetterRepository) Insert(ctx context.Context, albumName, body string) (*models.Letter, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	id := primitive.NewObjectID()
	update := bson.M{
		"$setOnInsert": bson.M{
			"albumName": albumName,
			"body":      body,
		},
		"$currentDate": bson.M{"timestamp": true},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(cctx, bson.M{"_id": id}, update, opts); err != nil {
		return nil, err
	}

	var letter models.Letter
	if err := r.collection.FindOne(cctx, bson.M{"_id": id}).Decode(&letter); err != nil {
		return nil, err
	}
	return &letter, nil
}

// Latest returns the newest letter for an album, or mongo.ErrNoDocuments.
func (r *LetterRepository) Latest(ctx context.Context, albumName string) (*models.Letter, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	findOptions := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var letter models.Letter
	err := r.collection.FindOne(cctx, bson.M{"albumName": albumName}, findOptions).Decode(&letter)
	if err != nil {
		return nil, err
	}
	return &letter, nil
}
