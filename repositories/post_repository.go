package repositories

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/justda2ofus/memories_backend/models"
)

type PostRepository struct {
	collection *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{
		collection: db.Collection("posts"),
	}
}

// Insert writes one album entry. The timestamp comes from the server clock
// via $currentDate so cross-device ordering holds regardless of local
// clocks.
func (r *PostRepository) Insert(ctx context.Context, albumName, caption string, media []models.MediaItem) (*models.Post, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	id := primitive.NewObjectID()
	update := bson.M{
		"$setOnInsert": bson.M{
			"albumName": albumName,
			"caption":   caption,
			"media":     media,
		},
		"$currentDate": bson.M{"timestamp": true},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(cctx, bson.M{"_id": id}, update, opts); err != nil {
		return nil, err
	}

	var post models.Post
	if err := r.collection.FindOne(cctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// FindAll returns every post, newest first by server timestamp.
func (r *PostRepository) FindAll(ctx context.Context) ([]models.Post, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(cctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(cctx)

	posts := []models.Post{}
	if err := cursor.All(cctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete removes one post by id.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(cctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AlbumNames returns the distinct non-empty album names, sorted.
func (r *PostRepository) AlbumNames(ctx context.Context) ([]string, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	values, err := r.collection.Distinct(cctx, "albumName", bson.M{})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(values))
	for _, v := range values {
		name, ok := v.(string)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Watch opens a change stream over the post collection.
func (r *PostRepository) Watch(ctx context.Context) (*mongo.ChangeStream, error) {
	return r.collection.Watch(ctx, mongo.Pipeline{})
}
