// Package mongodb stores file metadata in a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/math-u-t/litedrive/internal/model"
	"github.com/math-u-t/litedrive/internal/repository"
)

// fileDocument is the stored shape of a FileRecord.
type fileDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"userId"`
	FileName    string             `bson:"fileName"`
	StoragePath string             `bson:"storagePath"`
	FileSize    int64              `bson:"fileSize"`
	MimeType    string             `bson:"mimeType"`
	URL         string             `bson:"url"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func fromModel(rec *model.FileRecord) fileDocument {
	return fileDocument{
		OwnerID:     rec.OwnerID,
		FileName:    rec.FileName,
		StoragePath: rec.StoragePath,
		FileSize:    rec.FileSize,
		MimeType:    rec.MimeType,
		URL:         rec.URL,
		CreatedAt:   rec.CreatedAt,
	}
}

func (d fileDocument) toModel() model.FileRecord {
	return model.FileRecord{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		FileName:    d.FileName,
		StoragePath: d.StoragePath,
		FileSize:    d.FileSize,
		MimeType:    d.MimeType,
		URL:         d.URL,
		CreatedAt:   d.CreatedAt,
	}
}

// FileMongo is a MongoDB implementation of repository.FileRepository.
type FileMongo struct {
	dial Dialer
}

// NewFileMongo creates a repository that acquires its collection through dial on every call.
func NewFileMongo(dial Dialer) *FileMongo {
	return &FileMongo{dial: dial}
}

var _ repository.FileRepository = (*FileMongo)(nil)

func (r *FileMongo) Insert(ctx context.Context, rec *model.FileRecord) (string, error) {
	coll, release, err := r.dial.Dial(ctx)
	if err != nil {
		return "", err
	}
	defer release(ctx)

	res, err := coll.InsertOne(ctx, fromModel(rec))
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *FileMongo) FindOne(ctx context.Context, id, ownerID string) (*model.FileRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	coll, release, err := r.dial.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer release(ctx)

	var doc fileDocument
	err = coll.FindOne(ctx, bson.M{"_id": oid, "userId": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	rec := doc.toModel()
	return &rec, nil
}

func (r *FileMongo) DeleteOne(ctx context.Context, id, ownerID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	coll, release, err := r.dial.Dial(ctx)
	if err != nil {
		return 0, err
	}
	defer release(ctx)

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid, "userId": ownerID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *FileMongo) FindByOwner(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	coll, release, err := r.dial.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer release(ctx)

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := coll.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, err
	}

	var docs []fileDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]model.FileRecord, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toModel())
	}
	return items, nil
}

func (r *FileMongo) Ping(ctx context.Context) error {
	coll, release, err := r.dial.Dial(ctx)
	if err != nil {
		return err
	}
	defer release(ctx)

	return coll.Database().Client().Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the owner listing index and the unique storage path index.
func (r *FileMongo) EnsureIndexes(ctx context.Context) error {
	coll, release, err := r.dial.Dial(ctx)
	if err != nil {
		return err
	}
	defer release(ctx)

	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("userId_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "storagePath", Value: 1}},
			Options: options.Index().SetName("storagePath_unique").SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}
