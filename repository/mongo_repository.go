package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediahub/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the document backend.
const (
	albumsCollection = "albums"
	photosCollection = "photos"
	videosCollection = "videos"
)

var newestFirst = bson.D{{Key: "date", Value: -1}}

// bsonField maps column names that differ between the SQL and document schemas.
var bsonField = map[string]string{
	"embed_link": "embedLink",
}

func setDocument(cols map[string]interface{}, updatedAt time.Time) bson.M {
	set := bson.M{"updatedAt": updatedAt}
	for k, v := range cols {
		if alias, ok := bsonField[k]; ok {
			k = alias
		}
		set[k] = v
	}
	return bson.M{"$set": set}
}

// NewMongoSet wires the three repositories onto one database.
func NewMongoSet(client *mongo.Client, database string) Set {
	db := client.Database(database)
	photos := &mongoPhotoRepository{coll: db.Collection(photosCollection)}
	return Set{
		Albums: &mongoAlbumRepository{coll: db.Collection(albumsCollection), photos: photos},
		Photos: photos,
		Videos: &mongoVideoRepository{coll: db.Collection(videosCollection)},
		Close:  client.Disconnect,
	}
}

// EnsureMongoIndexes creates the indexes the listing and lookup queries rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		albumsCollection: {
			{Keys: newestFirst},
		},
		photosCollection: {
			{Keys: bson.D{{Key: "albumId", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "assetId", Value: 1}}},
		},
		videosCollection: {
			{Keys: newestFirst},
			{Keys: bson.D{{Key: "assetId", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "embedLink", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

type mongoAlbumRepository struct {
	coll   *mongo.Collection
	photos *mongoPhotoRepository
}

func (r *mongoAlbumRepository) Create(ctx context.Context, album *model.Album) error {
	if album.ID == "" {
		album.ID = uuid.New().String()
	}
	if album.Contributors == nil {
		album.Contributors = model.StringList{}
	}
	_, err := r.coll.InsertOne(ctx, album)
	return err
}

func (r *mongoAlbumRepository) GetByID(ctx context.Context, id string) (*model.Album, error) {
	var album model.Album
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&album)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}

func (r *mongoAlbumRepository) List(ctx context.Context) ([]*model.Album, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	var albums []*model.Album
	if err := cursor.All(ctx, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

func (r *mongoAlbumRepository) Update(ctx context.Context, id string, patch model.AlbumPatch, updatedAt time.Time) (*model.Album, error) {
	var album model.Album
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, setDocument(patch.Columns(), updatedAt),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&album)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}

// DeleteIfEmpty checks and deletes in two steps; a photo inserted between
// them is not detected because the document store has no cross-collection
// transaction here.
func (r *mongoAlbumRepository) DeleteIfEmpty(ctx context.Context, id string) (bool, error) {
	count, err := r.photos.CountByAlbum(ctx, id)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

type mongoPhotoRepository struct {
	coll *mongo.Collection
}

func (r *mongoPhotoRepository) Create(ctx context.Context, photo *model.Photo) error {
	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}
	if photo.Contributors == nil {
		photo.Contributors = model.StringList{}
	}
	_, err := r.coll.InsertOne(ctx, photo)
	return err
}

func (r *mongoPhotoRepository) GetByID(ctx context.Context, id string) (*model.Photo, error) {
	var photo model.Photo
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&photo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *mongoPhotoRepository) ListByAlbum(ctx context.Context, albumID string) ([]*model.Photo, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"albumId": albumID}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	var photos []*model.Photo
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *mongoPhotoRepository) CountByAlbum(ctx context.Context, albumID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"albumId": albumID})
}

func (r *mongoPhotoRepository) ExistsByAssetID(ctx context.Context, assetID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"assetId": assetID}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *mongoPhotoRepository) Update(ctx context.Context, id string, patch model.PhotoPatch, updatedAt time.Time) (*model.Photo, error) {
	var photo model.Photo
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, setDocument(patch.Columns(), updatedAt),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&photo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *mongoPhotoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

type mongoVideoRepository struct {
	coll *mongo.Collection
}

func (r *mongoVideoRepository) Create(ctx context.Context, video *model.Video) error {
	if video.ID == "" {
		video.ID = uuid.New().String()
	}
	if video.Contributors == nil {
		video.Contributors = model.StringList{}
	}
	if video.Collaborators == nil {
		video.Collaborators = model.StringList{}
	}
	_, err := r.coll.InsertOne(ctx, video)
	return err
}

func (r *mongoVideoRepository) GetByID(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &video, nil
}

func (r *mongoVideoRepository) List(ctx context.Context) ([]*model.Video, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	var videos []*model.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *mongoVideoRepository) ReferencesAsset(ctx context.Context, assetID, link string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, videoReferenceFilter(assetID, link), options.Count().SetLimit(1))
	return n > 0, err
}

func videoReferenceFilter(assetID, link string) bson.M {
	if link == "" {
		return bson.M{"assetId": assetID}
	}
	return bson.M{"$or": bson.A{
		bson.M{"assetId": assetID},
		bson.M{"embedLink": link},
	}}
}

func (r *mongoVideoRepository) Update(ctx context.Context, id string, patch model.VideoPatch, updatedAt time.Time) (*model.Video, error) {
	var video model.Video
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, setDocument(patch.Columns(), updatedAt),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &video, nil
}

func (r *mongoVideoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
