package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPostRepo struct {
	col *mongo.Collection
}

func NewMongoPostRepository(col *mongo.Collection) PostRepository {
	return &mongoPostRepo{col: col}
}

// List returns posts most-liked first, newest breaking ties.
func (r *mongoPostRepo) List() ([]Post, error) {
	ctx, cancel := opCtx()
	defer cancel()

	sort := options.Find().SetSort(bson.D{{Key: "likes", Value: -1}, {Key: "timestamp", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, sort)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Post
	for cur.Next(ctx) {
		var p Post
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

func (r *mongoPostRepo) GetByID(id string) (Post, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var p Post
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

func (r *mongoPostRepo) Create(p *Post) error {
	ctx, cancel := opCtx()
	defer cancel()

	if p.Timestamp == 0 {
		p.Timestamp = time.Now().UnixMilli()
	}
	p.Version = 1
	_, err := r.col.InsertOne(ctx, p)
	return err
}

func (r *mongoPostRepo) UpdateContent(id, userID, content string) error {
	p, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return ErrUnauthorized
	}

	ctx, cancel := opCtx()
	defer cancel()
	res, err := r.col.UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$set": bson.M{"content": content}, "$inc": bson.M{"version": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPostRepo) Delete(id, userID string) error {
	p, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return ErrUnauthorized
	}

	ctx, cancel := opCtx()
	defer cancel()
	_, err = r.col.DeleteOne(ctx, bson.M{"id": id})
	return err
}

// ToggleLike flips userID's like with the same conditional-update loop the
// event repo uses, so concurrent likes from different users both land.
func (r *mongoPostRepo) ToggleLike(postID, userID string) (Post, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		p, err := r.GetByID(postID)
		if err != nil {
			return Post{}, err
		}

		read := p.Version
		applyLikeToggle(&p, userID)
		p.Version = read + 1

		ctx, cancel := opCtx()
		res, err := r.col.ReplaceOne(ctx, bson.M{"id": postID, "version": read}, p)
		cancel()
		if err != nil {
			return Post{}, err
		}
		if res.MatchedCount == 1 {
			return p, nil
		}
		time.Sleep(casBackoff)
	}
	return Post{}, ErrConflict
}
