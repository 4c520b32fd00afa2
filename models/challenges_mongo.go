package models

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoChallengeRepo struct {
	col *mongo.Collection
}

func NewMongoChallengeRepository(col *mongo.Collection) ChallengeRepository {
	return &mongoChallengeRepo{col: col}
}

func (r *mongoChallengeRepo) GetMonth(monthKey string) (ChallengeSet, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var set ChallengeSet
	err := r.col.FindOne(ctx, bson.M{"monthKey": monthKey}).Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ChallengeSet{}, ErrNotFound
	}
	if err != nil {
		return ChallengeSet{}, err
	}
	return set, nil
}

func (r *mongoChallengeRepo) SetMonth(set ChallengeSet) error {
	ctx, cancel := opCtx()
	defer cancel()

	_, err := r.col.ReplaceOne(ctx, bson.M{"monthKey": set.MonthKey}, set,
		options.Replace().SetUpsert(true))
	return err
}
