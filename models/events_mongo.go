package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Conditional-update bound. The store retries a stale read-modify-write this
// many times before giving up with ErrConflict.
const maxCASAttempts = 5

const casBackoff = 25 * time.Millisecond

type mongoEventRepo struct {
	col *mongo.Collection
}

func NewMongoEventRepository(col *mongo.Collection) EventRepository {
	return &mongoEventRepo{col: col}
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (r *mongoEventRepo) find(filter bson.M, opts ...*options.FindOptions) ([]Event, error) {
	ctx, cancel := opCtx()
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	for cur.Next(ctx) {
		var e Event
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cur.Err()
}

func (r *mongoEventRepo) GetAll() ([]Event, error) {
	return r.find(bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

func (r *mongoEventRepo) GetByID(id string) (Event, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var e Event
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Event{}, ErrEventGone
	}
	if err != nil {
		return Event{}, err
	}
	return e, nil
}

func (r *mongoEventRepo) ListByOrganizer(userID string) ([]Event, error) {
	return r.find(bson.M{"userId": userID})
}

func (r *mongoEventRepo) ListJoined(userID string) ([]Event, error) {
	key := fmt.Sprintf("participants.%s", userID)
	return r.find(bson.M{key: bson.M{"$exists": true}})
}

func (r *mongoEventRepo) Create(e *Event) error {
	ctx, cancel := opCtx()
	defer cancel()

	e.Version = 1
	_, err := r.col.InsertOne(ctx, e)
	return err
}

// Update replaces the editable attributes only; the roster, capacity counter
// and version are owned by the conditional-update path.
func (r *mongoEventRepo) Update(e *Event) error {
	ctx, cancel := opCtx()
	defer cancel()

	set := bson.M{
		"name":           e.Name,
		"organization":   e.Organization,
		"description":    e.Description,
		"instructions":   e.Instructions,
		"location":       e.Location,
		"date":           e.Date,
		"time":           e.Time,
		"type":           e.Type,
		"minAge":         e.MinAge,
		"spotsRemaining": e.SpotsRemaining,
		"organizerName":  e.OrganizerName,
		"organizerEmail": e.OrganizerEmail,
		"organizerPhone": e.OrganizerPhone,
	}
	if e.FlyerURL != "" {
		set["flyerURL"] = e.FlyerURL
	}
	if e.Latitude != nil {
		set["latitude"] = e.Latitude
	}
	if e.Longitude != nil {
		set["longitude"] = e.Longitude
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"id": e.ID},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrEventGone
	}
	return nil
}

func (r *mongoEventRepo) Delete(id string) error {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrEventGone
	}
	return nil
}

// mutate runs one optimistic read-modify-write cycle over the full event
// record: read, apply fn, write conditioned on the version being unchanged
// since the read. A version mismatch means another writer committed first;
// the whole cycle is retried up to maxCASAttempts before ErrConflict.
func (r *mongoEventRepo) mutate(id string, fn func(*Event) error) (Event, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		e, err := r.GetByID(id)
		if err != nil {
			return Event{}, err
		}

		read := e.Version
		err = fn(&e)
		if errors.Is(err, errUnchanged) {
			return e, nil // no-op, nothing to commit
		}
		if err != nil {
			return Event{}, err
		}

		e.Version = read + 1
		ctx, cancel := opCtx()
		res, err := r.col.ReplaceOne(ctx, bson.M{"id": id, "version": read}, e)
		cancel()
		if err != nil {
			return Event{}, err
		}
		if res.MatchedCount == 1 {
			return e, nil
		}
		time.Sleep(casBackoff)
	}
	return Event{}, ErrConflict
}

func (r *mongoEventRepo) Join(eventID string, p Participation) (Event, error) {
	if p.JoinedAt == 0 {
		p.JoinedAt = time.Now().UnixMilli()
	}
	return r.mutate(eventID, func(e *Event) error {
		return applyJoin(e, p)
	})
}

func (r *mongoEventRepo) Cancel(eventID, userID string) (Event, error) {
	return r.mutate(eventID, func(e *Event) error {
		return applyCancel(e, userID)
	})
}

func (r *mongoEventRepo) CheckIn(eventID, userID string) error {
	_, err := r.mutate(eventID, func(e *Event) error {
		return applyCheckIn(e, userID)
	})
	return err
}

func (r *mongoEventRepo) MarkAttendance(eventID, userID, status string, now time.Time) (Participation, error) {
	e, err := r.mutate(eventID, func(e *Event) error {
		return applyAttendance(e, userID, status, now)
	})
	if err != nil {
		return Participation{}, err
	}
	return e.Participants[userID], nil
}
