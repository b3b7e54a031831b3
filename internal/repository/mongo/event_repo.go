// internal/repository/mongo/event_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const eventCollectionName = "events"

// mongoEventRepository implements repository.EventRepository
type mongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a new Event repository.
func NewMongoEventRepository(db *mongo.Database) repository.EventRepository {
	return &mongoEventRepository{
		collection: db.Collection(eventCollectionName),
	}
}

// Create inserts a new calendar event. The event date is normalized to UTC
// midnight so range queries line up with stored plan days.
func (r *mongoEventRepository) Create(ctx context.Context, event *domain.Event) (primitive.ObjectID, error) {
	if event.AthleteID == primitive.NilObjectID || event.Label == "" || event.Date.IsZero() {
		return primitive.NilObjectID, errors.New("event requires athleteId, label, and date")
	}

	event.ID = primitive.NewObjectID()
	event.Date = midnightUTC(event.Date)
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted event ID")
	}
	return insertedID, nil
}

// ListByAthleteInRange retrieves events with from <= date < to, oldest first.
func (r *mongoEventRepository) ListByAthleteInRange(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.Event, error) {
	var events []domain.Event
	filter := bson.M{
		"athleteId": athleteID,
		"date": bson.M{
			"$gte": midnightUTC(from),
			"$lt":  midnightUTC(to),
		},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	// Return empty slice if no events found (not an error)
	return events, nil
}

// Delete removes an event owned by the given athlete.
func (r *mongoEventRepository) Delete(ctx context.Context, id, athleteID primitive.ObjectID) error {
	if id == primitive.NilObjectID || athleteID == primitive.NilObjectID {
		return errors.New("event ID and athlete ID are required for deletion")
	}

	// Filter ensures the event exists AND belongs to the specified athlete.
	filter := bson.M{
		"_id":       id,
		"athleteId": athleteID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Event not found OR not owned by this athlete.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureEventIndexes creates necessary indexes. Call during startup.
func EnsureEventIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Compound index for the main query pattern: events for an athlete in a date range
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
