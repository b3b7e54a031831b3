// internal/repository/mongo/plan_repo.go
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

const planDayCollectionName = "plan_days"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new plan day repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planDayCollectionName),
	}
}

// midnightUTC normalizes a time to 00:00:00 UTC on the same calendar day.
// Stored dates and range bounds all pass through here so the unique
// athleteId+date index sees one representation per day.
func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InsertDayIfAbsent stores the day unless one already exists for the same
// athlete and date. A re-run of the generator therefore never overwrites a
// day the athlete may already have trained or left feedback on.
func (r *mongoPlanRepository) InsertDayIfAbsent(ctx context.Context, day *domain.PlanDay) (bool, error) {
	if day.AthleteID == primitive.NilObjectID || day.Date.IsZero() {
		return false, errors.New("plan day requires athleteId and date")
	}

	day.ID = primitive.NewObjectID()
	day.Date = midnightUTC(day.Date)
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now

	filter := bson.M{"athleteId": day.AthleteID, "date": day.Date}
	update := bson.M{"$setOnInsert": day}
	opts := options.Update().SetUpsert(true)

	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost a race against a concurrent insert for the same date; the day exists.
			return false, nil
		}
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

// ListByAthleteInRange retrieves plan days with from <= date < to, oldest first.
func (r *mongoPlanRepository) ListByAthleteInRange(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.PlanDay, error) {
	var days []domain.PlanDay
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

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	// Return empty slice if no days found (not an error)
	return days, nil
}

// GetDay retrieves the plan day stored for an athlete on a calendar date.
func (r *mongoPlanRepository) GetDay(ctx context.Context, athleteID primitive.ObjectID, date time.Time) (*domain.PlanDay, error) {
	var day domain.PlanDay
	filter := bson.M{"athleteId": athleteID, "date": midnightUTC(date)}

	err := r.collection.FindOne(ctx, filter).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

// SetDayFeedback records the athlete's post-session report on a stored day.
// Per-exercise RIR values are matched to exercises by their order field.
func (r *mongoPlanRepository) SetDayFeedback(ctx context.Context, athleteID primitive.ObjectID, date time.Time, feedback domain.DayFeedback) error {
	day, err := r.GetDay(ctx, athleteID, date)
	if err != nil {
		return err
	}

	rirByOrder := make(map[int]*int, len(feedback.Exercises))
	for _, ex := range feedback.Exercises {
		rirByOrder[ex.Order] = ex.RIR
	}
	for i := range day.Exercises {
		if rir, ok := rirByOrder[day.Exercises[i].Order]; ok {
			day.Exercises[i].RIR = rir
		}
	}

	// Only set the optional ratings when the report carries them, so a
	// completion-only report does not null out earlier values.
	set := bson.M{
		"completed": feedback.Completed,
		"exercises": day.Exercises,
		"updatedAt": time.Now().UTC(),
	}
	if feedback.Exertion != nil {
		set["exertion"] = *feedback.Exertion
	}
	if feedback.Soreness != nil {
		set["soreness"] = *feedback.Soreness
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": day.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanDayIndexes creates necessary indexes. Call during startup.
func EnsurePlanDayIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One stored day per athlete per date; InsertDayIfAbsent relies on this.
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Index for collecting every day produced by one generation run
			Keys:    bson.D{{Key: "planId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
