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

const athleteCollectionName = "athletes"

// mongoAthleteRepository implements the repository.AthleteRepository interface using MongoDB.
type mongoAthleteRepository struct {
	collection *mongo.Collection
}

// NewMongoAthleteRepository creates a new instance of mongoAthleteRepository.
// It expects a connected *mongo.Database instance.
func NewMongoAthleteRepository(db *mongo.Database) repository.AthleteRepository {
	return &mongoAthleteRepository{
		collection: db.Collection(athleteCollectionName),
	}
}

// Create inserts a new athlete into the database.
func (r *mongoAthleteRepository) Create(ctx context.Context, athlete *domain.Athlete) (primitive.ObjectID, error) {
	// Basic validation; more robust validation belongs in the service layer.
	if athlete.Name == "" {
		return primitive.NilObjectID, errors.New("athlete name is required")
	}

	athlete.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	athlete.CreatedAt = now
	athlete.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, athlete)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted athlete ID")
	}

	return insertedID, nil
}

// GetByID retrieves an athlete by their MongoDB ObjectID.
func (r *mongoAthleteRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	var athlete domain.Athlete
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&athlete)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &athlete, nil
}

// Update overwrites the mutable profile fields of an existing athlete.
func (r *mongoAthleteRepository) Update(ctx context.Context, athlete *domain.Athlete) error {
	if athlete.ID == primitive.NilObjectID {
		return errors.New("athlete ID is required for update")
	}

	filter := bson.M{"_id": athlete.ID}
	// CreatedAt is never touched by updates.
	updateDoc := bson.M{
		"$set": bson.M{
			"name":                athlete.Name,
			"goal":                athlete.Goal,
			"trainingDaysPerWeek": athlete.TrainingDaysPerWeek,
			"equipment":           athlete.Equipment,
			"dislikes":            athlete.Dislikes,
			"sessionMinutes":      athlete.SessionMinutes,
			"autoPlan":            athlete.AutoPlan,
			"horizonDays":         athlete.HorizonDays,
			"updatedAt":           time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListAutoPlan retrieves every athlete that opted into scheduled re-planning.
func (r *mongoAthleteRepository) ListAutoPlan(ctx context.Context) ([]domain.Athlete, error) {
	var athletes []domain.Athlete
	filter := bson.M{"autoPlan": true}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &athletes); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return athletes, nil
}

// EnsureAthleteIndexes creates necessary indexes for the athletes collection.
// Call this once during application startup.
func EnsureAthleteIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "autoPlan", Value: 1}}, // Scanned by the scheduled planning job
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
