package store

import (
	"context"
	"time"

	"github.com/taskflow/taskflow-backend/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TaskStore is the persistence surface of the task handlers.
type TaskStore interface {
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MongoTaskStore struct {
	collection *mongo.Collection
}

func NewMongoTaskStore(collection *mongo.Collection) *MongoTaskStore {
	return &MongoTaskStore{collection: collection}
}

func (s *MongoTaskStore) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Task, error) {
	cur, err := s.collection.Find(ctx, bson.M{"user": owner})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tasks := make([]model.Task, 0)
	for cur.Next(ctx) {
		var task model.Task
		if err := cur.Decode(&task); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, cur.Err()
}

func (s *MongoTaskStore) Create(ctx context.Context, task *model.Task) error {
	now := time.Now()
	task.ID = primitive.NewObjectID()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := s.collection.InsertOne(ctx, task)
	return err
}

func (s *MongoTaskStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Task, error) {
	var task model.Task
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *MongoTaskStore) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now()
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoTaskStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
