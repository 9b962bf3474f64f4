package db

import (
	"context"

	"github.com/taskflow/taskflow-backend/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func Connect(ctx context.Context, mongoURI string) (*mongo.Client, error) {
	log := logger.FromCtx(ctx)

	if mongoURI == "" {
		return nil, &configError{"MONGO_URI is not set"}
	}

	clientOptions := options.Client().ApplyURI(mongoURI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, &connectionError{err}
	}

	log.Info("pinging mongo db")
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, &pingError{err}
	}
	log.Info("mongo db ping successful")
	return client, nil
}

// EnsureIndexes creates the uniqueness indexes the user collection relies on:
// a unique email and sparse unique external provider ids.
func EnsureIndexes(ctx context.Context, users *mongo.Collection) error {
	log := logger.FromCtx(ctx)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "githubId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	if _, err := users.Indexes().CreateMany(ctx, indexes); err != nil {
		return &indexError{err}
	}
	log.Info("user collection indexes ensured", zap.String("collection", users.Name()))
	return nil
}

type configError struct {
	message string
}

func (e *configError) Error() string {
	return e.message
}

type connectionError struct {
	err error
}

func (e *connectionError) Error() string {
	return "Failed to connect to MongoDB: " + e.err.Error()
}

type pingError struct {
	err error
}

func (e *pingError) Error() string {
	return "Failed to ping MongoDB: " + e.err.Error()
}

type indexError struct {
	err error
}

func (e *indexError) Error() string {
	return "Failed to create indexes: " + e.err.Error()
}
