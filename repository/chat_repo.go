package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/docchat-io/docchat-be/types"
)

type ChatRepo interface {
	CreateChatTurn(ctx context.Context, turn *types.ChatTurn) error
	GetChatTurnsByUser(ctx context.Context, userID string) ([]types.ChatTurn, error)
}

type chatRepo struct {
	collection *mongo.Collection
}

func NewChatRepo(collection *mongo.Collection) ChatRepo {
	return &chatRepo{
		collection: collection,
	}
}

func (r *chatRepo) CreateChatTurn(ctx context.Context, turn *types.ChatTurn) error {
	_, err := r.collection.InsertOne(ctx, turn)
	return err
}

// GetChatTurnsByUser returns the user's turns, newest first.
func (r *chatRepo) GetChatTurnsByUser(ctx context.Context, userID string) ([]types.ChatTurn, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var turns []types.ChatTurn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}
