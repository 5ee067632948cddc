package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/docchat-io/docchat-be/types"
)

type ChunkRepo interface {
	CreateChunks(ctx context.Context, chunks []types.Chunk) error
}

type chunkRepo struct {
	collection *mongo.Collection
}

func NewChunkRepo(collection *mongo.Collection) ChunkRepo {
	return &chunkRepo{
		collection: collection,
	}
}

func (r *chunkRepo) CreateChunks(ctx context.Context, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]interface{}, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chunk
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
