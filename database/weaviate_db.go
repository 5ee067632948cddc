package database

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/docchat-io/docchat-be/config"
	"github.com/docchat-io/docchat-be/types"
)

const distanceCosine = "cosine"

// The class schema does not carry vector dimensionality for bring-your-own
// vectors, so EnsureClass records it in the class description and reads it
// back when checking for conflicts.
var dimensionPattern = regexp.MustCompile(`dimension (\d+)`)

// WeaviateStore implements VectorIndex on a Weaviate class holding one object
// per chunk, keyed by the chunk's UUID.
type WeaviateStore struct {
	client    *weaviate.Client
	className string
	dimension int
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	clientCfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		clientCfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
	}
	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &WeaviateStore{
		client:    client,
		className: cfg.ClassName,
		dimension: cfg.Dimension,
	}, nil
}

// Dimension returns the vector size the class is provisioned for.
func (s *WeaviateStore) Dimension() int {
	return s.dimension
}

func (s *WeaviateStore) classObject() *models.Class {
	return &models.Class{
		Class:       s.className,
		Description: fmt.Sprintf("Chunk vectors (dimension %d, distance %s)", s.dimension, distanceCosine),
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "text", DataType: []string{"text"}},
		},
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]interface{}{
			"distance": distanceCosine,
		},
	}
}

func (s *WeaviateStore) EnsureClass(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	for _, class := range schema.Classes {
		if class.Class != s.className {
			continue
		}
		if err := s.checkClassCompatible(class); err != nil {
			return err
		}
		return nil
	}

	if err := s.client.Schema().ClassCreator().WithClass(s.classObject()).Do(ctx); err != nil {
		return fmt.Errorf("failed to create class %s: %w", s.className, err)
	}
	log.Printf("Created weaviate class %s (dimension %d)", s.className, s.dimension)
	return nil
}

// checkClassCompatible verifies an existing class matches the configured
// dimensionality and distance metric. A mismatch is fatal: silently replacing
// the class would discard vectors that are expensive to re-embed.
func (s *WeaviateStore) checkClassCompatible(class *models.Class) error {
	if cfg, ok := class.VectorIndexConfig.(map[string]interface{}); ok {
		if distance, ok := cfg["distance"].(string); ok && distance != distanceCosine {
			return fmt.Errorf("%w: class %s uses distance %s, want %s",
				types.ErrCollectionConflict, s.className, distance, distanceCosine)
		}
	}
	if m := dimensionPattern.FindStringSubmatch(class.Description); len(m) == 2 {
		dim, err := strconv.Atoi(m[1])
		if err == nil && dim != s.dimension {
			return fmt.Errorf("%w: class %s has dimension %d, want %d",
				types.ErrCollectionConflict, s.className, dim, s.dimension)
		}
	}
	return nil
}

func (s *WeaviateStore) BatchUpsert(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	batcher := s.client.Batch().ObjectsBatcher()
	for _, rec := range records {
		if len(rec.Vector) != s.dimension {
			return fmt.Errorf("%w: record %s has vector of length %d, class expects %d",
				types.ErrIndexWriteFailure, rec.ID, len(rec.Vector), s.dimension)
		}
		batcher = batcher.WithObjects(&models.Object{
			Class: s.className,
			ID:    strfmt.UUID(rec.ID),
			Properties: map[string]interface{}{
				"documentId": rec.DocumentID,
				"chunkIndex": rec.ChunkIndex,
				"text":       rec.Text,
			},
			Vector: rec.Vector,
		})
	}

	resp, err := batcher.Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexWriteFailure, err)
	}
	// A batch response is per-object; one failed object fails the batch so
	// the caller can retry it whole.
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("%w: object %s: %s",
				types.ErrIndexWriteFailure, obj.ID, obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

func (s *WeaviateStore) SearchByDocument(ctx context.Context, vector []float32, documentID string, limit int) ([]ChunkHit, error) {
	fields := []graphql.Field{
		{Name: "documentId"},
		{Name: "chunkIndex"},
		{Name: "text"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}}},
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueString(documentID)

	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithWhere(where).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if result.Errors != nil && len(result.Errors) > 0 {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var hits []ChunkHit
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return hits, nil
	}
	data, ok := get[s.className].([]interface{})
	if !ok {
		return hits, nil
	}
	for _, item := range data {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		hit := ChunkHit{}
		if v, ok := obj["documentId"].(string); ok {
			hit.DocumentID = v
		}
		if v, ok := obj["chunkIndex"].(float64); ok {
			hit.ChunkIndex = int(v)
		}
		if v, ok := obj["text"].(string); ok {
			hit.Text = v
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			if v, ok := additional["id"].(string); ok {
				hit.ID = v
			}
			if v, ok := additional["distance"].(float64); ok {
				hit.Distance = float32(v)
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
