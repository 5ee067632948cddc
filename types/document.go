package types

// Document is one uploaded PDF. Immutable after creation.
type Document struct {
	ID        string `json:"id" bson:"_id"`
	Filename  string `json:"filename" bson:"filename"`
	Country   string `json:"country" bson:"country"`
	CreatedAt int64  `json:"created_at" bson:"created_at"`
}

// Chunk is one overlapping text span of a document, the unit of retrieval.
// ChunkIndex preserves document order; it plays no role in ranking.
type Chunk struct {
	ID         string `json:"id" bson:"_id"`
	DocumentID string `json:"document_id" bson:"document_id"`
	ChunkIndex int    `json:"chunk_index" bson:"chunk_index"`
	Text       string `json:"text" bson:"text"`
}

// ChunkerConfig holds the word-window parameters for splitting text.
type ChunkerConfig struct {
	ChunkWords   int // words per chunk
	OverlapWords int // words shared between consecutive chunks
}

// UploadRequest carries the validated fields of an upload call.
type UploadRequest struct {
	Filename string
	Country  string
}
