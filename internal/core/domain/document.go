package domain

// FileID identifies a document stored in the backing inference runtime.
// IDs are assigned by the runtime on upload and are opaque to this program.
type FileID string

// Document is the text content of an uploaded file.
// Content is immutable once stored; it is re-fetched by ID when a matched
// chunk must be materialised for retrieval output.
type Document struct {
	// ID is the runtime-assigned file identifier.
	ID FileID

	// Name is the original file name, for display only.
	Name string

	// Content is the full document text.
	Content string
}

// EmbeddingRecord is one indexed chunk: the embedding vector for the chunk
// at ordinal position Part within the document identified by FileID.
// The chunk text itself is not stored; it is reproduced by re-chunking the
// document with the owning group's PartSize.
type EmbeddingRecord struct {
	// FileID is the source document.
	FileID FileID `json:"FileID"`

	// Part is the zero-based chunk index within the document.
	Part int `json:"Part"`

	// Embedding is the vector produced for the chunk's text.
	Embedding []float32 `json:"Embedding"`
}

// Group is a named, independently persisted retrieval index.
// All records in a group were chunked with the same PartSize, so a chunk can
// be re-materialised deterministically from (FileID, Part).
type Group struct {
	// Name addresses the group's storage unit. Not persisted inside it.
	Name string `json:"-"`

	// PartSize is the chunk size used when records were created.
	// Fixed by the first writer.
	PartSize int `json:"PartSize"`

	// Embeddings holds records in append order.
	Embeddings []EmbeddingRecord `json:"Embeddings"`
}

// NewGroup creates an empty group with the part size chosen by its first
// writer.
func NewGroup(name string, partSize int) Group {
	return Group{Name: name, PartSize: partSize}
}

// Append returns a copy of the group with the record added.
// Pure in-memory operation; the caller must save the group to persist it.
func (g Group) Append(rec EmbeddingRecord) Group {
	embeddings := make([]EmbeddingRecord, len(g.Embeddings), len(g.Embeddings)+1)
	copy(embeddings, g.Embeddings)
	g.Embeddings = append(embeddings, rec)
	return g
}

// Len returns the number of indexed records.
func (g Group) Len() int {
	return len(g.Embeddings)
}
