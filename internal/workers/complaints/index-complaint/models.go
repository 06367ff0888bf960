// internal/workers/complaints/index-complaint/models.go
package indexcomplaint

import "context"

// Indexer upserts a document by id. An empty id lets the index assign one.
type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) (string, error)
}

type Output struct {
	Index      string `json:"index"`
	DocumentID string `json:"documentId"`
}
