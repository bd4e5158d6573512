package ports

import (
	"context"

	"agrosim/domain/corpus"
)

// CorpusSource loads the historical corpus for one geography. Implementations
// exist for tabular files (CSV/XLSX) and for Postgres. Load is called once at
// process start; a failure here is fatal, never a per-request error.
type CorpusSource interface {
	Load(ctx context.Context) (*corpus.Corpus, error)
}
