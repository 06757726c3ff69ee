package embedding

import (
	"context"
	"errors"
)

// ErrModelUnavailable reports that an embedding backend could not be
// loaded. The combined ranker degrades to lexical scoring on it; the
// semantic-only front-end mode surfaces it to the user instead.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Encoder turns texts into fixed-length embedding vectors. The model
// behind it is an opaque backend; Dimensions is the vector length the
// backend currently produces and is used to invalidate stale cached
// vectors.
type Encoder interface {
	Model() string
	Dimensions() int
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}
