package ports

import (
	"context"

	"datastory/domain/story"
)

// Narrator turns a rendered prompt into a validated narrative. The call
// blocks until the narrative is ready, the attempt budget is exhausted,
// or ctx is cancelled; it never returns a partially populated object.
type Narrator interface {
	Narrate(ctx context.Context, prompt string) (*story.Narrative, error)
}
