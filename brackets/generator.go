package brackets

import (
	"context"
	"math/rand"

	"github.com/arman-dev/playoff-system/models"
)

// GenerateBracketParams carries everything a generator needs. Rand is the
// shuffle source for unseeded fields; pass a fixed-seed source in tests to get
// deterministic bracket shapes. A nil Rand falls back to a time-seeded one.
type GenerateBracketParams struct {
	Tournament   *models.Tournament
	Participants []*models.Participant
	Rand         *rand.Rand
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Blueprint, error)

	GetName() models.BracketType
}
