package ranking

import (
	"fmt"

	"github.com/arenastack/ranking-engine/models"
)

// NewStrategy is the single dispatch point from tournament configuration
// to ranking algorithm. The switch is closed: an unregistered (format,
// type code) combination fails with ErrUnknownStrategy instead of
// falling through to a wrong algorithm.
func NewStrategy(format models.TournamentFormat, typeCode *models.TournamentTypeCode) (Strategy, error) {
	switch format {
	case models.FormatIndividualRanking:
		return NewIndividualAggregator(), nil
	case models.FormatHeadToHead:
		if typeCode == nil {
			return nil, fmt.Errorf("%w: head-to-head tournament without type code", ErrUnknownStrategy)
		}
		switch *typeCode {
		case models.TypeLeague:
			return NewLeague(), nil
		case models.TypeKnockout:
			return NewKnockout(), nil
		case models.TypeGroupKnockout:
			return NewGroupKnockout(), nil
		}
		return nil, fmt.Errorf("%w: format %q, type %q", ErrUnknownStrategy, format, *typeCode)
	}
	return nil, fmt.Errorf("%w: format %q", ErrUnknownStrategy, format)
}
