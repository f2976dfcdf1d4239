package services

import (
	"time"

	"github.com/arenastack/ranking-engine/models"
	"github.com/arenastack/ranking-engine/ranking"
)

// toRankingModels converts strategy output rows into store rows for one
// tournament.
func toRankingModels(tournamentID int, rows []ranking.Row) []*models.Ranking {
	now := time.Now()
	rankings := make([]*models.Ranking, len(rows))
	for i, row := range rows {
		rankings[i] = &models.Ranking{
			TournamentID:    tournamentID,
			ParticipantID:   row.ParticipantID,
			ParticipantType: row.ParticipantType,
			Rank:            row.Rank,
			Points:          row.Points,
			Wins:            row.Wins,
			Losses:          row.Losses,
			Draws:           row.Draws,
			GoalsFor:        row.GoalsFor,
			GoalsAgainst:    row.GoalsAgainst,
			UpdatedAt:       now,
		}
	}
	return rankings
}

// rankingDirection defaults to ascending when the tournament does not
// carry one (head-to-head formats never do).
func rankingDirection(tournament *models.Tournament) models.RankingDirection {
	if tournament.RankingDirection != nil {
		return *tournament.RankingDirection
	}
	return models.DirectionAsc
}

// finalizableStatuses are the lifecycle states from which ranking rows
// may be derived: play is over and rewards are not yet paid.
func isFinalizableStatus(status models.TournamentStatus) bool {
	return status == models.StatusCompleted || status == models.StatusResultsAvailable
}

// selectScoredSessions keeps the sessions a strategy may consume:
// completed, with submitted results.
func selectScoredSessions(sessions []*models.CompletedSession) []*models.CompletedSession {
	scored := make([]*models.CompletedSession, 0, len(sessions))
	for _, session := range sessions {
		if session.Status == models.SessionCompleted && session.HasResults() {
			scored = append(scored, session)
		}
	}
	return scored
}
