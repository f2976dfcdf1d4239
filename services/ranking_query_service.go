package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/arenastack/ranking-engine/models"
	"github.com/arenastack/ranking-engine/repositories"
	"github.com/arenastack/ranking-engine/storage"
)

// RankingView is one leaderboard row joined with participant details
// and, once rewards have been distributed, the paid amount from the
// external reward ledger.
type RankingView struct {
	Rank            int                    `json:"rank"`
	ParticipantID   int                    `json:"participant_id"`
	ParticipantType models.ParticipantType `json:"participant_type"`
	Name            string                 `json:"name"`
	LogoURL         *string                `json:"logo_url,omitempty"`
	Points          float64                `json:"points"`
	Wins            int                    `json:"wins"`
	Losses          int                    `json:"losses"`
	Draws           int                    `json:"draws"`
	GoalsFor        int                    `json:"goals_for"`
	GoalsAgainst    int                    `json:"goals_against"`
	RewardAmount    *float64               `json:"reward_amount,omitempty"`
}

type TournamentRankingsView struct {
	TournamentID int                     `json:"tournament_id"`
	Status       models.TournamentStatus `json:"status"`
	Count        int                     `json:"count"`
	Rankings     []RankingView           `json:"rankings"`
}

// RankingQueryService is the read-only projection over the ranking
// store. It deliberately receives only the reader interface: the two
// finalization services are the sole holders of write access.
type RankingQueryService interface {
	GetTournamentRankings(ctx context.Context, tournamentID int) (*TournamentRankingsView, error)
}

type rankingQueryService struct {
	tournamentRepo  repositories.TournamentRepository
	rankingReader   repositories.RankingReader
	participantRepo repositories.ParticipantRepository
	rewardRepo      repositories.RewardRepository
	uploader        storage.FileUploader // nil disables logo URLs
}

func NewRankingQueryService(
	tournamentRepo repositories.TournamentRepository,
	rankingReader repositories.RankingReader,
	participantRepo repositories.ParticipantRepository,
	rewardRepo repositories.RewardRepository,
	uploader storage.FileUploader,
) RankingQueryService {
	return &rankingQueryService{
		tournamentRepo:  tournamentRepo,
		rankingReader:   rankingReader,
		participantRepo: participantRepo,
		rewardRepo:      rewardRepo,
		uploader:        uploader,
	}
}

func (s *rankingQueryService) GetTournamentRankings(ctx context.Context, tournamentID int) (*TournamentRankingsView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	var (
		rankings     []*models.Ranking
		participants []*models.Participant
		payouts      []*models.RewardPayout
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rankings, err = s.rankingReader.ListByTournament(gCtx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.ListByTournament(gCtx, nil, tournamentID)
		return err
	})
	if tournament.Status == models.StatusRewardsDistributed {
		g.Go(func() error {
			var err error
			payouts, err = s.rewardRepo.ListByTournament(gCtx, nil, tournamentID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	participantsByID := make(map[int]*models.Participant, len(participants))
	for _, p := range participants {
		participantsByID[p.ID] = p
	}
	rewardsByParticipant := make(map[int]float64, len(payouts))
	for _, payout := range payouts {
		rewardsByParticipant[payout.ParticipantID] = payout.Amount
	}

	view := &TournamentRankingsView{
		TournamentID: tournamentID,
		Status:       tournament.Status,
		Count:        len(rankings),
		Rankings:     make([]RankingView, 0, len(rankings)),
	}
	for _, r := range rankings {
		row := RankingView{
			Rank:            r.Rank,
			ParticipantID:   r.ParticipantID,
			ParticipantType: r.ParticipantType,
			Points:          r.Points,
			Wins:            r.Wins,
			Losses:          r.Losses,
			Draws:           r.Draws,
			GoalsFor:        r.GoalsFor,
			GoalsAgainst:    r.GoalsAgainst,
		}
		if p, ok := participantsByID[r.ParticipantID]; ok {
			row.Name = p.DisplayName()
			if p.LogoKey != nil && s.uploader != nil {
				if url := s.uploader.GetPublicURL(*p.LogoKey); url != "" {
					row.LogoURL = &url
				}
			}
		} else {
			row.Name = fmt.Sprintf("Participant %d", r.ParticipantID)
		}
		if amount, ok := rewardsByParticipant[r.ParticipantID]; ok {
			row.RewardAmount = &amount
		}
		view.Rankings = append(view.Rankings, row)
	}
	return view, nil
}
