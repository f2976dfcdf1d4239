package models

import (
	"encoding/json"
	"time"
)

// SessionPhase marks which stage of a phased tournament a session belongs
// to. Non-phased formats (plain league, knockout, individual ranking)
// leave it empty.
type SessionPhase string

const (
	PhaseGroupStage SessionPhase = "group_stage"
	PhaseKnockout   SessionPhase = "knockout"
)

type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCanceled   SessionStatus = "canceled"
)

// MatchResult is one head-to-head outcome inside a session. WinnerID nil
// means the match was drawn. Round numbers order knockout brackets: the
// highest round is the final.
type MatchResult struct {
	P1ID              int  `json:"p1_id"`
	P2ID              int  `json:"p2_id"`
	P1Score           int  `json:"p1_score"`
	P2Score           int  `json:"p2_score"`
	WinnerID          *int `json:"winner_id,omitempty"`
	Round             int  `json:"round"`
	ThirdPlacePlayoff bool `json:"third_place_playoff,omitempty"`
}

// SessionResults holds a session's raw outcomes in one of two shapes:
// Matches for head-to-head tournaments, Rounds for individual-ranking
// tournaments (round key -> participant id -> measured value).
type SessionResults struct {
	Matches []MatchResult              `json:"matches,omitempty"`
	Rounds  map[string]map[int]float64 `json:"rounds,omitempty"`
}

// CompletedSession is read-only to this engine: results are ingested
// upstream, the engine only consumes them.
type CompletedSession struct {
	ID           int            `json:"id" db:"id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	Phase        *SessionPhase  `json:"phase,omitempty" db:"phase"`
	Status       SessionStatus  `json:"status" db:"status"`
	Results      SessionResults `json:"results" db:"-"`
	ResultsJSON  *string        `json:"-" db:"results_json"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// DecodeResults unmarshals ResultsJSON into Results. A session without a
// results payload decodes to the zero value, which HasResults reports as
// missing.
func (s *CompletedSession) DecodeResults() error {
	if s.ResultsJSON == nil || *s.ResultsJSON == "" {
		s.Results = SessionResults{}
		return nil
	}
	return json.Unmarshal([]byte(*s.ResultsJSON), &s.Results)
}

// HasResults reports whether the session carries any submitted outcome.
func (s *CompletedSession) HasResults() bool {
	return len(s.Results.Matches) > 0 || len(s.Results.Rounds) > 0
}
