package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/arenastack/ranking-engine/models"
	"github.com/arenastack/ranking-engine/repositories"
	"github.com/arenastack/ranking-engine/storage"
)

// fakeTxManager runs the function directly; the fakes below are their
// own source of truth so there is nothing to roll back.
type fakeTxManager struct{}

func (f *fakeTxManager) WithinTransaction(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	// rankingStore, when set, backs the no-rankings-yet filter of
	// ListAwaitingFinalization.
	rankingStore *fakeRankingStore
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTournamentRepo) LockByID(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	return nil
}

func (f *fakeTournamentRepo) ListAwaitingFinalization(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range f.tournaments {
		if t.Status != models.StatusCompleted {
			continue
		}
		if f.rankingStore != nil {
			exists, err := f.rankingStore.ExistsByTournament(ctx, exec, t.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}
		}
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeSessionRepo struct {
	sessions []*models.CompletedSession
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.CompletedSession, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repositories.ErrSessionNotFound
}

func (f *fakeSessionRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, phase *models.SessionPhase) ([]*models.CompletedSession, error) {
	var out []*models.CompletedSession
	for _, s := range f.sessions {
		if s.TournamentID != tournamentID || s.Status == models.SessionCanceled {
			continue
		}
		if phase != nil && (s.Phase == nil || *s.Phase != *phase) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeParticipantRepo struct {
	participants []*models.Participant
}

func (f *fakeParticipantRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Participant, error) {
	var out []*models.Participant
	for _, p := range f.participants {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeRankingStore mimics the postgres ranking table including its
// composite uniqueness constraint.
type fakeRankingStore struct {
	mu        sync.Mutex
	rows      []*models.Ranking
	nextID    int
	createErr error // injected failure for constraint-violation paths
}

func (f *fakeRankingStore) ExistsByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.TournamentID == tournamentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRankingStore) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, rankings []*models.Ranking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, ranking := range rankings {
		for _, existing := range f.rows {
			if existing.TournamentID == ranking.TournamentID &&
				existing.ParticipantID == ranking.ParticipantID &&
				existing.ParticipantType == ranking.ParticipantType {
				return fmt.Errorf("insert rejected: %w", repositories.ErrRankingDuplicate)
			}
		}
		f.nextID++
		ranking.ID = f.nextID
		copied := *ranking
		f.rows = append(f.rows, &copied)
	}
	return nil
}

func (f *fakeRankingStore) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Ranking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ranking
	for _, r := range f.rows {
		if r.TournamentID == tournamentID {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (f *fakeRankingStore) DeleteByTournamentID(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.TournamentID != tournamentID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

type fakeRewardRepo struct {
	payouts []*models.RewardPayout
}

func (f *fakeRewardRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.RewardPayout, error) {
	var out []*models.RewardPayout
	for _, p := range f.payouts {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func errFakeDuplicate() error {
	return fmt.Errorf("insert rejected: %w", repositories.ErrRankingDuplicate)
}

type fakeUserRepo struct {
	users map[int]*models.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

// traceTxManager records transaction boundaries so tests can assert the
// ordering of side effects relative to the commit.
type traceTxManager struct {
	trace *[]string
}

func (f *traceTxManager) WithinTransaction(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	*f.trace = append(*f.trace, "tx begin")
	err := fn(nil)
	*f.trace = append(*f.trace, "tx end")
	return err
}

type fakeUploader struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	onUpload func(key string)
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: make(map[string][]byte)}
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.uploads[key] = buf.Bytes()
	f.mu.Unlock()
	if f.onUpload != nil {
		f.onUpload(key)
	}
	return &storage.UploadResult{Key: key}, nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.test/" + key
}
