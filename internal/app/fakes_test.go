package app_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/gamenight/internal/domain"
	"github.com/stretchr/testify/require"
)

var (
	errStorage = fmt.Errorf("storage unavailable")
	now        = time.Date(2025, time.March, 4, 19, 30, 0, 0, time.UTC)
)

func nowFunc() time.Time {
	return now
}

type sessionKey struct {
	kind domain.SessionKind
	id   string
}

type fakeSessionRepository struct {
	mu       sync.Mutex
	sessions map[sessionKey]domain.Session

	saves   int
	saveErr error
	getErr  error
}

func newFakeSessionRepository(sessions ...domain.Session) *fakeSessionRepository {
	repository := &fakeSessionRepository{sessions: make(map[sessionKey]domain.Session)}
	for _, session := range sessions {
		repository.sessions[sessionKey{session.Kind, session.ID}] = session.Clone()
	}
	return repository
}

func (r *fakeSessionRepository) CreateSession(ctx context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{session.Kind, session.ID}
	if _, ok := r.sessions[key]; ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionExists, session.ID)
	}
	r.sessions[key] = session.Clone()
	return nil
}

func (r *fakeSessionRepository) GetSession(ctx context.Context, kind domain.SessionKind, id string) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return domain.Session{}, r.getErr
	}
	session, ok := r.sessions[sessionKey{kind, id}]
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return session.Clone(), nil
}

func (r *fakeSessionRepository) SaveSession(ctx context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.sessions[sessionKey{session.Kind, session.ID}] = session.Clone()
	return nil
}

func (r *fakeSessionRepository) DeleteSession(ctx context.Context, kind domain.SessionKind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{kind, id}
	if _, ok := r.sessions[key]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	delete(r.sessions, key)
	return nil
}

func (r *fakeSessionRepository) ListSessions(ctx context.Context, kind domain.SessionKind) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := []domain.Session{}
	for key, session := range r.sessions {
		if key.kind == kind {
			sessions = append(sessions, session.Clone())
		}
	}
	slices.SortFunc(sessions, func(a, b domain.Session) int {
		return strings.Compare(b.Date, a.Date)
	})
	return sessions, nil
}

func (r *fakeSessionRepository) stored(t *testing.T, kind domain.SessionKind, id string) domain.Session {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionKey{kind, id}]
	require.True(t, ok, "session %s/%s should be stored", kind, id)
	return session
}

func (r *fakeSessionRepository) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saves
}

type fakePlayerRepository struct {
	players []domain.Player
	career  map[string]domain.PlayerStats

	listCalls int
	listErr   error
	createErr error
	addErr    error
}

func newFakePlayerRepository(players ...domain.Player) *fakePlayerRepository {
	return &fakePlayerRepository{
		players: players,
		career:  make(map[string]domain.PlayerStats),
	}
}

func (r *fakePlayerRepository) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	players := slices.Clone(r.players)
	for i, player := range players {
		players[i].Career = player.Career.Add(r.career[player.ID])
	}
	return players, nil
}

func (r *fakePlayerRepository) CreatePlayer(ctx context.Context, player domain.Player) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.players = append(r.players, player)
	return nil
}

func (r *fakePlayerRepository) DeletePlayer(ctx context.Context, playerID string) error {
	i := slices.IndexFunc(r.players, func(player domain.Player) bool { return player.ID == playerID })
	if i == -1 {
		return fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, playerID)
	}
	r.players = slices.Delete(r.players, i, i+1)
	return nil
}

func (r *fakePlayerRepository) AddCareerStats(ctx context.Context, deltas map[string]domain.PlayerStats) error {
	if r.addErr != nil {
		return r.addErr
	}
	for playerID, delta := range deltas {
		r.career[playerID] = r.career[playerID].Add(delta)
	}
	return nil
}

type fakeSubscriptionRepository struct {
	subscriptions map[time.Weekday]domain.Subscription
	err           error
}

func newFakeSubscriptionRepository(subscriptions ...domain.Subscription) *fakeSubscriptionRepository {
	repository := &fakeSubscriptionRepository{subscriptions: make(map[time.Weekday]domain.Subscription)}
	for _, subscription := range subscriptions {
		repository.subscriptions[subscription.Weekday] = subscription
	}
	return repository
}

func (r *fakeSubscriptionRepository) GetSubscription(ctx context.Context, weekday time.Weekday) (domain.Subscription, error) {
	if r.err != nil {
		return domain.Subscription{}, r.err
	}
	subscription, ok := r.subscriptions[weekday]
	if !ok {
		return domain.Subscription{}, fmt.Errorf("%w: %s", domain.ErrSubscriptionNotFound, weekday)
	}
	return subscription, nil
}

func (r *fakeSubscriptionRepository) PutSubscription(ctx context.Context, subscription domain.Subscription) error {
	if r.err != nil {
		return r.err
	}
	r.subscriptions[subscription.Weekday] = subscription
	return nil
}

func (r *fakeSubscriptionRepository) DeleteSubscription(ctx context.Context, weekday time.Weekday) error {
	if _, ok := r.subscriptions[weekday]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSubscriptionNotFound, weekday)
	}
	delete(r.subscriptions, weekday)
	return nil
}

func (r *fakeSubscriptionRepository) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	if r.err != nil {
		return nil, r.err
	}
	subscriptions := []domain.Subscription{}
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		if subscription, ok := r.subscriptions[weekday]; ok {
			subscriptions = append(subscriptions, subscription)
		}
	}
	return subscriptions, nil
}

type announcement struct {
	session domain.Session
	stats   map[string]domain.PlayerStats
	names   map[string]string
}

type fakeAnnouncer struct {
	announcements []announcement
	err           error
}

func (a *fakeAnnouncer) AnnounceResults(ctx context.Context, session domain.Session, stats map[string]domain.PlayerStats, names map[string]string) error {
	a.announcements = append(a.announcements, announcement{session: session, stats: stats, names: names})
	return a.err
}
