package worker

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/internal/services/queue"
	"github.com/jwebster45206/arena-engine/pkg/arena"
	"github.com/jwebster45206/arena-engine/pkg/assets"
	"github.com/jwebster45206/arena-engine/pkg/comp"
	queuePkg "github.com/jwebster45206/arena-engine/pkg/queue"
	"github.com/jwebster45206/arena-engine/pkg/screen"
	"github.com/jwebster45206/arena-engine/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testComp = `{
	"name": "Worker Comp",
	"champions": {
		"Ahri":  {"board_position": 3, "items": [], "level": 2, "final_comp": true},
		"Galio": {"board_position": 10, "items": [], "level": 1, "final_comp": false}
	},
	"augments": ["Built Different"],
	"avoid_augments": ["Rolling"]
}`

const testAssets = `{
	"champions": {"Ahri": {"gold": 4, "board_size": 1}, "Galio": {"gold": 5, "board_size": 2}},
	"components": ["BFSword"],
	"full_items": {"Deathblade": ["BFSword", "BFSword"]}
}`

// stubAgent answers reads with fixed values and counts input.
type stubAgent struct {
	health int
	level  int
	clicks int
}

func (s *stubAgent) ReadText(screen.Region, int, string) string { return "" }
func (s *stubAgent) Gold() int { return 0 }
func (s *stubAgent) Level() int { return s.level }
func (s *stubAgent) ShopOffers() []arena.ShopOffer { return nil }
func (s *stubAgent) BenchOccupancy() ([screen.BenchSlots]bool, bool) {
	return [screen.BenchSlots]bool{}, true
}
func (s *stubAgent) FirstEmptyBenchSlot() int { return 0 }
func (s *stubAgent) Health() int { return s.health }
func (s *stubAgent) HeadlinerBitmask() int { return 0 }
func (s *stubAgent) ItemPool() []string { return nil }
func (s *stubAgent) ValidateItemText(string) (string, bool) { return "", false }
func (s *stubAgent) Click(screen.Vec2) { s.clicks++ }
func (s *stubAgent) RightClick(screen.Vec2) {}
func (s *stubAgent) MoveTo(screen.Vec2) {}
func (s *stubAgent) PressAction(screen.Vec2) {}
func (s *stubAgent) Reroll() {}
func (s *stubAgent) BuyXP() {}

type fixture struct {
	mr        *miniredis.Miniredis
	client    *queue.Client
	store     *storage.MockStorage
	agent     *stubAgent
	processor *PhaseProcessor
	pq        *queue.PhaseQueue
	log       *queue.SessionLog
	session   *arena.Session
}

func setup(t *testing.T) *fixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := queue.NewClient("redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	c, err := comp.Parse([]byte(testComp))
	require.NoError(t, err)
	a, err := assets.Parse([]byte(testAssets))
	require.NoError(t, err)

	store := storage.NewMockStorage()
	store.AddComp("worker.json", c)
	store.SetAssets(a)

	s := arena.NewSession(c)
	s.Comp = "worker.json"
	require.NoError(t, store.SaveSession(context.Background(), s))

	agent := &stubAgent{health: 80, level: 4}
	sessionLog := queue.NewSessionLog(client, time.Hour)
	processor := NewPhaseProcessor(store, func(context.Context) Agent { return agent }, logger).
		WithSessionLog(sessionLog).
		WithSleep(func(time.Duration) {})

	return &fixture{
		mr:        mr,
		client:    client,
		store:     store,
		agent:     agent,
		processor: processor,
		pq:        queue.NewPhaseQueue(client),
		log:       sessionLog,
		session:   s,
	}
}

func TestPhaseProcessor_PersistsSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.processor.Process(ctx, queuePkg.NewPhaseRequest(f.session.ID, queuePkg.PhaseNewRound))
	require.NoError(t, err)
	result, err := f.processor.Process(ctx, queuePkg.NewPhaseRequest(f.session.ID, queuePkg.PhaseHealth))
	require.NoError(t, err)

	assert.Equal(t, 1, result["round"])
	assert.Equal(t, 80, result["health"])
	assert.Equal(t, 20, result["damage_taken"])

	loaded, err := f.store.LoadSession(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Round)
	assert.Equal(t, 80, loaded.Health)
	assert.Equal(t, 20, loaded.DamageTaken)

	lines, err := f.log.Recent(ctx, f.session.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"round 1: new_round (board 0/0, health 100)",
		"round 1: health (board 0/0, health 80)",
	}, lines)
}

func TestPhaseProcessor_HealthCarriesAcrossPhases(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.processor.Process(ctx, queuePkg.NewPhaseRequest(f.session.ID, queuePkg.PhaseHealth))
	require.NoError(t, err)

	f.agent.health = 25
	result, err := f.processor.Process(ctx, queuePkg.NewPhaseRequest(f.session.ID, queuePkg.PhaseHealth))
	require.NoError(t, err)

	assert.Equal(t, 25, result["health"])
	assert.Equal(t, 75, result["damage_taken"])
	assert.Equal(t, true, result["aggressive"])
}

func TestPhaseProcessor_ArenaLogsCarrySession(t *testing.T) {
	f := setup(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	processor := NewPhaseProcessor(f.store, func(context.Context) Agent { return f.agent }, logger).
		WithSleep(func(time.Duration) {})

	_, err := processor.Process(context.Background(), queuePkg.NewPhaseRequest(f.session.ID, queuePkg.PhaseNewRound))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"Round started"`)
	assert.Contains(t, buf.String(), `"session_id":"`+f.session.ID.String()+`"`)
}

func TestPhaseProcessor_MissingSession(t *testing.T) {
	f := setup(t)

	_, err := f.processor.Process(context.Background(), queuePkg.NewPhaseRequest(uuid.New(), queuePkg.PhaseMove))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPhaseProcessor_MissingComp(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.session.Comp = "gone.json"
	require.NoError(t, f.store.SaveSession(ctx, f.session))

	_, err := f.processor.Process(ctx, queuePkg.NewPhaseRequest(f.session.ID, queuePkg.PhaseMove))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunPhase_AllPhases(t *testing.T) {
	f := setup(t)
	a, err := f.processor.arenaFor(context.Background(), f.session.ID)
	require.NoError(t, err)

	for _, p := range queuePkg.Phases {
		assert.NoError(t, RunPhase(a, p), "phase %s", p)
	}
	assert.Error(t, RunPhase(a, "dance"))
}

func TestWorker_ProcessesAndReleasesLock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	w := New(f.pq, f.processor, f.client.GetRedisClient(), slog.New(slog.NewTextHandler(io.Discard, nil)), "worker-test")

	require.NoError(t, f.pq.EnqueueRequest(ctx, queuePkg.NewPhaseRequest(f.session.ID, queuePkg.PhaseNewRound)))
	require.NoError(t, w.processNextRequest())

	loaded, err := f.store.LoadSession(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Round)
	assert.False(t, f.mr.Exists(lockKey(f.session.ID)), "lock released")
}

func TestWorker_RequeuesLockedSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	w := New(f.pq, f.processor, f.client.GetRedisClient(), slog.New(slog.NewTextHandler(io.Discard, nil)), "worker-test")

	require.NoError(t, f.mr.Set(lockKey(f.session.ID), "other-worker"))
	require.NoError(t, f.pq.EnqueueRequest(ctx, queuePkg.NewPhaseRequest(f.session.ID, queuePkg.PhaseNewRound)))

	require.NoError(t, w.processNextRequest())

	depth, err := f.pq.RequestQueueDepth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth, "request went back on the queue")

	loaded, err := f.store.LoadSession(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Zero(t, loaded.Round)

	w.releaseSessionLock(f.session.ID)
	owner, err := f.mr.Get(lockKey(f.session.ID))
	require.NoError(t, err)
	assert.Equal(t, "other-worker", owner, "a worker never releases a lock it does not own")
}

func TestWorker_FailedPhaseReturnsError(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	w := New(f.pq, f.processor, f.client.GetRedisClient(), slog.New(slog.NewTextHandler(io.Discard, nil)), "")

	assert.Contains(t, w.ID(), "worker-")
	require.NoError(t, f.pq.EnqueueRequest(ctx, queuePkg.NewPhaseRequest(uuid.New(), queuePkg.PhaseMove)))

	assert.Error(t, w.processNextRequest())
}

func TestWorker_StartStop(t *testing.T) {
	f := setup(t)
	w := New(f.pq, f.processor, f.client.GetRedisClient(), slog.New(slog.NewTextHandler(io.Discard, nil)), "worker-test")

	done := make(chan error, 1)
	go func() { done <- w.Start() }()
	w.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}
}
