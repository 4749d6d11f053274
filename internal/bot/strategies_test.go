package bot

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/Paulmait/dominauts-sub001/internal/domain"
	"github.com/Paulmait/dominauts-sub001/internal/rng"
)

func testMatch(t *testing.T, v domain.Variant, players int, seed int64) *domain.Match {
	t.Helper()
	cfg := domain.MatchConfig{
		MatchID:     "m-bot-test",
		Variant:     v,
		TargetScore: 100,
		Seed:        seed,
	}
	for i := 0; i < players; i++ {
		cfg.Players = append(cfg.Players, domain.PlayerConfig{
			UserID: fmt.Sprintf("u%d", i+1),
			Kind:   domain.PlayerBotHard,
		})
	}
	m, err := domain.NewMatch(cfg)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	return m
}

func TestSelectMoveIsDeterministicForSeed(t *testing.T) {
	m := testMatch(t, domain.VariantBlock, 2, 11)
	valid := m.ValidMoves(m.Turn)
	if len(valid) == 0 {
		t.Fatalf("opening position should always offer moves")
	}

	brain := &HeuristicBot{Noise: 0.5}
	mv1, ok1 := brain.SelectMove(m, m.Turn, valid, rng.ForAI(11))
	mv2, ok2 := brain.SelectMove(m, m.Turn, valid, rng.ForAI(11))
	if !ok1 || !ok2 {
		t.Fatalf("selection failed: %t %t", ok1, ok2)
	}
	if !reflect.DeepEqual(mv1, mv2) {
		t.Fatalf("same seed picked different moves: %+v vs %+v", mv1, mv2)
	}
}

func TestZeroNoiseIgnoresRandomness(t *testing.T) {
	m := testMatch(t, domain.VariantAllFives, 2, 23)
	valid := m.ValidMoves(m.Turn)
	brain := &HeuristicBot{Noise: 0}

	mv1, _ := brain.SelectMove(m, m.Turn, valid, rng.ForAI(1))
	mv2, _ := brain.SelectMove(m, m.Turn, valid, rng.ForAI(999))
	if !reflect.DeepEqual(mv1, mv2) {
		t.Fatalf("noiseless selection should not depend on the rng stream")
	}
}

func TestSelectMoveReturnsALegalMove(t *testing.T) {
	for _, v := range []domain.Variant{
		domain.VariantBlock,
		domain.VariantAllFives,
		domain.VariantChickenFoot,
		domain.VariantMexicanTrain,
	} {
		m := testMatch(t, v, 2, 37)
		valid := m.ValidMoves(m.Turn)
		brain := &HeuristicBot{Noise: 0.5}
		mv, ok := brain.SelectMove(m, m.Turn, valid, rng.ForAI(37))
		if !ok {
			t.Fatalf("%s: no move selected from %d candidates", v, len(valid))
		}
		found := false
		for _, cand := range valid {
			if reflect.DeepEqual(cand, mv) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("%s: selected move %+v is not in the candidate list", v, mv)
		}
	}
}

func TestSelectMoveEmptyCandidates(t *testing.T) {
	m := testMatch(t, domain.VariantBlock, 2, 5)
	brain := &HeuristicBot{Noise: 0}
	if _, ok := brain.SelectMove(m, m.Turn, nil, rng.ForAI(5)); ok {
		t.Fatalf("no candidates must yield ok=false")
	}
}

func TestNewBrainNoiseLevels(t *testing.T) {
	tests := []struct {
		kind  domain.PlayerKind
		noise float64
	}{
		{domain.PlayerBotEasy, 0.50},
		{domain.PlayerBotMedium, 0.20},
		{domain.PlayerBotHard, 0.05},
	}
	for _, test := range tests {
		brain, err := NewBrain(test.kind)
		if err != nil {
			t.Fatalf("%s: %v", test.kind, err)
		}
		hb, ok := brain.(*HeuristicBot)
		if !ok {
			t.Fatalf("%s: brain type %T", test.kind, brain)
		}
		if hb.Noise != test.noise {
			t.Fatalf("%s: noise = %v, want %v", test.kind, hb.Noise, test.noise)
		}
	}

	if _, err := NewBrain(domain.PlayerHuman); err == nil {
		t.Fatalf("human kind should have no brain")
	}
}

func TestAgentPlaysForItsSeat(t *testing.T) {
	m := testMatch(t, domain.VariantBlock, 2, 77)
	current := m.PlayerAtSeat(m.Turn)

	agent, err := NewAgent(current.UserID, domain.PlayerBotHard, rng.ForAI(77))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	mv, ok := agent.Play(m)
	if !ok {
		t.Fatalf("agent found no move in an opening position")
	}
	if mv.PlayerID != current.UserID {
		t.Fatalf("move player = %s, want %s", mv.PlayerID, current.UserID)
	}
	if err := m.ApplyMove(mv); err != nil {
		t.Fatalf("agent move rejected by the engine: %v", err)
	}
}

func TestTuningFallsBackToBlock(t *testing.T) {
	if got := TuningFor("no_such_variant"); !reflect.DeepEqual(got, TuningFor(domain.VariantBlock)) {
		t.Fatalf("unknown variant should use the block weights")
	}
}

func TestGetBotIdentityFallback(t *testing.T) {
	identity := GetBotIdentity(2)
	if identity.UserID == "" {
		t.Fatalf("fallback identity has no user id")
	}
	if !IsBot(identity.UserID) {
		t.Fatalf("generated identity %q not recognized as bot", identity.UserID)
	}
	if IsBot("user-1") {
		t.Fatalf("human id recognized as bot")
	}
	if identity.Kind() != domain.PlayerBotMedium {
		t.Fatalf("fallback difficulty = %s, want medium", identity.Kind())
	}
}
