package scoringintegrationtests

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
	"github.com/spicygolf/spicy-sub003/integration_tests/testutils"
)

func TestRepositorySnapshotRoundTrip(t *testing.T) {
	deps := SetupTestScoringService(t)
	gen := testutils.NewTestDataGenerator(42)

	tests := []struct {
		name  string
		shape testutils.GameShape
	}{
		{name: "teams rotating", shape: testutils.DefaultShape()},
		{name: "fixed teams", shape: testutils.GameShape{Holes: 18, Players: 4, TeamSize: 2, PlayedHoles: 18}},
		{name: "individual", shape: testutils.GameShape{Holes: 9, Players: 3, PlayedHoles: 5}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := gen.GenerateGame(tt.shape)
			snap.GameID = snap.GameID + "-" + string(rune('a'+i))

			if err := deps.Repo.SaveSnapshot(deps.Ctx, nil, &snap); err != nil {
				t.Fatalf("SaveSnapshot() error = %v", err)
			}
			got, err := deps.Repo.GetSnapshot(deps.Ctx, nil, snap.GameID)
			if err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if diff := cmp.Diff(&snap, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepositorySaveSnapshotReplacesPlayers(t *testing.T) {
	deps := SetupTestScoringService(t)
	snap := testutils.NewTestDataGenerator(7).GenerateGame(testutils.DefaultShape())

	if err := deps.Repo.SaveSnapshot(deps.Ctx, nil, &snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	snap.Name = "Renamed"
	snap.Players = snap.Players[:2]
	snap.Teams = nil
	if err := deps.Repo.SaveSnapshot(deps.Ctx, nil, &snap); err != nil {
		t.Fatalf("SaveSnapshot() second call error = %v", err)
	}

	got, err := deps.Repo.GetSnapshot(deps.Ctx, nil, snap.GameID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("Name = %q, want %q", got.Name, "Renamed")
	}
	if len(got.Players) != 2 {
		t.Errorf("len(Players) = %d, want 2", len(got.Players))
	}
	if len(got.Teams) != 0 {
		t.Errorf("Teams = %v, want none", got.Teams)
	}
}

func TestRepositoryScoreboardAndDelete(t *testing.T) {
	deps := SetupTestScoringService(t)
	snap := testutils.NewTestDataGenerator(11).GenerateGame(testutils.DefaultShape())

	if err := deps.Repo.SaveSnapshot(deps.Ctx, nil, &snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	board, err := scoringdomain.Score(snap)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	stored := &scoringdb.StoredScoreboard{
		GameID:       snap.GameID,
		Fingerprint:  board.Fingerprint(),
		Scoreboard:   board,
		ConfigErrors: []string{"unknown option \"sandie\""},
	}
	if err := deps.Repo.SaveScoreboard(deps.Ctx, nil, stored); err != nil {
		t.Fatalf("SaveScoreboard() error = %v", err)
	}

	got, err := deps.Repo.GetScoreboard(deps.Ctx, nil, snap.GameID)
	if err != nil {
		t.Fatalf("GetScoreboard() error = %v", err)
	}
	if got.Fingerprint != stored.Fingerprint {
		t.Errorf("Fingerprint = %q, want %q", got.Fingerprint, stored.Fingerprint)
	}
	if got.Scoreboard.Fingerprint() != stored.Fingerprint {
		t.Error("stored scoreboard does not reproduce its fingerprint")
	}
	if diff := cmp.Diff(stored.ConfigErrors, got.ConfigErrors); diff != "" {
		t.Errorf("ConfigErrors mismatch (-want +got):\n%s", diff)
	}

	games, err := deps.Repo.ListGames(deps.Ctx, nil, 10)
	if err != nil {
		t.Fatalf("ListGames() error = %v", err)
	}
	if len(games) != 1 || games[0].ID != snap.GameID || games[0].Players != len(snap.Players) || games[0].Fingerprint != stored.Fingerprint {
		t.Errorf("ListGames() = %+v", games)
	}

	if err := deps.Repo.DeleteGame(deps.Ctx, nil, snap.GameID); err != nil {
		t.Fatalf("DeleteGame() error = %v", err)
	}
	if _, err := deps.Repo.GetSnapshot(deps.Ctx, nil, snap.GameID); !errors.Is(err, scoringdb.ErrNotFound) {
		t.Errorf("GetSnapshot() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := deps.Repo.GetScoreboard(deps.Ctx, nil, snap.GameID); !errors.Is(err, scoringdb.ErrNotFound) {
		t.Errorf("GetScoreboard() after delete error = %v, want ErrNotFound", err)
	}
	if err := deps.Repo.DeleteGame(deps.Ctx, nil, snap.GameID); !errors.Is(err, scoringdb.ErrNotFound) {
		t.Errorf("DeleteGame() twice error = %v, want ErrNotFound", err)
	}
}
