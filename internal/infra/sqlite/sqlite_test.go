package sqlite_test

import (
	"testing"

	"github.com/inertia-app/inertia/internal/domain"
	"github.com/inertia-app/inertia/internal/infra/sqlite"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecord(userID, date string) *domain.DailyRecord {
	return &domain.DailyRecord{
		UserID:            userID,
		Date:              date,
		CheckinType:       domain.CheckinReal,
		TotalRealCheckIns: 1,
		BehaviorGrades:    []domain.BehaviorGrade{{Name: "sleep", Grade: 80}},
		DailyScore:        80,
		MomentumScore:     40,
		MomentumTrend:     domain.TrendStable,
		CurrentStreak:     1,
		LifetimeStreak:    1,
		StreakSavers:      3,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Daily Record Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestPutGetRecord_RoundTrip(t *testing.T) {
	db := testDB(t)

	rec := testRecord("ana", "2026-08-01")
	rec.BehaviorRatings = map[string]string{"sleep": "solid"}
	if err := db.PutRecord(rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	if rec.Version != 1 {
		t.Errorf("expected version 1 after insert, got %d", rec.Version)
	}

	got, err := db.GetRecord("ana", "2026-08-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.DailyScore != 80 || got.MomentumScore != 40 {
		t.Errorf("scores did not survive: %+v", got)
	}
	if got.BehaviorRatings["sleep"] != "solid" {
		t.Errorf("ratings did not survive: %+v", got.BehaviorRatings)
	}
	if len(got.BehaviorGrades) != 1 || got.BehaviorGrades[0].Grade != 80 {
		t.Errorf("grades did not survive: %+v", got.BehaviorGrades)
	}
}

func TestGetRecord_Missing(t *testing.T) {
	db := testDB(t)
	got, err := db.GetRecord("ana", "2026-08-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing record, got %+v", got)
	}
}

func TestPutRecord_VersionConflict(t *testing.T) {
	db := testDB(t)

	rec := testRecord("ana", "2026-08-01")
	if err := db.PutRecord(rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Two readers load version 1; the slower writer must lose.
	a, _ := db.GetRecord("ana", "2026-08-01")
	b, _ := db.GetRecord("ana", "2026-08-01")

	a.MomentumScore = 50
	if err := db.PutRecord(a); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if a.Version != 2 {
		t.Errorf("expected version 2, got %d", a.Version)
	}

	b.MomentumScore = 60
	if err := db.PutRecord(b); err != domain.ErrVersionConflict {
		t.Errorf("expected version conflict, got %v", err)
	}

	got, _ := db.GetRecord("ana", "2026-08-01")
	if got.MomentumScore != 50 {
		t.Errorf("losing write leaked through: momentum %d", got.MomentumScore)
	}
}

func TestPutRecord_DuplicateInsertConflicts(t *testing.T) {
	db := testDB(t)

	if err := db.PutRecord(testRecord("ana", "2026-08-01")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.PutRecord(testRecord("ana", "2026-08-01")); err != domain.ErrVersionConflict {
		t.Errorf("expected conflict on blind re-insert, got %v", err)
	}
}

func TestInsertGapFill_Idempotent(t *testing.T) {
	db := testDB(t)

	gap := &domain.DailyRecord{
		UserID: "ana", Date: "2026-08-02",
		CheckinType: domain.CheckinGapFill, Missed: true,
		TotalRealCheckIns: 5, LifetimeStreak: 5, StreakSavers: 2,
	}
	inserted, err := db.InsertGapFill(gap)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !inserted {
		t.Fatal("expected first insert to land")
	}

	inserted, err = db.InsertGapFill(gap)
	if err != nil {
		t.Fatalf("re-insert: %v", err)
	}
	if inserted {
		t.Error("expected re-insert to be ignored")
	}
}

func TestInsertGapFill_NeverOverwritesReal(t *testing.T) {
	db := testDB(t)

	if err := db.PutRecord(testRecord("ana", "2026-08-01")); err != nil {
		t.Fatalf("insert real: %v", err)
	}

	inserted, err := db.InsertGapFill(&domain.DailyRecord{UserID: "ana", Date: "2026-08-01"})
	if err != nil {
		t.Fatalf("gap fill: %v", err)
	}
	if inserted {
		t.Error("gap fill must not replace a real record")
	}

	got, _ := db.GetRecord("ana", "2026-08-01")
	if !got.IsReal() {
		t.Errorf("real record was clobbered: %+v", got)
	}
}

func TestLastRealRecordBefore_SkipsGapRows(t *testing.T) {
	db := testDB(t)

	real := testRecord("ana", "2026-08-01")
	if err := db.PutRecord(real); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.InsertGapFill(&domain.DailyRecord{UserID: "ana", Date: "2026-08-02"}); err != nil {
		t.Fatalf("gap fill: %v", err)
	}

	got, err := db.LastRealRecordBefore("ana", "2026-08-03", 30)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got == nil || got.Date != "2026-08-01" {
		t.Errorf("expected real record from 2026-08-01, got %+v", got)
	}
}

func TestLastRealRecordBefore_RespectsWindow(t *testing.T) {
	db := testDB(t)

	if err := db.PutRecord(testRecord("ana", "2026-07-01")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := db.LastRealRecordBefore("ana", "2026-08-15", 30)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got != nil {
		t.Errorf("record outside the window must not be found, got %+v", got)
	}
}

func TestLastRealScoresBefore_ChronologicalOrder(t *testing.T) {
	db := testDB(t)

	days := map[string]int{
		"2026-08-01": 10,
		"2026-08-02": 20,
		"2026-08-03": 30,
		"2026-08-04": 40,
		"2026-08-05": 50,
	}
	for date, score := range days {
		rec := testRecord("ana", date)
		rec.DailyScore = score
		if err := db.PutRecord(rec); err != nil {
			t.Fatalf("insert %s: %v", date, err)
		}
	}

	scores, err := db.LastRealScoresBefore("ana", "2026-08-06", 4)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []int{20, 30, 40, 50}
	if len(scores) != len(want) {
		t.Fatalf("expected %d scores, got %v", len(want), scores)
	}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], scores[i])
		}
	}
}

func TestListRecords_NewestFirst(t *testing.T) {
	db := testDB(t)

	for _, date := range []string{"2026-08-01", "2026-08-02", "2026-08-03"} {
		if err := db.PutRecord(testRecord("ana", date)); err != nil {
			t.Fatalf("insert %s: %v", date, err)
		}
	}

	records, err := db.ListRecords("ana", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Date != "2026-08-03" || records[1].Date != "2026-08-02" {
		t.Errorf("wrong order: %s, %s", records[0].Date, records[1].Date)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Milestone State Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestMilestoneState_ZeroForNewUser(t *testing.T) {
	db := testDB(t)

	state, err := db.GetMilestoneState("ana")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if state.HasEverHit80Momentum || state.MaxConsecutiveDaysEver != 0 {
		t.Errorf("expected zero state, got %+v", state)
	}
}

func TestMilestoneState_FlagsNeverRevert(t *testing.T) {
	db := testDB(t)

	state := domain.MilestoneState{
		UserID:                 "ana",
		HasEverHit80Momentum:   true,
		MaxConsecutiveDaysEver: 10,
	}
	if err := db.MergeMilestoneState(state); err != nil {
		t.Fatalf("merge: %v", err)
	}

	// A stale writer with the flag off and a lower high-water mark.
	stale := domain.MilestoneState{UserID: "ana", MaxConsecutiveDaysEver: 4}
	if err := db.MergeMilestoneState(stale); err != nil {
		t.Fatalf("stale merge: %v", err)
	}

	got, err := db.GetMilestoneState("ana")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.HasEverHit80Momentum {
		t.Error("flag reverted")
	}
	if got.MaxConsecutiveDaysEver != 10 {
		t.Errorf("high-water mark regressed to %d", got.MaxConsecutiveDaysEver)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Saver Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestStreakSavers_DefaultBalance(t *testing.T) {
	db := testDB(t)

	remaining, err := db.StreakSavers("ana")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if remaining != domain.MaxStreakSavers {
		t.Errorf("expected %d savers, got %d", domain.MaxStreakSavers, remaining)
	}
}

func TestStreakSavers_SetClampsToRange(t *testing.T) {
	db := testDB(t)

	if err := db.SetStreakSavers("ana", 99); err != nil {
		t.Fatalf("set: %v", err)
	}
	remaining, _ := db.StreakSavers("ana")
	if remaining != domain.MaxStreakSavers {
		t.Errorf("expected clamp to %d, got %d", domain.MaxStreakSavers, remaining)
	}

	if err := db.SetStreakSavers("ana", -1); err != nil {
		t.Fatalf("set: %v", err)
	}
	remaining, _ = db.StreakSavers("ana")
	if remaining != 0 {
		t.Errorf("expected clamp to 0, got %d", remaining)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Exercise Session Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestExerciseSessions(t *testing.T) {
	db := testDB(t)

	if err := db.InsertExerciseSession(&domain.ExerciseSession{
		UserID: "ana", Date: "2026-08-01", Minutes: 15, Source: "manual",
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.InsertExerciseSession(&domain.ExerciseSession{
		UserID: "ana", Date: "2026-08-01", Minutes: 30, Source: "watch",
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	sessions, err := db.SessionsOn("ana", "2026-08-01")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	ok, err := db.HasQualifyingSession("ana", "2026-08-01", 20)
	if err != nil {
		t.Fatalf("qualify: %v", err)
	}
	if !ok {
		t.Error("30-minute session should qualify at a 20-minute bar")
	}

	ok, err = db.HasQualifyingSession("ana", "2026-08-01", 45)
	if err != nil {
		t.Fatalf("qualify: %v", err)
	}
	if ok {
		t.Error("no session meets a 45-minute bar")
	}
}

func TestExerciseSession_ReplaySafeByID(t *testing.T) {
	db := testDB(t)

	s := &domain.ExerciseSession{
		ID: "fixed-id", UserID: "ana", Date: "2026-08-01", Minutes: 20,
	}
	if err := db.InsertExerciseSession(s); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.InsertExerciseSession(s); err != nil {
		t.Fatalf("replay: %v", err)
	}

	sessions, err := db.SessionsOn("ana", "2026-08-01")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("replay duplicated the session: %d rows", len(sessions))
	}
}
