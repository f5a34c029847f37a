package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
	"github.com/Dosada05/league-system/storage"
	"github.com/Dosada05/league-system/testutil"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []int
}

func (n *recordingNotifier) NotifyStandingsUpdated(tenantID int, _ []int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, tenantID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type testApp struct {
	tenants   TenantService
	users     UserService
	auth      AuthService
	groups    GroupService
	teams     TeamService
	players   PlayerService
	matches   MatchService
	events    EventService
	standings StandingsService
	backup    BackupService
	notifier  *recordingNotifier
	backupDir string

	conn       *sql.DB
	logger     *slog.Logger
	teamRepo   repositories.TeamRepository
	groupRepo  repositories.GroupRepository
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
	eventRepo  repositories.EventRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	conn := testutil.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tenantRepo := repositories.NewPostgresTenantRepository(conn)
	userRepo := repositories.NewPostgresUserRepository(conn)
	groupRepo := repositories.NewPostgresGroupRepository(conn)
	teamRepo := repositories.NewPostgresTeamRepository(conn)
	playerRepo := repositories.NewPostgresPlayerRepository(conn)
	matchRepo := repositories.NewPostgresMatchRepository(conn)
	eventRepo := repositories.NewPostgresEventRepository(conn)
	recalculator := standings.NewRecalculator(
		repositories.NewStandingRepository(teamRepo, playerRepo, matchRepo, eventRepo), logger)

	backupDir := t.TempDir()
	uploader, err := storage.NewLocalDirUploader(backupDir)
	if err != nil {
		t.Fatalf("NewLocalDirUploader() error = %v", err)
	}

	notifier := &recordingNotifier{}
	return &testApp{
		tenants:   NewTenantService(tenantRepo),
		users:     NewUserService(userRepo),
		auth:      NewAuthService(userRepo, logger),
		groups:    NewGroupService(groupRepo),
		teams:     NewTeamService(conn, teamRepo, groupRepo, playerRepo, recalculator, notifier, logger),
		players:   NewPlayerService(playerRepo, teamRepo),
		matches:   NewMatchService(conn, matchRepo, eventRepo, teamRepo, groupRepo, recalculator, notifier, logger),
		events:    NewEventService(conn, eventRepo, matchRepo, playerRepo, recalculator, notifier),
		standings: NewStandingsService(conn, teamRepo, recalculator, notifier),
		backup: NewBackupService(conn, tenantRepo, groupRepo, teamRepo, playerRepo, matchRepo, eventRepo,
			recalculator, uploader, 2, notifier, logger),
		notifier:  notifier,
		backupDir: backupDir,

		conn:       conn,
		logger:     logger,
		teamRepo:   teamRepo,
		groupRepo:  groupRepo,
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		eventRepo:  eventRepo,
	}
}

// league is one tenant with a group of three teams and one player each.
type league struct {
	scope   models.TenantScope
	tenant  *models.Tenant
	group   *models.Group
	teams   map[string]*models.Team
	players map[string]*models.Player
}

func (a *testApp) seedLeague(t *testing.T, tenantName string) *league {
	t.Helper()
	ctx := context.Background()

	tenant, err := a.tenants.CreateTenant(ctx, models.AllTenants(), CreateTenantInput{Name: tenantName})
	if err != nil {
		t.Fatalf("CreateTenant() error = %v", err)
	}
	scope := models.ForTenant(tenant.ID)

	group, err := a.groups.CreateGroup(ctx, scope, CreateGroupInput{Name: "Group A"})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	l := &league{
		scope:   scope,
		tenant:  tenant,
		group:   group,
		teams:   make(map[string]*models.Team),
		players: make(map[string]*models.Player),
	}
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		team, err := a.teams.CreateTeam(ctx, scope, CreateTeamInput{Name: name, GroupID: &group.ID})
		if err != nil {
			t.Fatalf("CreateTeam(%s) error = %v", name, err)
		}
		player, err := a.players.CreatePlayer(ctx, scope, team.ID, PlayerInput{Name: name + " Striker"})
		if err != nil {
			t.Fatalf("CreatePlayer(%s) error = %v", name, err)
		}
		l.teams[name] = team
		l.players[name] = player
	}
	return l
}

var kickoff = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func (a *testApp) createMatch(t *testing.T, l *league, home, away string) *models.Match {
	t.Helper()
	m, err := a.matches.CreateMatch(context.Background(), l.scope, CreateMatchInput{
		GroupID:     l.group.ID,
		HomeTeamID:  l.teams[home].ID,
		AwayTeamID:  l.teams[away].ID,
		ScheduledAt: kickoff,
	})
	if err != nil {
		t.Fatalf("CreateMatch(%s-%s) error = %v", home, away, err)
	}
	return m
}

func (a *testApp) pointsByName(t *testing.T, scope models.TenantScope) map[string]int {
	t.Helper()
	rows, err := a.standings.GetStandings(context.Background(), scope, nil)
	if err != nil {
		t.Fatalf("GetStandings() error = %v", err)
	}
	points := make(map[string]int, len(rows))
	for _, r := range rows {
		points[r.TeamName] = r.Points
	}
	return points
}

func intPtr(v int) *int { return &v }

func TestLeagueStandingsFollowResults(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	l := app.seedLeague(t, "Sunday League")

	ab := app.createMatch(t, l, "Alpha", "Beta")
	if _, err := app.matches.SetScore(ctx, l.scope, ab.ID, ScoreInput{HomeScore: intPtr(2), AwayScore: intPtr(1)}); err != nil {
		t.Fatalf("SetScore() error = %v", err)
	}

	bg := app.createMatch(t, l, "Beta", "Gamma")
	if _, err := app.events.AddEvent(ctx, l.scope, bg.ID, AddEventInput{
		PlayerID: l.players["Beta"].ID, Type: models.EventGoal, Minute: 30,
	}); err != nil {
		t.Fatalf("AddEvent(goal) error = %v", err)
	}

	got := app.pointsByName(t, l.scope)
	if got["Alpha"] != 3 || got["Beta"] != 3 || got["Gamma"] != 0 {
		t.Fatalf("points after results = %v", got)
	}

	match, err := app.matches.GetMatchByID(ctx, l.scope, bg.ID)
	if err != nil {
		t.Fatalf("GetMatchByID() error = %v", err)
	}
	if match.HomeScore == nil || *match.HomeScore != 1 || *match.AwayScore != 0 {
		t.Fatalf("projected score = %v-%v, want 1-0", match.HomeScore, match.AwayScore)
	}
	if len(match.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(match.Events))
	}

	_, err = app.matches.SetScore(ctx, l.scope, bg.ID, ScoreInput{HomeScore: intPtr(3), AwayScore: intPtr(3)})
	if !errors.Is(err, standings.ErrConflict) {
		t.Fatalf("SetScore() on match with goals error = %v, want ConflictError", err)
	}

	if err := app.events.DeleteEvent(ctx, l.scope, match.Events[0].ID); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}
	got = app.pointsByName(t, l.scope)
	if got["Beta"] != 1 || got["Gamma"] != 1 {
		t.Fatalf("points after goal removal = %v, want Beta 1 Gamma 1", got)
	}

	if err := app.teams.DeleteTeam(ctx, l.scope, l.teams["Alpha"].ID); err != nil {
		t.Fatalf("DeleteTeam() error = %v", err)
	}
	rows, err := app.standings.GetStandings(ctx, l.scope, &l.group.ID)
	if err != nil {
		t.Fatalf("GetStandings() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].TeamName != "Beta" || rows[0].Position != 1 || rows[0].Played != 1 || rows[0].Points != 1 {
		t.Fatalf("first row = %+v", rows[0])
	}

	report, err := app.standings.Audit(ctx, l.scope)
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if !report.Consistent() || report.Checked != 2 {
		t.Fatalf("audit = %+v, want 2 consistent teams", report)
	}
	if app.notifier.count() == 0 {
		t.Fatal("no standings notifications sent")
	}
}

func TestRedCardOncePerPlayer(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	l := app.seedLeague(t, "Cards League")
	m := app.createMatch(t, l, "Alpha", "Beta")

	card := AddEventInput{PlayerID: l.players["Alpha"].ID, Type: models.EventRedCard, Minute: 10}
	if _, err := app.events.AddEvent(ctx, l.scope, m.ID, card); err != nil {
		t.Fatalf("first red card error = %v", err)
	}
	card.Minute = 80
	if _, err := app.events.AddEvent(ctx, l.scope, m.ID, card); !errors.Is(err, standings.ErrConflict) {
		t.Fatalf("second red card error = %v, want ConflictError", err)
	}

	match, err := app.matches.GetMatchByID(ctx, l.scope, m.ID)
	if err != nil {
		t.Fatalf("GetMatchByID() error = %v", err)
	}
	if match.Completed() {
		t.Fatal("cards must not record a score")
	}

	_, err = app.events.AddEvent(ctx, l.scope, m.ID, AddEventInput{
		PlayerID: l.players["Gamma"].ID, Type: models.EventGoal, Minute: 5,
	})
	if !errors.Is(err, standings.ErrValidation) {
		t.Fatalf("goal by player outside the match error = %v, want ValidationError", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	first := app.seedLeague(t, "First")
	second := app.seedLeague(t, "Second")
	m := app.createMatch(t, first, "Alpha", "Beta")

	if _, err := app.matches.GetMatchByID(ctx, second.scope, m.ID); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("cross-tenant GetMatchByID() error = %v, want ErrMatchNotFound", err)
	}
	_, err := app.matches.SetScore(ctx, second.scope, m.ID, ScoreInput{HomeScore: intPtr(1), AwayScore: intPtr(0)})
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("cross-tenant SetScore() error = %v, want ErrMatchNotFound", err)
	}

	_, err = app.matches.CreateMatch(ctx, first.scope, CreateMatchInput{
		GroupID:     first.group.ID,
		HomeTeamID:  first.teams["Alpha"].ID,
		AwayTeamID:  second.teams["Beta"].ID,
		ScheduledAt: kickoff,
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("cross-tenant CreateMatch() error = %v, want ErrValidationFailed", err)
	}

	teams, err := app.teams.ListTeams(ctx, second.scope, nil)
	if err != nil {
		t.Fatalf("ListTeams() error = %v", err)
	}
	for _, team := range teams {
		if team.TenantID != second.tenant.ID {
			t.Fatalf("ListTeams() leaked team %d of tenant %d", team.ID, team.TenantID)
		}
	}
}

func TestGenerateFixturesSchedulesEveryPair(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	l := app.seedLeague(t, "Fixtures League")

	created, err := app.matches.GenerateFixtures(ctx, l.scope, l.group.ID, GenerateFixturesInput{Legs: 2, StartAt: kickoff})
	if err != nil {
		t.Fatalf("GenerateFixtures() error = %v", err)
	}
	if len(created) != 6 {
		t.Fatalf("matches = %d, want 6 for three teams over two legs", len(created))
	}

	_, err = app.matches.GenerateFixtures(ctx, l.scope, l.group.ID, GenerateFixturesInput{Legs: 1, StartAt: kickoff})
	if !errors.Is(err, ErrFixturesExist) {
		t.Fatalf("second GenerateFixtures() error = %v, want ErrFixturesExist", err)
	}
}

func TestBackupRestoreRecomputesStandings(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	source := app.seedLeague(t, "Source")
	target := app.seedLeague(t, "Target")

	ab := app.createMatch(t, source, "Alpha", "Beta")
	if _, err := app.matches.SetScore(ctx, source.scope, ab.ID, ScoreInput{HomeScore: intPtr(0), AwayScore: intPtr(2)}); err != nil {
		t.Fatalf("SetScore() error = %v", err)
	}
	ag := app.createMatch(t, source, "Alpha", "Gamma")
	if _, err := app.events.AddEvent(ctx, source.scope, ag.ID, AddEventInput{
		PlayerID: source.players["Gamma"].ID, Type: models.EventGoal, Minute: 55,
	}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	doc, err := app.backup.Export(ctx, source.scope)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(doc.Tenants) != 1 || len(doc.Teams) != 3 || len(doc.Matches) != 2 || len(doc.Events) != 1 {
		t.Fatalf("export = %d tenants %d teams %d matches %d events", len(doc.Tenants), len(doc.Teams), len(doc.Matches), len(doc.Events))
	}
	for i := range doc.Teams {
		doc.Teams[i].Points = 99
	}

	result, err := app.backup.Restore(ctx, models.AllTenants(), RestoreInput{TenantID: &target.tenant.ID, Backup: doc})
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if result.Teams != 3 || result.Matches != 2 || result.Events != 1 {
		t.Fatalf("restore result = %+v", result)
	}

	want := app.pointsByName(t, source.scope)
	got := app.pointsByName(t, target.scope)
	for name, pts := range want {
		if got[name] != pts {
			t.Fatalf("restored points %s = %d, want %d (all: %v)", name, got[name], pts, got)
		}
	}

	report, err := app.standings.Audit(ctx, target.scope)
	if err != nil || !report.Consistent() {
		t.Fatalf("Audit() after restore = %+v, %v", report, err)
	}

	_, err = app.backup.Restore(ctx, models.AllTenants(), RestoreInput{
		TenantID: &target.tenant.ID,
		Backup:   &models.Backup{Version: models.BackupVersion + 1},
	})
	if !errors.Is(err, ErrBackupVersionUnsupported) {
		t.Fatalf("Restore() unknown version error = %v", err)
	}
}

// failingStore breaks the aggregate write of one team.
type failingStore struct {
	*repositories.StandingRepository
	failTeamID int
}

var errAggregateWrite = errors.New("aggregate write failed")

func (s *failingStore) SetTeamAggregates(ctx context.Context, exec repositories.SQLExecutor, teamID int, agg models.TeamAggregates) error {
	if teamID == s.failTeamID {
		return errAggregateWrite
	}
	return s.StandingRepository.SetTeamAggregates(ctx, exec, teamID, agg)
}

func TestDeleteTeamRollsBackWhenRecalculationFails(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	l := app.seedLeague(t, "Rollback League")

	ab := app.createMatch(t, l, "Alpha", "Beta")
	if _, err := app.matches.SetScore(ctx, l.scope, ab.ID, ScoreInput{HomeScore: intPtr(2), AwayScore: intPtr(1)}); err != nil {
		t.Fatalf("SetScore(Alpha-Beta) error = %v", err)
	}
	ag := app.createMatch(t, l, "Alpha", "Gamma")
	if _, err := app.matches.SetScore(ctx, l.scope, ag.ID, ScoreInput{HomeScore: intPtr(0), AwayScore: intPtr(0)}); err != nil {
		t.Fatalf("SetScore(Alpha-Gamma) error = %v", err)
	}

	alpha, beta, gamma := l.teams["Alpha"], l.teams["Beta"], l.teams["Gamma"]
	before := make(map[int]models.TeamAggregates)
	for _, id := range []int{beta.ID, gamma.ID} {
		agg, err := app.teamRepo.GetAggregates(ctx, nil, id)
		if err != nil {
			t.Fatalf("GetAggregates(%d) error = %v", id, err)
		}
		before[id] = agg
	}

	// Beta is recomputed and written before Gamma fails.
	store := &failingStore{
		StandingRepository: repositories.NewStandingRepository(app.teamRepo, app.playerRepo, app.matchRepo, app.eventRepo),
		failTeamID:         gamma.ID,
	}
	teams := NewTeamService(app.conn, app.teamRepo, app.groupRepo, app.playerRepo,
		standings.NewRecalculator(store, app.logger), app.notifier, app.logger)

	if err := teams.DeleteTeam(ctx, l.scope, alpha.ID); !errors.Is(err, errAggregateWrite) {
		t.Fatalf("DeleteTeam() error = %v, want %v", err, errAggregateWrite)
	}

	if _, err := app.teams.GetTeamByID(ctx, l.scope, alpha.ID); err != nil {
		t.Fatalf("deleted team is gone after rollback: %v", err)
	}
	matches, err := app.matches.ListMatches(ctx, l.scope, MatchListFilter{TeamID: &alpha.ID})
	if err != nil {
		t.Fatalf("ListMatches() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches of Alpha = %d, want 2", len(matches))
	}
	players, err := app.players.ListPlayersByTeam(ctx, l.scope, alpha.ID)
	if err != nil || len(players) != 1 {
		t.Fatalf("players of Alpha = %d, %v, want 1", len(players), err)
	}
	for id, want := range before {
		got, err := app.teamRepo.GetAggregates(ctx, nil, id)
		if err != nil {
			t.Fatalf("GetAggregates(%d) error = %v", id, err)
		}
		if got != want {
			t.Errorf("aggregates of team %d = %+v, want %+v", id, got, want)
		}
	}
}

func TestAuditReportsDriftedAggregates(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	l := app.seedLeague(t, "Audit League")

	ab := app.createMatch(t, l, "Alpha", "Beta")
	if _, err := app.matches.SetScore(ctx, l.scope, ab.ID, ScoreInput{HomeScore: intPtr(3), AwayScore: intPtr(0)}); err != nil {
		t.Fatalf("SetScore() error = %v", err)
	}

	beta := l.teams["Beta"]
	if _, err := app.conn.ExecContext(ctx, `UPDATE teams SET points = 7 WHERE id = $1`, beta.ID); err != nil {
		t.Fatalf("tamper aggregates: %v", err)
	}

	report, err := app.standings.Audit(ctx, l.scope)
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if report.Checked != 3 || len(report.Violations) != 1 {
		t.Fatalf("audit = %+v, want 3 checked and 1 violation", report)
	}
	v := report.Violations[0]
	if v.TeamID != beta.ID || v.Stored.Points != 7 || v.Expected.Points != 0 || v.Expected.GoalsAgainst != 3 {
		t.Fatalf("violation = %+v", v)
	}

	if _, err := app.standings.RecalculateTenant(ctx, l.scope, nil); err != nil {
		t.Fatalf("RecalculateTenant() error = %v", err)
	}
	report, err = app.standings.Audit(ctx, l.scope)
	if err != nil || !report.Consistent() {
		t.Fatalf("Audit() after recalculation = %+v, %v", report, err)
	}
}

func TestRestoreTakesScoreFromGoalEvents(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	source := app.seedLeague(t, "Source")
	target := app.seedLeague(t, "Target")

	ab := app.createMatch(t, source, "Alpha", "Beta")
	if _, err := app.events.AddEvent(ctx, source.scope, ab.ID, AddEventInput{
		PlayerID: source.players["Alpha"].ID, Type: models.EventGoal, Minute: 12,
	}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	doc, err := app.backup.Export(ctx, source.scope)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	doc.Matches[0].HomeScore, doc.Matches[0].AwayScore = intPtr(0), intPtr(5)

	if _, err := app.backup.Restore(ctx, models.AllTenants(), RestoreInput{TenantID: &target.tenant.ID, Backup: doc}); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	restored, err := app.matches.ListMatches(ctx, target.scope, MatchListFilter{})
	if err != nil {
		t.Fatalf("ListMatches() error = %v", err)
	}
	if len(restored) != 1 {
		t.Fatalf("restored matches = %d, want 1", len(restored))
	}
	m := restored[0]
	if m.HomeScore == nil || m.AwayScore == nil || *m.HomeScore != 1 || *m.AwayScore != 0 {
		t.Fatalf("restored score = %v-%v, want 1-0 from goal events", m.HomeScore, m.AwayScore)
	}

	got := app.pointsByName(t, target.scope)
	if got["Alpha"] != 3 || got["Beta"] != 0 {
		t.Fatalf("points after restore = %v, want Alpha 3 Beta 0", got)
	}
}

func TestRestoreRejectsInvalidEvents(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	source := app.seedLeague(t, "Source")
	target := app.seedLeague(t, "Target")

	ab := app.createMatch(t, source, "Alpha", "Beta")
	if _, err := app.events.AddEvent(ctx, source.scope, ab.ID, AddEventInput{
		PlayerID: source.players["Alpha"].ID, Type: models.EventGoal, Minute: 12,
	}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	tests := []struct {
		name  string
		event models.MatchEvent
	}{
		{
			name: "team outside the match",
			event: models.MatchEvent{
				ID: 900, TenantID: source.tenant.ID, MatchID: ab.ID,
				TeamID: source.teams["Gamma"].ID, PlayerID: source.players["Gamma"].ID,
				Type: models.EventRedCard, Minute: 40,
			},
		},
		{
			name: "player of another team",
			event: models.MatchEvent{
				ID: 901, TenantID: source.tenant.ID, MatchID: ab.ID,
				TeamID: source.teams["Alpha"].ID, PlayerID: source.players["Beta"].ID,
				Type: models.EventGoal, Minute: 41,
			},
		},
		{
			name: "minute out of range",
			event: models.MatchEvent{
				ID: 902, TenantID: source.tenant.ID, MatchID: ab.ID,
				TeamID: source.teams["Beta"].ID, PlayerID: source.players["Beta"].ID,
				Type: models.EventYellowCard, Minute: 121,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := app.backup.Export(ctx, source.scope)
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			doc.Events = append(doc.Events, tt.event)

			_, err = app.backup.Restore(ctx, models.AllTenants(), RestoreInput{TenantID: &target.tenant.ID, Backup: doc})
			if !errors.Is(err, standings.ErrValidation) {
				t.Fatalf("Restore() error = %v, want ValidationError", err)
			}

			teams, err := app.teams.ListTeams(ctx, target.scope, nil)
			if err != nil {
				t.Fatalf("ListTeams() error = %v", err)
			}
			if len(teams) != 3 || !containsTeam(teams, target.teams["Alpha"].ID) {
				t.Fatalf("target league changed by a rejected restore: %d teams", len(teams))
			}
		})
	}
}

func containsTeam(teams []*models.Team, id int) bool {
	for _, team := range teams {
		if team.ID == id {
			return true
		}
	}
	return false
}

func TestRunScheduledBackupWritesOneObjectPerTenant(t *testing.T) {
	app := newTestApp(t)
	app.seedLeague(t, "One")
	app.seedLeague(t, "Two")

	uploads, err := app.backup.RunScheduledBackup(context.Background())
	if err != nil {
		t.Fatalf("RunScheduledBackup() error = %v", err)
	}
	if len(uploads) != 2 {
		t.Fatalf("uploads = %d, want 2", len(uploads))
	}
	for _, u := range uploads {
		if _, err := os.Stat(filepath.Join(app.backupDir, filepath.FromSlash(u.Key))); err != nil {
			t.Fatalf("backup object %s missing: %v", u.Key, err)
		}
	}
}

func TestRunScheduledBackupKeepsNewestPerTenant(t *testing.T) {
	app := newTestApp(t)
	one := app.seedLeague(t, "One")
	app.seedLeague(t, "Two")

	svc := app.backup.(*backupService)
	at := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)
	var last []storage.UploadResult
	for run := 0; run < 3; run++ {
		svc.now = func() time.Time { return at.Add(time.Duration(run) * 24 * time.Hour) }
		uploads, err := app.backup.RunScheduledBackup(context.Background())
		if err != nil {
			t.Fatalf("run %d: RunScheduledBackup() error = %v", run, err)
		}
		last = uploads
	}

	dir := filepath.Join(app.backupDir, "backups", fmt.Sprintf("tenant-%d", one.tenant.ID))
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read backup dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("tenant keeps %d backups, want 2", len(entries))
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "20260501T") {
			t.Errorf("oldest backup %s was not pruned", e.Name())
		}
	}
	for _, u := range last {
		if _, err := os.Stat(filepath.Join(app.backupDir, filepath.FromSlash(u.Key))); err != nil {
			t.Errorf("latest backup %s missing: %v", u.Key, err)
		}
	}
}

func TestBootstrapSuperAdminAndLogin(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	created, err := app.auth.EnsureSuperAdmin(ctx, "Root@Example.com", "correct-horse")
	if err != nil || !created {
		t.Fatalf("EnsureSuperAdmin() = %v, %v", created, err)
	}
	created, err = app.auth.EnsureSuperAdmin(ctx, "root@example.com", "correct-horse")
	if err != nil || created {
		t.Fatalf("second EnsureSuperAdmin() = %v, %v, want no-op", created, err)
	}

	user, err := app.auth.Login(ctx, LoginInput{Email: "root@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Role != models.RoleSuperAdmin || user.TenantID != nil {
		t.Fatalf("user = %+v", user)
	}
	if _, err := app.auth.Login(ctx, LoginInput{Email: "root@example.com", Password: "wrong"}); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Fatalf("Login() bad password error = %v", err)
	}

	if err := app.users.DeleteUser(ctx, models.AllTenants(), user.ID); !errors.Is(err, ErrLastSuperAdmin) {
		t.Fatalf("DeleteUser(last super admin) error = %v", err)
	}
}
