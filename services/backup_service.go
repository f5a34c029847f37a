package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	database "github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
	"github.com/Dosada05/league-system/storage"
)

var (
	ErrBackupVersionUnsupported = errors.New("unsupported backup version")
	ErrBackupSourceAmbiguous    = errors.New("backup contains several tenants; source_tenant_id is required")
	ErrBackupDestinationMissing = errors.New("no backup destination is configured")
)

type BackupService interface {
	Export(ctx context.Context, scope models.TenantScope) (*models.Backup, error)
	Restore(ctx context.Context, scope models.TenantScope, input RestoreInput) (*RestoreResult, error)
	RunScheduledBackup(ctx context.Context) ([]storage.UploadResult, error)
}

type RestoreInput struct {
	TenantID       *int           `json:"tenant_id,omitempty"`
	SourceTenantID *int           `json:"source_tenant_id,omitempty"`
	Backup         *models.Backup `json:"backup"`
}

type RestoreResult struct {
	TenantID int `json:"tenant_id"`
	Groups   int `json:"groups"`
	Teams    int `json:"teams"`
	Players  int `json:"players"`
	Matches  int `json:"matches"`
	Events   int `json:"events"`
}

type backupService struct {
	db           *sql.DB
	tenantRepo   repositories.TenantRepository
	groupRepo    repositories.GroupRepository
	teamRepo     repositories.TeamRepository
	playerRepo   repositories.PlayerRepository
	matchRepo    repositories.MatchRepository
	eventRepo    repositories.EventRepository
	recalculator *standings.Recalculator
	uploader     storage.FileUploader
	retention    int
	notifier     StandingsNotifier
	logger       *slog.Logger
	now          func() time.Time
}

func NewBackupService(
	db *sql.DB,
	tenantRepo repositories.TenantRepository,
	groupRepo repositories.GroupRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	eventRepo repositories.EventRepository,
	recalculator *standings.Recalculator,
	uploader storage.FileUploader,
	retention int,
	notifier StandingsNotifier,
	logger *slog.Logger,
) BackupService {
	return &backupService{
		db:           db,
		tenantRepo:   tenantRepo,
		groupRepo:    groupRepo,
		teamRepo:     teamRepo,
		playerRepo:   playerRepo,
		matchRepo:    matchRepo,
		eventRepo:    eventRepo,
		recalculator: recalculator,
		uploader:     uploader,
		retention:    retention,
		notifier:     notifierOrNoop(notifier),
		logger:       logger,
		now:          time.Now,
	}
}

// Export loads every table of the scope concurrently into one document.
func (s *backupService) Export(ctx context.Context, scope models.TenantScope) (*models.Backup, error) {
	if !scope.Valid() {
		return nil, ErrForbiddenOperation
	}
	filter := scope.Filter()

	var (
		tenants []*models.Tenant
		groups  []*models.Group
		teams   []*models.Team
		players []*models.Player
		matches []*models.Match
		events  []*models.MatchEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tenants, err = s.tenantRepo.List(gctx, nil, filter)
		return err
	})
	g.Go(func() (err error) {
		groups, err = s.groupRepo.List(gctx, nil, filter)
		return err
	})
	g.Go(func() (err error) {
		teams, err = s.teamRepo.List(gctx, nil, repositories.TeamFilter{TenantID: filter})
		return err
	})
	g.Go(func() (err error) {
		players, err = s.playerRepo.ListByTenant(gctx, nil, filter)
		return err
	})
	g.Go(func() (err error) {
		matches, err = s.matchRepo.List(gctx, nil, repositories.MatchFilter{TenantID: filter})
		return err
	})
	g.Go(func() (err error) {
		events, err = s.eventRepo.ListByTenant(gctx, nil, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to export backup: %w", err)
	}

	return &models.Backup{
		Version:   models.BackupVersion,
		CreatedAt: s.now().UTC(),
		Tenants:   derefAll(tenants),
		Groups:    derefAll(groups),
		Teams:     derefAll(teams),
		Players:   derefAll(players),
		Matches:   derefAll(matches),
		Events:    derefAll(events),
	}, nil
}

func derefAll[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}

// sourceTenant decides which tenant of the document is restored.
func sourceTenant(b *models.Backup, requested *int) (int, error) {
	if requested != nil {
		return *requested, nil
	}
	seen := make(map[int]struct{})
	for _, t := range b.Tenants {
		seen[t.ID] = struct{}{}
	}
	for _, g := range b.Groups {
		seen[g.TenantID] = struct{}{}
	}
	for _, t := range b.Teams {
		seen[t.TenantID] = struct{}{}
	}
	if len(seen) != 1 {
		return 0, ErrBackupSourceAmbiguous
	}
	for id := range seen {
		return id, nil
	}
	return 0, ErrBackupSourceAmbiguous
}

// Restore replaces the league data of one tenant with the content of a backup
// in a single transaction. Ids are reassigned and aggregates are recomputed
// from the restored matches.
func (s *backupService) Restore(ctx context.Context, scope models.TenantScope, input RestoreInput) (*RestoreResult, error) {
	target, err := resolveWriteTenant(scope, input.TenantID)
	if err != nil {
		return nil, err
	}
	b := input.Backup
	if b == nil {
		return nil, validationError("backup document is required")
	}
	if b.Version != models.BackupVersion {
		return nil, fmt.Errorf("%w: %d", ErrBackupVersionUnsupported, b.Version)
	}
	source, err := sourceTenant(b, input.SourceTenantID)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{TenantID: target}
	var restoredTeams []int
	err = database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.tenantRepo.GetByID(ctx, tx, target); err != nil {
			if errors.Is(err, repositories.ErrTenantNotFound) {
				return ErrTenantNotFound
			}
			return err
		}
		if err := s.clearTenant(ctx, tx, target); err != nil {
			return err
		}

		var err error
		restoredTeams, err = s.insertBackup(ctx, tx, b, source, target, result)
		if err != nil {
			return err
		}
		return s.recalculator.RecalculateTeams(ctx, tx, restoredTeams...)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Backup restored", "tenant_id", target, "source_tenant_id", source,
		"teams", result.Teams, "matches", result.Matches, "events", result.Events)
	s.notifier.NotifyStandingsUpdated(target, restoredTeams)
	return result, nil
}

func (s *backupService) clearTenant(ctx context.Context, tx *sql.Tx, tenantID int) error {
	teamIDs, err := s.teamRepo.ListIDsByTenant(ctx, tx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to list teams of tenant %d: %w", tenantID, err)
	}
	for _, id := range teamIDs {
		if err := s.eventRepo.DeleteByTeamMatches(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to clear events of team %d: %w", id, err)
		}
		if err := s.matchRepo.DeleteByTeam(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to clear matches of team %d: %w", id, err)
		}
		if err := s.playerRepo.DeleteByTeam(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to clear players of team %d: %w", id, err)
		}
		if err := s.teamRepo.Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to clear team %d: %w", id, err)
		}
	}

	groups, err := s.groupRepo.List(ctx, tx, &tenantID)
	if err != nil {
		return fmt.Errorf("failed to list groups of tenant %d: %w", tenantID, err)
	}
	for _, g := range groups {
		if err := s.groupRepo.Delete(ctx, tx, g.ID); err != nil {
			return fmt.Errorf("failed to clear group %d: %w", g.ID, err)
		}
	}
	return nil
}

func (s *backupService) insertBackup(ctx context.Context, tx *sql.Tx, b *models.Backup, source, target int, result *RestoreResult) ([]int, error) {
	groupIDs := make(map[int]int)
	teamIDs := make(map[int]int)
	playerIDs := make(map[int]int)
	playerTeams := make(map[int]int)
	matchIDs := make(map[int]int)
	matches := make(map[int]*models.Match)

	for _, g := range b.Groups {
		if g.TenantID != source {
			continue
		}
		group := &models.Group{TenantID: target, Name: g.Name}
		if err := s.groupRepo.Create(ctx, tx, group); err != nil {
			return nil, fmt.Errorf("failed to restore group %q: %w", g.Name, mapGroupRepoError(err))
		}
		groupIDs[g.ID] = group.ID
		result.Groups++
	}

	var restored []int
	for _, t := range b.Teams {
		if t.TenantID != source {
			continue
		}
		team := &models.Team{TenantID: target, Name: t.Name}
		if t.GroupID != nil {
			id, ok := groupIDs[*t.GroupID]
			if !ok {
				return nil, validationError("team %d references unknown group %d", t.ID, *t.GroupID)
			}
			team.GroupID = &id
		}
		if err := s.teamRepo.Create(ctx, tx, team); err != nil {
			return nil, fmt.Errorf("failed to restore team %q: %w", t.Name, mapTeamRepoError(err))
		}
		teamIDs[t.ID] = team.ID
		restored = append(restored, team.ID)
		result.Teams++
	}

	for _, p := range b.Players {
		if p.TenantID != source {
			continue
		}
		teamID, ok := teamIDs[p.TeamID]
		if !ok {
			return nil, validationError("player %d references unknown team %d", p.ID, p.TeamID)
		}
		player := &models.Player{TenantID: target, TeamID: teamID, Name: p.Name, ShirtNumber: p.ShirtNumber}
		if err := s.playerRepo.Create(ctx, tx, player); err != nil {
			return nil, fmt.Errorf("failed to restore player %q: %w", p.Name, err)
		}
		playerIDs[p.ID] = player.ID
		playerTeams[player.ID] = teamID
		result.Players++
	}

	for _, m := range b.Matches {
		if m.TenantID != source {
			continue
		}
		groupID, okGroup := groupIDs[m.GroupID]
		homeID, okHome := teamIDs[m.HomeTeamID]
		awayID, okAway := teamIDs[m.AwayTeamID]
		if !okGroup || !okHome || !okAway {
			return nil, validationError("match %d references unknown group or teams", m.ID)
		}
		if err := standings.ValidateScore(m.HomeScore, m.AwayScore); err != nil {
			return nil, err
		}
		match := &models.Match{
			TenantID:    target,
			GroupID:     groupID,
			HomeTeamID:  homeID,
			AwayTeamID:  awayID,
			Round:       m.Round,
			ScheduledAt: m.ScheduledAt,
			HomeScore:   m.HomeScore,
			AwayScore:   m.AwayScore,
		}
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return nil, fmt.Errorf("failed to restore match %d: %w", m.ID, mapMatchRepoError(err))
		}
		matchIDs[m.ID] = match.ID
		matches[match.ID] = match
		result.Matches++
	}

	scored := make(map[int]bool)
	for _, e := range b.Events {
		if e.TenantID != source {
			continue
		}
		matchID, okMatch := matchIDs[e.MatchID]
		teamID, okTeam := teamIDs[e.TeamID]
		playerID, okPlayer := playerIDs[e.PlayerID]
		if !okMatch || !okTeam || !okPlayer {
			return nil, validationError("event %d references unknown match, team or player", e.ID)
		}
		event := &models.MatchEvent{
			TenantID: target,
			MatchID:  matchID,
			TeamID:   teamID,
			PlayerID: playerID,
			Type:     e.Type,
			Minute:   e.Minute,
		}
		if err := standings.ValidateEvent(matches[matchID], event); err != nil {
			return nil, fmt.Errorf("event %d: %w", e.ID, err)
		}
		if playerTeams[playerID] != teamID {
			return nil, &standings.ValidationError{
				Field:  "player_id",
				Reason: fmt.Sprintf("event %d: player %d does not play for team %d", e.ID, e.PlayerID, e.TeamID),
			}
		}
		if event.Type == models.EventGoal {
			scored[matchID] = true
		}
		if err := s.eventRepo.Create(ctx, tx, event); err != nil {
			if errors.Is(err, repositories.ErrEventDuplicateRedCard) {
				return nil, &standings.ConflictError{Reason: fmt.Sprintf("event %d is a second red card for player %d", e.ID, e.PlayerID)}
			}
			return nil, fmt.Errorf("failed to restore event %d: %w", e.ID, err)
		}
		result.Events++
	}

	// Счёт матча с голами всегда берётся из событий, а не из документа.
	for matchID := range scored {
		counts, err := s.eventRepo.GoalCounts(ctx, tx, matchID)
		if err != nil {
			return nil, fmt.Errorf("failed to count goals of restored match %d: %w", matchID, err)
		}
		home, away := counts.Home, counts.Away
		if err := s.matchRepo.SetScore(ctx, tx, matchID, &home, &away); err != nil {
			return nil, fmt.Errorf("failed to project score of restored match %d: %w", matchID, mapMatchRepoError(err))
		}
	}

	return restored, nil
}

// RunScheduledBackup writes one JSON document per tenant to the configured
// destination.
func (s *backupService) RunScheduledBackup(ctx context.Context) ([]storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrBackupDestinationMissing
	}

	tenants, err := s.tenantRepo.List(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants for backup: %w", err)
	}

	now := s.now()
	results := make([]storage.UploadResult, 0, len(tenants))
	for _, t := range tenants {
		doc, err := s.Export(ctx, models.ForTenant(t.ID))
		if err != nil {
			return results, err
		}
		payload, err := json.Marshal(doc)
		if err != nil {
			return results, fmt.Errorf("failed to encode backup of tenant %d: %w", t.ID, err)
		}

		key := storage.BackupKey(t.ID, now, uuid.New())
		res, err := s.uploader.Upload(ctx, key, storage.BackupContentType, bytes.NewReader(payload))
		if err != nil {
			return results, fmt.Errorf("failed to upload backup of tenant %d: %w", t.ID, err)
		}
		results = append(results, *res)

		if pruned, err := s.pruneBackups(ctx, t.ID); err != nil {
			s.logger.Warn("Failed to prune old backups", "tenant_id", t.ID, "error", err)
		} else if pruned > 0 {
			s.logger.Info("Old backups pruned", "tenant_id", t.ID, "deleted", pruned)
		}
	}

	s.logger.Info("Scheduled backup finished", "tenants", len(results))
	return results, nil
}

// pruneBackups keeps the newest retention backups of the tenant. Zero
// retention keeps everything.
func (s *backupService) pruneBackups(ctx context.Context, tenantID int) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	keys, err := s.uploader.List(ctx, storage.BackupPrefix(tenantID))
	if err != nil {
		return 0, err
	}
	if len(keys) <= s.retention {
		return 0, nil
	}

	stale := keys[:len(keys)-s.retention]
	for i, key := range stale {
		if err := s.uploader.Delete(ctx, key); err != nil {
			return i, err
		}
	}
	return len(stale), nil
}
