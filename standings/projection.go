package standings

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

// ValidateEvent checks an event against the match it is recorded for. Whether
// the player belongs to event.TeamID is checked by the caller, which owns the
// player lookup.
func ValidateEvent(match *models.Match, event *models.MatchEvent) error {
	if !event.Type.Valid() {
		return invalid("type", "unknown event type %q", event.Type)
	}
	if event.Minute < models.MinEventMinute || event.Minute > models.MaxEventMinute {
		return invalid("minute", "must be between %d and %d", models.MinEventMinute, models.MaxEventMinute)
	}
	if event.MatchID != match.ID {
		return invalid("match_id", "event belongs to match %d, not %d", event.MatchID, match.ID)
	}
	if event.TenantID != match.TenantID {
		return invalid("tenant_id", "event and match belong to different tenants")
	}
	if !match.Involves(event.TeamID) {
		return invalid("team_id", "team %d does not play in match %d", event.TeamID, match.ID)
	}
	if event.PlayerID <= 0 {
		return invalid("player_id", "is required")
	}
	return nil
}

// AddEvent records an event. Goals re-project the match score and recompute
// both teams; cards and assists leave standings untouched.
func (r *Recalculator) AddEvent(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, event *models.MatchEvent) error {
	if err := ValidateEvent(match, event); err != nil {
		return err
	}

	if event.Type == models.EventRedCard {
		count, err := r.store.CountRedCards(ctx, exec, match.ID, event.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to count red cards for player %d: %w", event.PlayerID, err)
		}
		if count > 0 {
			return conflict("player %d already has a red card in match %d", event.PlayerID, match.ID)
		}
	}

	if err := r.store.CreateEvent(ctx, exec, event); err != nil {
		if errors.Is(err, repositories.ErrEventDuplicateRedCard) {
			return conflict("player %d already has a red card in match %d", event.PlayerID, match.ID)
		}
		return fmt.Errorf("failed to create event for match %d: %w", match.ID, err)
	}

	if event.Type != models.EventGoal {
		return nil
	}
	return r.projectScore(ctx, exec, match)
}

// RemoveEvent deletes an event, re-projecting the score when it was a goal.
func (r *Recalculator) RemoveEvent(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, event *models.MatchEvent) error {
	if event.MatchID != match.ID {
		return invalid("match_id", "event belongs to match %d, not %d", event.MatchID, match.ID)
	}
	if err := r.store.DeleteEvent(ctx, exec, event.ID); err != nil {
		return fmt.Errorf("failed to delete event %d: %w", event.ID, err)
	}

	if event.Type != models.EventGoal {
		return nil
	}
	return r.projectScore(ctx, exec, match)
}

// projectScore rewrites the match score as the per-side goal event counts.
func (r *Recalculator) projectScore(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	counts, err := r.store.GoalCountsForMatch(ctx, exec, match.ID)
	if err != nil {
		return fmt.Errorf("failed to count goals for match %d: %w", match.ID, err)
	}

	home, away := counts.Home, counts.Away
	if err := r.store.SetMatchScore(ctx, exec, match.ID, &home, &away); err != nil {
		return fmt.Errorf("failed to project score for match %d: %w", match.ID, err)
	}
	match.HomeScore, match.AwayScore = &home, &away

	return r.ScoreChanged(ctx, exec, match)
}
