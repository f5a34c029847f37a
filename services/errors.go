package services

import "errors"

// Общие ошибки сервисного слоя; маппинг в HTTP живёт в handlers.mapServiceErrorToHTTP.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrTenantRequired   = errors.New("tenant_id is required for this operation")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	ErrTenantNotFound = errors.New("tenant not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrEventNotFound  = errors.New("match event not found")

	ErrTenantNameConflict = errors.New("tenant name is already in use")
	ErrTenantInUse        = errors.New("tenant still owns data and cannot be deleted")
	ErrUserEmailConflict  = errors.New("email address is already in use")
	ErrGroupNameConflict  = errors.New("group name is already in use")
	ErrGroupInUse         = errors.New("group is still referenced by teams or matches")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrTeamHasMatches     = errors.New("team with matches cannot change group")
	ErrPlayerInUse        = errors.New("player is referenced by match events")
	ErrLastSuperAdmin     = errors.New("the last super admin cannot be deleted")
)
