package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/lobby-royale/brackets"
	"github.com/Dosada05/lobby-royale/repositories"
)

// Общие категории ошибок, используемые в сервисах и маппинге HTTP.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("requested resource not found")
	ErrConflict          = errors.New("conflict with current state")
	ErrInsufficientTeams = errors.New("not enough registered teams")
	ErrForbidden         = errors.New("operation not allowed for the current user")

	// ErrPlanning is re-exported so handlers only depend on this package.
	ErrPlanning = brackets.ErrPlanning
)

// Конкретные ошибки, каждая относится к одной из категорий выше.
var (
	ErrTournamentNotFound      = fmt.Errorf("%w: tournament not found", ErrNotFound)
	ErrLobbyNotFound           = fmt.Errorf("%w: lobby not found", ErrNotFound)
	ErrDisputeNotFound         = fmt.Errorf("%w: dispute not found", ErrNotFound)
	ErrRoundNotFound           = fmt.Errorf("%w: round not found", ErrNotFound)
	ErrLobbyAlreadyConfirmed   = fmt.Errorf("%w: lobby results already confirmed", ErrConflict)
	ErrDuplicateTeamReport     = fmt.Errorf("%w: duplicate team report", ErrConflict)
	ErrDisputeNotOpen          = fmt.Errorf("%w: dispute is not open", ErrConflict)
	ErrInvalidStatusTransition = fmt.Errorf("%w: invalid tournament status transition", ErrConflict)
	ErrBracketNotAllowed       = fmt.Errorf("%w: bracket cannot be generated in the current tournament status", ErrConflict)
	ErrArchiveDisabled         = fmt.Errorf("%w: bracket archive storage is not configured", ErrConflict)
	ErrUnknownLobbyTeam        = fmt.Errorf("%w: entry references a lobby team that is not a real team of this lobby", ErrValidation)
	ErrInvalidPlacement        = fmt.Errorf("%w: placement must be at least 1", ErrValidation)
	ErrEmptyPlacements         = fmt.Errorf("%w: at least one placement is required", ErrValidation)
	ErrEmptyResolution         = fmt.Errorf("%w: resolution text is required", ErrValidation)
	ErrNotRandomised           = fmt.Errorf("%w: random teams can only be formed for RANDOMISED tournaments", ErrConflict)
)

// mapRepoError translates repository sentinels into service categories and
// leaves everything else untouched.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrLobbyNotFound):
		return ErrLobbyNotFound
	case errors.Is(err, repositories.ErrDisputeNotFound):
		return ErrDisputeNotFound
	case errors.Is(err, repositories.ErrRoundNotFound):
		return ErrRoundNotFound
	case errors.Is(err, repositories.ErrScoreReportConflict):
		return ErrDuplicateTeamReport
	case errors.Is(err, repositories.ErrScoreReportInvalidSeat),
		errors.Is(err, repositories.ErrLobbyTeamInvalidTeam),
		errors.Is(err, repositories.ErrLobbyTeamByeMismatch):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, repositories.ErrLobbyTeamConflict),
		errors.Is(err, repositories.ErrRoundConflict),
		errors.Is(err, repositories.ErrLobbyConflict),
		errors.Is(err, repositories.ErrRegistrationConflict),
		errors.Is(err, repositories.ErrTeamMemberConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
