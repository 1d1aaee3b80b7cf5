package service

import (
	"errors"

	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/platform/apierr"
)

var (
	ErrTaskNotFound         = apierr.NotFound("task_not_found", errors.New("task not found in today's list"))
	ErrTaskAlreadyCompleted = apierr.Conflict("task_already_completed", errors.New("task already completed"))
	ErrTasksPending         = apierr.Conflict("tasks_pending", errors.New("today's tasks are not all done, pass force=true to advance anyway"))
	ErrItemNotEquipped      = apierr.Conflict("item_not_equipped", errors.New("item is not equipped"))
	ErrEmailUnavailable     = apierr.Unavailable("email_unavailable", errors.New("email delivery is not configured"))
)

// engineError maps engine sentinel errors to API errors.
func engineError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrUnknownItem):
		return apierr.NotFound("unknown_item", err)
	case errors.Is(err, engine.ErrInsufficientCoins):
		return apierr.Conflict("insufficient_coins", err)
	case errors.Is(err, engine.ErrAlreadyOwned):
		return apierr.Conflict("already_owned", err)
	case errors.Is(err, engine.ErrNotOwned):
		return apierr.Conflict("not_owned", err)
	case errors.Is(err, engine.ErrInvalidGoal):
		return apierr.BadRequest("invalid_goal", err)
	case errors.Is(err, engine.ErrInvalidPlan):
		return apierr.BadRequest("invalid_plan", err)
	case errors.Is(err, engine.ErrInvalidAge):
		return apierr.BadRequest("invalid_age", err)
	case errors.Is(err, engine.ErrNegativeAmount):
		return apierr.BadRequest("negative_amount", err)
	default:
		return err
	}
}
