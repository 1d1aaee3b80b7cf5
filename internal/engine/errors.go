package engine

import "errors"

// Errors returned by profile and wardrobe mutators.
// Task lifecycle mutators never fail; unknown ids are reported as no-ops.
var (
	ErrInvalidGoal       = errors.New("invalid health goal")
	ErrInvalidPlan       = errors.New("invalid plan")
	ErrInvalidAge        = errors.New("age must be between 1 and 120")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrUnknownItem       = errors.New("unknown shop item")
	ErrInsufficientCoins = errors.New("not enough coins")
	ErrAlreadyOwned      = errors.New("item already owned")
	ErrNotOwned          = errors.New("item not owned")
)
