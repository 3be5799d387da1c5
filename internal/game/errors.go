package game

import "errors"

// Common errors
var (
	ErrMissionNotFound      = errors.New("mission not found")
	ErrMissionLocked        = errors.New("mission is not available")
	ErrNoArchetypes         = errors.New("no archetypes defined")
	ErrIncompleteAssessment = errors.New("every assessment question needs a valid answer")
	ErrDialogNotOpen        = errors.New("story dialog is not open")
	ErrInvalidPlayerID      = errors.New("invalid player id")
)
