package errors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid proposal input")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrAlreadyVoted      = errors.New("identity has already voted on this proposal")
	ErrProposalNotActive = errors.New("proposal is not active")
	ErrVotingClosed      = errors.New("voting period has ended")
	ErrVotingOpen        = errors.New("voting period has not ended")
	ErrUnauthorized      = errors.New("resolution capability required")
	ErrEventConflict     = errors.New("event id already recorded with a different payload")
)
