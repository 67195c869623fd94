package types

import "errors"

// ErrorKind classifies failures the service reports to callers.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindUserNotFound
	KindVoterNotFound
	KindVoteeNotFound
	KindSelfVote
	KindRateLimited
	KindInvalidVoteValue
	KindPreconditionFailed
	KindDuplicateNickname
	KindAuthFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUserNotFound:
		return "user_not_found"
	case KindVoterNotFound:
		return "voter_not_found"
	case KindVoteeNotFound:
		return "votee_not_found"
	case KindSelfVote:
		return "self_vote"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidVoteValue:
		return "invalid_vote_value"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindDuplicateNickname:
		return "duplicate_nickname"
	case KindAuthFailure:
		return "auth_failure"
	default:
		return "unexpected"
	}
}

// DomainError is a failure with a caller-visible kind and message.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

var (
	ErrUserNotFound       = &DomainError{Kind: KindUserNotFound, Message: "User not found"}
	ErrVoterNotFound      = &DomainError{Kind: KindVoterNotFound, Message: "Voter not found or deleted."}
	ErrVoteeNotFound      = &DomainError{Kind: KindVoteeNotFound, Message: "User to vote for not found or deleted."}
	ErrSelfVote           = &DomainError{Kind: KindSelfVote, Message: "You cannot vote for yourself."}
	ErrRateLimited        = &DomainError{Kind: KindRateLimited, Message: "You can only vote once per hour."}
	ErrInvalidVoteValue   = &DomainError{Kind: KindInvalidVoteValue, Message: "Invalid vote value. Vote must be 1 (positive) or -1 (negative)."}
	ErrPreconditionFailed = &DomainError{Kind: KindPreconditionFailed, Message: "Resource has been modified"}
	ErrDuplicateNickname  = &DomainError{Kind: KindDuplicateNickname, Message: "User with this nickname already exists"}
	ErrAuthFailure        = &DomainError{Kind: KindAuthFailure, Message: "Authentication failed"}
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("requested item not found")

// NewValidationError builds a KindValidation error with msg.
func NewValidationError(msg string) error {
	return &DomainError{Kind: KindValidation, Message: msg}
}

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}
