package workflow

import "errors"

// Engine refusal reasons. Everything here is a denied action, never a
// fatal condition: no state is mutated when one of these is returned.
var (
	ErrNotFound         = errors.New("invoice not found")
	ErrNotPermitted     = errors.New("transition not permitted for this role and status")
	ErrInvalidInvoice   = errors.New("invoice has an invalid file name and is display-only")
	ErrCommentRequired  = errors.New("a rejection requires a non-empty comment")
	ErrEmptyComment     = errors.New("comment text must not be empty")
	ErrBadConfirmSecret = errors.New("confirmation secret does not match")
	ErrRefTooLong       = errors.New("procurement reference exceeds 14 characters")
	ErrUnknownStatus    = errors.New("unknown target status")
)
