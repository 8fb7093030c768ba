package domain

import errprocess "farmlink_service/pkg/err"

// Domain errors for chat
var (
	ErrInvalidIdentifier    = errprocess.New(errprocess.CodeInvalidIdentifier, "invalid user identifier")
	ErrSelfConversation     = errprocess.New(errprocess.CodeInvalidOperation, "cannot open a conversation with yourself")
	ErrConversationNotFound = errprocess.New(errprocess.CodeNotFound, "conversation not found")
	ErrDenied               = errprocess.New(errprocess.CodeDenied, "caller is not a participant of this conversation")
	ErrEmptyMessage         = errprocess.New(errprocess.CodeInvalidArgument, "message text cannot be empty")
	ErrMessageTooLong       = errprocess.New(errprocess.CodeInvalidArgument, "message exceeds maximum length")
	ErrMissingCounterpart   = errprocess.New(errprocess.CodeInvalidArgument, "other user or product is required")
	ErrCreationFailed       = errprocess.New(errprocess.CodeCreationFailed, "conversation must have exactly two participants")
)
