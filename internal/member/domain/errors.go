package domain

import errprocess "farmlink_service/pkg/err"

// Domain errors for member
var (
	ErrMemberNotFound     = errprocess.New(errprocess.CodeNotFound, "no member found with given criteria")
	ErrEmailExists        = errprocess.New(errprocess.CodeAlreadyExists, "email already exists")
	ErrInvalidCredentials = errprocess.New(errprocess.CodeUnauthenticated, "invalid email or password")
	ErrInvalidRegister    = errprocess.New(errprocess.CodeInvalidArgument, "invalid registration")
)
