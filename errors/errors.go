package errors

import "fmt"

var (
	ErrInvalidUsername  = fmt.Errorf("username must contain at least 2 characters")
	ErrUnknownRoom      = fmt.Errorf("room does not exist")
	ErrDuplicateRoom    = fmt.Errorf("room already exists")
	ErrMessageNotFound  = fmt.Errorf("message not found in room")
	ErrEmptyMessage     = fmt.Errorf("message cannot be empty")
	ErrMessageTooLong   = fmt.Errorf("message too long")
	ErrDuplicateMessage = fmt.Errorf("duplicate message sent too quickly")
	ErrNoActiveSession  = fmt.Errorf("no active session")
	ErrNoActiveRoom     = fmt.Errorf("no room selected")
)
