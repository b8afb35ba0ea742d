package errors

import "fmt"

var (
	ErrClubNotFound    = fmt.Errorf("club not found")
	ErrMessageNotFound = fmt.Errorf("message not found")
	ErrActorNotFound   = fmt.Errorf("actor not found")
	ErrForbidden       = fmt.Errorf("membership required")
	ErrUnauthorized    = fmt.Errorf("authentication required")
	ErrWorkerPanic     = fmt.Errorf("worker panic")
)
