package retrieval

import (
	"context"
	"errors"
	"fmt"

	"ytscribe/internal/youtube"
)

// Problem kinds that do not originate in the YouTube client.
const (
	KindInvalidRequest = "invalid_request"
	KindSaveFailed     = "save_failed"
	KindCanceled       = "canceled"
)

// Problem is the user-facing failure of a retrieval call.
type Problem struct {
	Kind          string
	Message       string
	CorrelationID string
	Err           error
}

func (p *Problem) Error() string { return p.Message }

func (p *Problem) Unwrap() error { return p.Err }

// AsProblem converts err into a *Problem, keeping the error text as the message.
func AsProblem(err error) *Problem {
	if err == nil {
		return nil
	}
	var problem *Problem
	if errors.As(err, &problem) {
		return problem
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Problem{Kind: KindCanceled, Message: fmt.Sprintf("request did not finish: %v", err), Err: err}
	}
	return &Problem{Kind: string(youtube.KindOf(err)), Message: err.Error(), Err: err}
}

func invalidRequest(format string, args ...any) *Problem {
	return &Problem{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}
