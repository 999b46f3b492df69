package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is the cause reported when no provider is configured.
var ErrNotConfigured = errors.New("no language model provider is configured")

type unavailableProvider struct {
	err error
}

// Unavailable returns a Provider whose every call fails with
// ErrProviderUnavailable wrapping err. The server runs with it when no
// model is configured: chat answers with a diagnostic and quizzes fail.
func Unavailable(err error) Provider {
	if err == nil {
		err = ErrNotConfigured
	}
	return &unavailableProvider{err: err}
}

func (u *unavailableProvider) Generate(_ context.Context, _ Request) (*Response, error) {
	return nil, &ErrProviderUnavailable{Err: u.err}
}

func (u *unavailableProvider) ModelID() string { return "unavailable" }
