package logic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

type ErrorKind int

const (
	// ErrKindTransient: network hiccups, 5xx; worth retrying later
	ErrKindTransient ErrorKind = iota
	// ErrKindRateLimited: reddit told us to slow down
	ErrKindRateLimited
	// ErrKindAuth: bad credentials, suspended or shadowbanned account
	ErrKindAuth
	// ErrKindPolicy: the item itself is unpostable; retrying cannot help
	ErrKindPolicy
	// ErrKindNotFound: the reddit item no longer exists
	ErrKindNotFound
)

// RedditError wraps an API failure with a coarse classification that callers
// use to decide between retrying, failing the item, or demoting the account.
type RedditError struct {
	Kind  ErrorKind
	cause error
}

func (e *RedditError) Error() string {
	return fmt.Sprintf("reddit: %v", e.cause)
}

func (e *RedditError) Unwrap() error {
	return e.cause
}

func ErrorKindOf(err error) ErrorKind {
	var re *RedditError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ErrKindTransient
}

// API error codes that mark a submission as permanently unpostable.
var policyCodes = []string{
	"SUBREDDIT_NOTALLOWED",
	"SUBREDDIT_NOEXIST",
	"NO_TEXT",
	"NO_LINKS",
	"NO_SELFS",
	"THREAD_LOCKED",
	"TOO_OLD",
}

func mapRedditError(err error) error {
	if err == nil {
		return nil
	}

	var rlErr *reddit.RateLimitError
	if errors.As(err, &rlErr) {
		return &RedditError{Kind: ErrKindRateLimited, cause: err}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "RATELIMIT"):
		return &RedditError{Kind: ErrKindRateLimited, cause: err}
	case strings.Contains(msg, "USER_REQUIRED"),
		strings.Contains(msg, "httpStatusCode=401"),
		strings.Contains(msg, "httpStatusCode=403"),
		strings.Contains(msg, "invalid_grant"):
		return &RedditError{Kind: ErrKindAuth, cause: err}
	case strings.Contains(msg, "httpStatusCode=404"):
		return &RedditError{Kind: ErrKindNotFound, cause: err}
	}
	for _, code := range policyCodes {
		if strings.Contains(msg, code) {
			return &RedditError{Kind: ErrKindPolicy, cause: err}
		}
	}
	return &RedditError{Kind: ErrKindTransient, cause: err}
}
