package logic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapRedditError(t *testing.T) {
	cases := []struct {
		msg  string
		kind ErrorKind
	}{
		{"RATELIMIT: you are doing that too much. try again in 9 minutes.", ErrKindRateLimited},
		{"USER_REQUIRED: Please log in to do that.", ErrKindAuth},
		{"GET https://oauth.reddit.com/api/v1/me: 403 httpStatusCode=403", ErrKindAuth},
		{"POST https://www.reddit.com/api/v1/access_token: invalid_grant", ErrKindAuth},
		{"SUBREDDIT_NOEXIST: that community doesn't exist", ErrKindPolicy},
		{"SUBREDDIT_NOTALLOWED: you aren't allowed to post there", ErrKindPolicy},
		{"NO_TEXT: we need something here", ErrKindPolicy},
		{"NO_LINKS: that community only allows text posts", ErrKindPolicy},
		{"GET https://oauth.reddit.com/comments/x: 404 httpStatusCode=404", ErrKindNotFound},
		{"dial tcp: connection refused", ErrKindTransient},
	}
	for _, c := range cases {
		mapped := mapRedditError(errors.New(c.msg))
		assert.Equal(t, c.kind, ErrorKindOf(mapped), "message: %s", c.msg)
	}
}

func TestMapRedditErrorNil(t *testing.T) {
	assert.Nil(t, mapRedditError(nil))
}

func TestErrorKindOfPlainError(t *testing.T) {
	assert.Equal(t, ErrKindTransient, ErrorKindOf(errors.New("whatever")))
}

func TestRedditErrorUnwrap(t *testing.T) {
	cause := errors.New("RATELIMIT: slow down")
	mapped := mapRedditError(cause)
	assert.ErrorIs(t, mapped, cause)
}
