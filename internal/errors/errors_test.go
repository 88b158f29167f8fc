package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "document not found",
			expected: "NOT_FOUND: document not found",
		},
		{
			name:     "remote rejection",
			code:     errors.CodeRemoteRejected,
			message:  "Invalid cobalt token",
			expected: "REMOTE_REJECTED: Invalid cobalt token",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Assert().Equal(tc.expected, err.Error())
			s.Assert().Equal(tc.code, err.Code)
			s.Assert().Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(baseErr, "failed to reach proxy")

	s.Assert().Equal(errors.CodeInternal, wrapped.Code)
	s.Assert().Equal("failed to reach proxy", wrapped.Message)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCodeAndMeta() {
	baseErr := errors.NotFound("document not found").WithMeta("collection", "inventory")
	wrapped := errors.Wrap(baseErr, "lookup failed")

	s.Assert().Equal(errors.CodeNotFound, wrapped.Code)
	s.Assert().Equal("inventory", errors.GetMeta(wrapped)["collection"])
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	baseErr := fmt.Errorf("dial tcp: timeout")
	wrapped := errors.WrapWithCode(baseErr, errors.CodeUnavailable, "proxy unavailable")

	s.Assert().Equal(errors.CodeUnavailable, wrapped.Code)
	s.Assert().Equal("proxy unavailable", wrapped.Message)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Assert().Nil(errors.Wrap(nil, "should be nil"))
	s.Assert().Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestErrorIs() {
	err1 := errors.NotFound("test")
	err2 := errors.NotFound("other")
	err3 := errors.InvalidArgument("test")

	s.Assert().True(err1.Is(err2))
	s.Assert().False(err1.Is(err3))
	s.Assert().True(errors.Is(errors.Wrap(err1, "wrapped"), err2))
}

func (s *ErrorsTestSuite) TestGetMessageKeepsRemoteTextVerbatim() {
	err := errors.RemoteRejected("You must be a Patreon supporter to use this feature")
	wrapped := errors.Wrap(err, "fetch failed")

	s.Assert().Equal("You must be a Patreon supporter to use this feature", errors.GetMessage(err))
	s.Assert().True(errors.IsRemoteRejected(wrapped))
	s.Assert().Equal("standard error", errors.GetMessage(fmt.Errorf("standard error")))
}

func (s *ErrorsTestSuite) TestRunFatal() {
	testCases := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"unavailable", errors.Unavailablef("proxy down"), true},
		{"unauthenticated", errors.Unauthenticated("bad token"), true},
		{"remote rejected", errors.RemoteRejected("nope"), true},
		{"already exists", errors.AlreadyExists("dup"), false},
		{"internal", errors.Internal("boom"), false},
		{"plain error", fmt.Errorf("plain"), false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Assert().Equal(tc.fatal, errors.IsRunFatal(tc.err))
		})
	}
}

func (s *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     errors.Code
		expected int
	}{
		{errors.CodeOK, 200},
		{errors.CodeNotFound, 404},
		{errors.CodeAlreadyExists, 409},
		{errors.CodeUnauthenticated, 401},
		{errors.CodeUnavailable, 503},
		{errors.CodeRemoteRejected, 502},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Assert().Equal(tc.expected, tc.code.HTTPStatus())
		})
	}
}
