package int

import (
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"

	"hackreg-backend/errs"
)

type MatchBackendErrorMatcher struct {
	Error error
}

func (matcher *MatchBackendErrorMatcher) Match(actual interface{}) (success bool, err error) {
	resp, ok := actual.(*resty.Response)
	if !ok {
		return false, fmt.Errorf("MatchBackendError matcher requires a *resty.Response, Got:\n%s", format.Object(actual, 1))
	}

	if resp.StatusCode() != errs.StatusCode(matcher.Error) {
		return false, nil
	}

	return strings.Contains(string(resp.Body()), matcher.Error.Error()), nil
}

func (matcher *MatchBackendErrorMatcher) FailureMessage(actual interface{}) (message string) {
	return format.Message(actual, "to be", matcher.Error.Error())
}

func (matcher *MatchBackendErrorMatcher) NegatedFailureMessage(actual interface{}) (message string) {
	return format.Message(actual, "not to be", matcher.Error.Error())
}

func MatchBackendError(error error) types.GomegaMatcher {
	return &MatchBackendErrorMatcher{
		Error: error,
	}
}
