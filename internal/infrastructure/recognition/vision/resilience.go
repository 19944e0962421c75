package vision

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/kirillkom/pension-intake/internal/infrastructure/resilience"
)

// AnnotateError is a per-image failure reported inside a successful batch response.
// Code is a google.rpc.Code value.
type AnnotateError struct {
	Code    int64
	Message string
}

func (e *AnnotateError) Error() string {
	return fmt.Sprintf("vision annotate image: code %d: %s", e.Code, e.Message)
}

// rpc codes worth another attempt: DEADLINE_EXCEEDED, RESOURCE_EXHAUSTED, INTERNAL, UNAVAILABLE.
var transientRPCCodes = map[int64]bool{4: true, 8: true, 13: true, 14: true}

var classifyVisionError = resilience.Classify(isTransientVisionError)

func isTransientVisionError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return isRetryableHTTPStatus(apiErr.Code)
	}
	var annotateErr *AnnotateError
	if errors.As(err, &annotateErr) {
		return transientRPCCodes[annotateErr.Code]
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
