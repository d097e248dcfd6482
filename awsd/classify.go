package awsd

import (
	stderrors "errors"
	"net"
	"strings"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"awsdocs/errors"
)

// credentialErrorCodes are API error codes meaning the caller's credentials
// were rejected rather than missing.
var credentialErrorCodes = map[string]bool{
	"AuthFailure":                 true,
	"InvalidClientTokenId":        true,
	"UnrecognizedClientException": true,
	"ExpiredToken":                true,
	"SignatureDoesNotMatch":       true,
}

// credentialErrorMarkers match the messages the SDK produces when no
// credential provider in the chain could resolve credentials.
var credentialErrorMarkers = []string{
	"failed to retrieve credentials",
	"get identity",
	"no valid providers in chain",
	"anonymous credentials",
}

// Classify wraps a failed listing call with the error type callers map to a
// response status.
func Classify(err error, message string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}

	switch {
	case isCredentialError(err):
		return errors.New(errors.ErrAWSCredentials, message, context, err)
	case isEndpointError(err):
		return errors.New(errors.ErrAWSEndpoint, message, context, err)
	default:
		return errors.New(errors.ErrAWSListing, message, context, err)
	}
}

func isCredentialError(err error) bool {
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) && credentialErrorCodes[apiErr.ErrorCode()] {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range credentialErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func isEndpointError(err error) bool {
	var sendErr *smithyhttp.RequestSendError
	if stderrors.As(err, &sendErr) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr)
}
