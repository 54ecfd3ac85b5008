package action

import (
	"errors"
	"fmt"
)

// ErrResponseMismatch indicates a response that cannot answer the request
// it was sent for.
var ErrResponseMismatch = errors.New("response does not match request")

// RequestKind identifies what the engine is asking the host for.
type RequestKind uint8

const (
	// RequestLink asks for the target of a link over the scoped range.
	RequestLink RequestKind = iota + 1
	// RequestMention asks the host to resolve a typed mention query.
	RequestMention
)

// String returns the wire name of the request kind.
func (k RequestKind) String() string {
	switch k {
	case RequestLink:
		return "link"
	case RequestMention:
		return "mention"
	default:
		return fmt.Sprintf("RequestKind(%d)", k)
	}
}

// Request is surfaced to the host in a ComposerUpdate.
type Request struct {
	Kind RequestKind

	// Trigger is the character that started a mention, e.g. "@".
	Trigger string

	// Text is the scoped text at the time the request was raised.
	// For mentions it is the query typed after the trigger.
	Text string
}

// ResponseKind identifies how the host answered.
type ResponseKind uint8

const (
	// ResponseLink supplies a link target.
	ResponseLink ResponseKind = iota + 1
	// ResponseMention supplies the resolved mention.
	ResponseMention
	// ResponseDismiss abandons the request.
	ResponseDismiss
)

// String returns the wire name of the response kind.
func (k ResponseKind) String() string {
	switch k {
	case ResponseLink:
		return "link"
	case ResponseMention:
		return "mention"
	case ResponseDismiss:
		return "dismiss"
	default:
		return fmt.Sprintf("ResponseKind(%d)", k)
	}
}

// ParseResponseKind returns the kind named by s.
func ParseResponseKind(s string) (ResponseKind, bool) {
	switch s {
	case "link":
		return ResponseLink, true
	case "mention":
		return ResponseMention, true
	case "dismiss":
		return ResponseDismiss, true
	}
	return 0, false
}

// Response is the host's answer to a Request.
type Response struct {
	Kind ResponseKind
	URL  string
	Text string
}

// Answers reports whether r is a valid answer to req.
// Dismiss answers anything.
func (r Response) Answers(req Request) bool {
	switch r.Kind {
	case ResponseDismiss:
		return true
	case ResponseLink:
		return req.Kind == RequestLink
	case ResponseMention:
		return req.Kind == RequestMention
	}
	return false
}

// ComposerAction is a pending request as reported to the host.
type ComposerAction struct {
	ID      string
	Request Request
}

// String returns a short description of the action.
func (a ComposerAction) String() string {
	return fmt.Sprintf("%s(%s)", a.Request.Kind, a.ID)
}
