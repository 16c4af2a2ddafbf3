package resource

import (
	"fmt"
	"net/http"
)

// Kind is the bucket a resource response status falls into.
type Kind int

const (
	KindUnknown Kind = iota
	KindSuccess
	KindNotModified
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindNotModified:
		return "not_modified"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a resource response.
type Outcome struct {
	Header http.Header
	Body   []byte // set for KindSuccess and KindForbidden
	Kind   Kind
	Code   int
}

// Label names the outcome the way an exception class would be named,
// e.g. "HTTP529Error" for an unknown status.
func (o Outcome) Label() string {
	switch o.Kind {
	case KindSuccess:
		return "Success"
	case KindNotModified:
		return "NotModified"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	default:
		return fmt.Sprintf("HTTP%dError", o.Code)
	}
}

// Classify maps a status code to an Outcome. Every code maps to exactly one
// kind; anything other than 200, 304, 401 and 403 is KindUnknown.
func Classify(status int, header http.Header, body []byte) Outcome {
	o := Outcome{Code: status, Header: header}
	switch status {
	case http.StatusOK:
		o.Kind = KindSuccess
		o.Body = body
	case http.StatusNotModified:
		o.Kind = KindNotModified
	case http.StatusUnauthorized:
		o.Kind = KindUnauthorized
	case http.StatusForbidden:
		o.Kind = KindForbidden
		o.Body = body
	default:
		o.Kind = KindUnknown
	}
	return o
}
