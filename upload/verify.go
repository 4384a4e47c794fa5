package upload

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// StatusOK is the application status of an accepted upload.
const StatusOK = "OK"

// Reason classifies a verdict.
type Reason int

const (
	Accepted Reason = iota
	ApplicationFailure
	MalformedBody
	TransportFailure
)

// Verdict is the decision for one upload response.
type Verdict struct {
	Accepted   bool
	Reason     Reason
	Status     string // application status, when the body carried one
	StatusCode int
	Body       string
}

// String is the operator-facing reason text.
func (v Verdict) String() string {
	switch v.Reason {
	case Accepted:
		return "accepted"
	case ApplicationFailure:
		return "application-level failure: " + v.Status
	case MalformedBody:
		return "malformed response body"
	default:
		return fmt.Sprintf("transport-level failure: %d", v.StatusCode)
	}
}

// Verify applies the acceptance rules: only HTTP 200 with a JSON object whose
// "status" is "OK" is accepted.
func Verify(r *Result) Verdict {
	v := Verdict{StatusCode: r.StatusCode, Body: string(r.Body)}
	if r.StatusCode != http.StatusOK {
		v.Reason = TransportFailure
		return v
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(r.Body, &doc); err != nil || doc == nil {
		v.Reason = MalformedBody
		return v
	}
	raw, ok := doc["status"]
	if !ok {
		v.Reason, v.Status = ApplicationFailure, "<missing>"
		return v
	}
	if err := json.Unmarshal(raw, &v.Status); err != nil {
		v.Status = string(raw)
	}
	if v.Status != StatusOK {
		v.Reason = ApplicationFailure
		return v
	}
	v.Accepted, v.Reason = true, Accepted
	return v
}
