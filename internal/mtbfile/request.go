// Package mtbfile decodes the minimal identifying fields of an MTB-File
// request payload. The bridge forwards payloads verbatim either way; decoded
// fields are used for structured logging only, never to gate forwarding.
package mtbfile

import (
	"encoding/json"
	"errors"
)

// Consent status values as they appear in MTB-File documents
const (
	ConsentActive   = "active"
	ConsentRejected = "rejected"
)

// ErrNotMTBFileRequest indicates the payload could not be decoded as an
// MTB-File request. Callers log and move on; the payload is still forwarded.
var ErrNotMTBFileRequest = errors.New("payload is not an MTB-File request")

// Request carries the identifying fields of one inbound payload
type Request struct {
	RequestID     string
	PatientID     string
	ConsentStatus string
}

// HasConsent reports whether the document carries an active consent
func (r *Request) HasConsent() bool {
	return r.ConsentStatus == ConsentActive
}

type envelope struct {
	RequestID      string          `json:"request_id"`
	RequestIDAlias string          `json:"requestId"`
	Content        json.RawMessage `json:"content"`
}

type document struct {
	Consent struct {
		Patient string `json:"patient"`
		Status  string `json:"status"`
	} `json:"consent"`
}

// Decode extracts the request id, patient pseudonym and consent status from
// a payload. Payloads arrive either as a request envelope with the MTB file
// under "content", or as a bare MTB file; both shapes are accepted. The
// "requestId" spelling is an accepted alias for "request_id".
func Decode(value []byte) (*Request, error) {
	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, ErrNotMTBFileRequest
	}

	req := &Request{RequestID: env.RequestID}
	if req.RequestID == "" {
		req.RequestID = env.RequestIDAlias
	}

	content := env.Content
	if len(content) == 0 {
		// Bare MTB file without a request envelope
		content = value
	}

	var doc document
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, ErrNotMTBFileRequest
	}
	req.PatientID = doc.Consent.Patient
	req.ConsentStatus = doc.Consent.Status

	return req, nil
}
