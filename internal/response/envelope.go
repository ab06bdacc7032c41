// Package response builds the outbound record published for each processed
// MTB-File request.
package response

import (
	"encoding/json"

	"github.com/mtb-etl/mtb-kafka-bridge/internal/backend"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/types"
)

// StatusUnreachable is the sentinel status published when the backend could
// not be reached. It sits outside the HTTP status range so downstream
// consumers can tell it apart from any real backend status. The value is a
// cross-system contract with the ETL processor and must not change.
const StatusUnreachable = 900

// failureDocument is the value published on a transport failure
type failureDocument struct {
	Status int    `json:"status"`
	Reason string `json:"reason"`
}

// Build constructs the outbound record for one backend outcome. The key is
// the inbound record's key, copied unchanged; a nil key stays nil. On a
// received backend response the value is the response body byte-for-byte.
// On a transport failure the value is a synthesized failure document carrying
// StatusUnreachable and the failure reason.
//
// Build is pure: it performs no I/O and the same inputs always produce the
// same record.
func Build(key []byte, outcome backend.Outcome) types.Record {
	if outcome.TransportFailed() {
		// Marshalling a flat struct of int and string cannot fail.
		value, _ := json.Marshal(failureDocument{
			Status: StatusUnreachable,
			Reason: outcome.FailureReason,
		})
		return types.Record{Key: key, Value: value}
	}

	return types.Record{Key: key, Value: outcome.Body}
}
