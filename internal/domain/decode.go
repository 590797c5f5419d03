package domain

import (
	"encoding/base64"
	"encoding/json"
)

// DecodeRecord unwraps a transport envelope: base64-decodes the payload and
// parses it as a sensor document. Fails fast with a DecodeError on malformed
// input. No side effects; validation is the enricher's job.
func DecodeRecord(rec RawRecord) (SensorPayload, error) {
	decoded, err := base64.StdEncoding.DecodeString(string(rec.Data))
	if err != nil {
		return SensorPayload{}, &DecodeError{Cause: err}
	}

	var payload SensorPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return SensorPayload{}, &DecodeError{Cause: err}
	}
	return payload, nil
}
