package remote

import (
	"encoding/json"
	"fmt"
)

const (
	// ProtocolVersion is the got protocol version sent with every request.
	ProtocolVersion = "1"

	// ClientCapabilities lists the capabilities this client supports.
	ClientCapabilities = "zstd"

	headerProtocol     = "Got-Protocol"
	headerCapabilities = "Got-Capabilities"
)

// RemoteError is the JSON error body returned by a got server.
type RemoteError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%s): %s", e.Message, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func tryParseRemoteError(body []byte) *RemoteError {
	var re RemoteError
	if err := json.Unmarshal(body, &re); err != nil {
		return nil
	}
	if re.Message == "" && re.Code == "" {
		return nil
	}
	return &re
}
