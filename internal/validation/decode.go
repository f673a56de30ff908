// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package validation

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// DecodeStrict decodes JSON from r into v, refusing unknown fields and
// trailing garbage. Request schemas are closed; a payload carrying a field
// the schema does not name is rejected outright.
func DecodeStrict(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	// A second token means content after the document.
	if dec.More() {
		return fmt.Errorf("invalid request body: unexpected trailing data")
	}

	return nil
}

// DecodeStrictBytes is DecodeStrict over an in-memory payload, used by the
// websocket inbound path.
func DecodeStrictBytes(data []byte, v interface{}) error {
	return DecodeStrict(bytes.NewReader(data), v)
}
