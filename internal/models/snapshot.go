// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package models

import "time"

// SnapshotFormatVersion is bumped whenever the on-disk layout changes in an
// incompatible way. Loaders refuse versions they do not know.
const SnapshotFormatVersion = 1

// Snapshot is the durable on-disk representation of the whole canvas.
// Elements preserve insertion order.
type Snapshot struct {
	FormatVersion int        `json:"formatVersion"`
	SavedAt       time.Time  `json:"savedAt"`
	Elements      []*Element `json:"elements"`
}
