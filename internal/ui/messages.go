package ui

import "eiractl/internal/models"

// SnapshotMsg delivers a polled snapshot to the watch program.
type SnapshotMsg struct {
	Snapshot *models.StatusSnapshot
}
