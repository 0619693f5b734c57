package telemetry

import "encoding/json"

// ProcessSnapshot is one row of a process-table dump, the JSON-friendly
// shape cmd/farmctl and the dump_info instruction kind (spec.md §6) both
// want: a point-in-time view of what the scheduler is doing, adapted
// from the teacher's internal/production/visualizer.go ExportJSON (there
// a whole statechart config; here one row per job in the table).
type ProcessSnapshot struct {
	JobID  int64  `json:"job_id"`
	Ref    string `json:"ref"`
	Status string `json:"status"`
	Kind   string `json:"kind"`
}

// TableSnapshot is the full point-in-time view: every process still in
// the table (including terminal ones not yet cleaned up by Lookup) plus
// interlock state.
type TableSnapshot struct {
	Processes      []ProcessSnapshot `json:"processes"`
	FirmwareOwner  string            `json:"firmware_owner,omitempty"`
	EmergencyLock  bool              `json:"emergency_lock"`
	CursorJobID    int64             `json:"cursor_job_id"`
}

// ExportJSON renders the snapshot as indented JSON, suitable for a
// dump_info response or a one-shot CLI inspection.
func ExportJSON(snap TableSnapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}
