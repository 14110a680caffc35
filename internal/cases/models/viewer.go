package models

// Viewer is an authority-facing user of the dashboard. Jurisdiction is the
// scope label declared in their profile and may be empty.
type Viewer struct {
	ID           string `json:"id"`
	Jurisdiction string `json:"jurisdiction"`
}
