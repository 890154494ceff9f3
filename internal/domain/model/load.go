package model

// LoadReport describes one dataset load.
type LoadReport struct {
	Generation uint64 `json:"generation"`
	Source     string `json:"source"`
	Rows       int    `json:"rows"`
	Records    int    `json:"records"`
	Skipped    int    `json:"skipped"`
	Duplicates int    `json:"duplicates"`
	Repaired   int    `json:"repaired"`
}

// TeamReport describes one team sheet load.
type TeamReport struct {
	Source  string `json:"source"`
	Entries int    `json:"entries"`
}
