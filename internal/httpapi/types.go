package httpapi

type RunStatus struct {
	LastRunAt     string `json:"last_run_at"`
	LastOkAt      string `json:"last_ok_at"`
	LastError     string `json:"last_error"`
	LastSessionID int64  `json:"last_session_id"`
	LastJobsNew   int    `json:"last_jobs_new"`
	Running       bool   `json:"running"`
}
