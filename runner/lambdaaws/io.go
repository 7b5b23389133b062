package lambdaaws

// Input is the event the function accepts, and what the invoker sends.
type Input struct {
	RunID    string   `json:"run_id"`
	Query    string   `json:"query"`
	Statuses []string `json:"statuses"`
	Type     string   `json:"type,omitempty"`
	Count    int      `json:"count"`
	Bucket   string   `json:"bucket"`
	Prefix   string   `json:"prefix"`
}

type Output struct {
	RunID      string         `json:"run_id"`
	Categories map[string]int `json:"categories"`
	Records    int            `json:"records"`
	Failed     []string       `json:"failed,omitempty"`
}
