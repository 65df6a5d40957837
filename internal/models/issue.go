package models

// RemoteIssue is the issue tracker's unit of a submitted report.
type RemoteIssue struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}
