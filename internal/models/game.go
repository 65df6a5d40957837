package models

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// GameMetadata holds artwork URLs; any of them may be empty.
type GameMetadata struct {
	Poster     string `json:"poster,omitempty"`
	Hero       string `json:"hero,omitempty"`
	Banner     string `json:"banner,omitempty"`
	Background string `json:"background,omitempty"`
}

// GameDetails is the game_details payload: the game identity plus its published reports.
type GameDetails struct {
	GameName        string            `json:"gameName"`
	AppID           *int              `json:"appId,omitempty"`
	Metadata        GameMetadata      `json:"metadata"`
	Reports         []GameReport      `json:"reports"`
	ExternalReviews []json.RawMessage `json:"external_reviews,omitempty"`
}

// GameReportUser is the author of a published report.
type GameReportUser struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// GameReport is one published report. Data holds the parsed form values keyed by field id;
// values are strings, numbers or null.
type GameReport struct {
	ID        int64          `json:"id"`
	Number    int            `json:"number,omitempty"`
	Title     string         `json:"title"`
	HTMLURL   string         `json:"html_url"`
	Data      map[string]any `json:"data"`
	User      GameReportUser `json:"user"`
	CreatedAt string         `json:"created_at,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}

var issueNumberPattern = regexp.MustCompile(`/issues/(\d+)`)

// IssueNumber returns the report's issue number, falling back to the number in its html_url.
func (r GameReport) IssueNumber() (int, bool) {
	if r.Number > 0 {
		return r.Number, true
	}
	m := issueNumberPattern.FindStringSubmatch(r.HTMLURL)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DataString renders one data value the way the form stores it; null and missing give "".
func (r GameReport) DataString(id string) string {
	return stringifyValue(r.Data[id])
}

// GameSearchResult is one entry returned by search_games.
type GameSearchResult struct {
	GameName string       `json:"gameName"`
	AppID    int          `json:"appId"`
	Metadata GameMetadata `json:"metadata"`
}

// Device is a hardware label published by the reports repository.
type Device struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func stringifyValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case json.Number:
		return tv.String()
	case int:
		return strconv.Itoa(tv)
	case bool:
		return strconv.FormatBool(tv)
	default:
		b, err := json.Marshal(tv)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
