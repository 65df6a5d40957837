// Package steam exposes the narrow slice of the Steam client this tool needs: which game is
// running and where its screenshots are.
package steam

import (
	"context"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	EnvRunningAppID     = "DECKREPORT_RUNNING_APPID"
	EnvRunningGameTitle = "DECKREPORT_RUNNING_GAME"
	// envSteamAppID is exported by the Steam client into a launched game's environment.
	envSteamAppID = "SteamAppId"
)

// ignoredAppIDs are compatibility tools and runtimes that show up as installed apps.
var ignoredAppIDs = []int{
	2180100, // Proton Hotfix
	1493710, // Proton Experimental
	1070560, // Steam Linux Runtime 1.0 (scout)
	1391110, // Steam Linux Runtime 2.0 (soldier)
	1628350, // Steam Linux Runtime 3.0 (sniper)
	228980,  // Steamworks Common Redistributables
}

var ignoredTitles = []*regexp.Regexp{
	regexp.MustCompile(`^Proton\s\d+\.\d+$`),
	regexp.MustCompile(`^Steam Linux Runtime \d+\.\d+\s\(.*\)$`),
}

// Game identifies a Steam app. AppID is 0 when unknown.
type Game struct {
	Title string
	AppID int
}

// AppIDString is the app id as a form value, "" when unknown.
func (g Game) AppIDString() string {
	if g.AppID <= 0 {
		return ""
	}
	return strconv.Itoa(g.AppID)
}

// IsIgnored reports whether an app is a runtime or tool rather than a game.
func IsIgnored(title string, appID int) bool {
	if slices.Contains(ignoredAppIDs, appID) {
		return true
	}
	for _, re := range ignoredTitles {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}

type RunningGameProvider interface {
	// RunningGame returns nil when no game is running.
	RunningGame(ctx context.Context) (*Game, error)
}

// EnvRunningGame reads the running game from the environment.
type EnvRunningGame struct {
	lookup func(string) (string, bool)
}

func NewEnvRunningGame() *EnvRunningGame {
	return &EnvRunningGame{lookup: os.LookupEnv}
}

// NewEnvRunningGameWithLookup is used by tests to stub the environment.
func NewEnvRunningGameWithLookup(lookup func(string) (string, bool)) *EnvRunningGame {
	return &EnvRunningGame{lookup: lookup}
}

func (e *EnvRunningGame) RunningGame(_ context.Context) (*Game, error) {
	title := e.get(EnvRunningGameTitle)
	rawID := e.get(EnvRunningAppID)
	if rawID == "" {
		rawID = e.get(envSteamAppID)
	}

	appID, err := strconv.Atoi(rawID)
	if err != nil {
		appID = 0
	}
	if title == "" && appID == 0 {
		return nil, nil
	}
	if IsIgnored(title, appID) {
		return nil, nil
	}
	return &Game{Title: title, AppID: appID}, nil
}

func (e *EnvRunningGame) get(key string) string {
	v, ok := e.lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
