// Package sports normalises sportsdata.io scoreboards into one game record.
//
// DESIGN: Providers return several unrelated shapes for the same concept. Each
// raw element is classified once (detectGame) into a shape type that knows how
// to read itself; nothing downstream inspects optional field names.
//
//	boxScore     flat sportsdata.io record (HomeTeam, HomeTeamScore|Runs, ...)
//	competition  nested competitions[0].competitors[] scoreboard
//	teamsGame    nested teams.home.team.name schedule entry
package sports

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/portfolioproxy/gateway/internal/apperr"
)

// Sport codes.
const (
	MLB = "mlb"
	NFL = "nfl"
	NHL = "nhl"
	NBA = "nba"
)

// ErrInvalidSportType is returned for any sport outside the supported codes.
var ErrInvalidSportType = apperr.Validation("Invalid sport type")

// Game is the stable game record.
type Game struct {
	GameID         int64  `json:"GameID"`
	DateTime       string `json:"DateTime"`
	Status         string `json:"Status"`
	AwayTeam       string `json:"AwayTeam"`
	HomeTeam       string `json:"HomeTeam"`
	AwayTeamScore  int64  `json:"AwayTeamScore"`
	HomeTeamScore  int64  `json:"HomeTeamScore"`
	Channel        string `json:"Channel"`
	StadiumDetails string `json:"StadiumDetails"`
}

// ValidSport reports whether code is supported.
func ValidSport(code string) bool {
	switch code {
	case MLB, NFL, NHL, NBA:
		return true
	}
	return false
}

// Transform normalises a scoreboard payload for sport.
// A non-array payload means no games.
func Transform(sport string, body []byte) ([]Game, error) {
	if !ValidSport(sport) {
		return nil, ErrInvalidSportType
	}
	if !gjson.ValidBytes(body) {
		return nil, apperr.InvalidData(fmt.Sprintf("Invalid %s data received from API", strings.ToUpper(sport)))
	}

	root := gjson.ParseBytes(body)
	games := []Game{}
	if !root.IsArray() {
		return games, nil
	}

	var bad bool
	root.ForEach(func(_, el gjson.Result) bool {
		if !el.IsObject() {
			bad = true
			return false
		}
		games = append(games, detectGame(el).normalize(sport))
		return true
	})
	if bad {
		return nil, apperr.InvalidData(fmt.Sprintf("Invalid %s data received from API", strings.ToUpper(sport)))
	}
	return games, nil
}

type rawGame interface {
	normalize(sport string) Game
}

func detectGame(el gjson.Result) rawGame {
	switch {
	case el.Get("competitions").IsArray():
		return competition{el}
	case el.Get("teams.home").IsObject() || el.Get("teams.away").IsObject():
		return teamsGame{el}
	default:
		return boxScore{el}
	}
}

// ============================================================================
// Flat box score
// ============================================================================

type boxScore struct{ gjson.Result }

func (g boxScore) normalize(sport string) Game {
	return Game{
		GameID:         firstOf(g.Result, "GameID", "GlobalGameID", "GameKey").Int(),
		DateTime:       g.Get("DateTime").String(),
		Status:         g.status(sport),
		AwayTeam:       g.Get("AwayTeam").String(),
		HomeTeam:       g.Get("HomeTeam").String(),
		AwayTeamScore:  firstOf(g.Result, "AwayTeamScore", "AwayTeamRuns", "AwayScore").Int(),
		HomeTeamScore:  firstOf(g.Result, "HomeTeamScore", "HomeTeamRuns", "HomeScore").Int(),
		Channel:        g.Get("Channel").String(),
		StadiumDetails: g.stadium(sport),
	}
}

func (g boxScore) status(sport string) string {
	status := g.Get("Status").String()
	if g.Get("IsClosed").Bool() || isFinal(status) {
		return "Final"
	}
	if status != "InProgress" {
		if status == "" {
			return "Scheduled"
		}
		return status
	}

	switch sport {
	case NBA:
		if q := g.Get("Quarter").String(); q != "" {
			return "Q" + q + " - " + clock(g.Get("TimeRemainingMinutes").Int(), g.Get("TimeRemainingSeconds").Int())
		}
	case NFL:
		if q := g.Get("Quarter").String(); q != "" {
			if rem := g.Get("TimeRemaining").String(); rem != "" {
				return "Q" + q + " - " + strings.TrimPrefix(rem, "0")
			}
			return "Q" + q
		}
	case NHL:
		if p := g.Get("Period").String(); p != "" {
			return "Period " + p + " - " + clock(g.Get("TimeRemainingMinutes").Int(), g.Get("TimeRemainingSeconds").Int())
		}
	case MLB:
		if d := g.Get("InningDescription").String(); d != "" {
			return d
		}
		if n := g.Get("Inning").Int(); n > 0 {
			return "Inning " + strconv.FormatInt(n, 10)
		}
	}
	return "In Progress"
}

func (g boxScore) stadium(sport string) string {
	switch sport {
	case MLB:
		if d := g.Get("InningDescription").String(); d != "" {
			return "Inning: " + d
		}
		return ""
	case NFL:
		name, city := g.Get("StadiumDetails.Name").String(), g.Get("StadiumDetails.City").String()
		switch {
		case name != "" && city != "":
			return name + ", " + city
		case name != "":
			return name
		}
	}
	return g.Get("LastPlay").String()
}

// ============================================================================
// Nested competitions scoreboard
// ============================================================================

type competition struct{ gjson.Result }

func (g competition) normalize(string) Game {
	comp := g.Get("competitions.0")
	away, home := competitors(comp.Get("competitors").Array())

	return Game{
		GameID:         firstOf(g.Result, "id", "uid").Int(),
		DateTime:       firstOf(g.Result, "date", "DateTime").String(),
		Status:         competitionStatus(comp.Get("status")),
		AwayTeam:       teamName(away.Get("team")),
		HomeTeam:       teamName(home.Get("team")),
		AwayTeamScore:  away.Get("score").Int(),
		HomeTeamScore:  home.Get("score").Int(),
		Channel:        comp.Get("broadcasts.0.names.0").String(),
		StadiumDetails: comp.Get("venue.fullName").String(),
	}
}

// competitors returns (away, home). homeAway wins over position.
func competitors(list []gjson.Result) (away, home gjson.Result) {
	for i, c := range list {
		switch c.Get("homeAway").String() {
		case "home":
			home = c
		case "away":
			away = c
		default:
			if i == 0 && !away.Exists() {
				away = c
			} else if i == 1 && !home.Exists() {
				home = c
			}
		}
	}
	return away, home
}

func competitionStatus(st gjson.Result) string {
	if st.Get("type.completed").Bool() {
		return "Final"
	}
	period, clk := st.Get("period").Int(), st.Get("displayClock").String()
	if period > 0 && clk != "" {
		return "Q" + strconv.FormatInt(period, 10) + " - " + clk
	}
	return "In Progress"
}

func teamName(team gjson.Result) string {
	return firstOf(team, "name", "displayName", "abbreviation").String()
}

// ============================================================================
// Nested teams schedule entry
// ============================================================================

type teamsGame struct{ gjson.Result }

func (g teamsGame) normalize(string) Game {
	status := g.Get("status.abstractGameState").String()
	switch {
	case isFinal(status):
		status = "Final"
	case status == "":
		status = "Scheduled"
	}
	return Game{
		GameID:        g.Get("gamePk").Int(),
		DateTime:      g.Get("gameDate").String(),
		Status:        status,
		AwayTeam:      g.Get("teams.away.team.name").String(),
		HomeTeam:      g.Get("teams.home.team.name").String(),
		AwayTeamScore: g.Get("teams.away.score").Int(),
		HomeTeamScore: g.Get("teams.home.score").Int(),
	}
}

// ============================================================================
// Helpers
// ============================================================================

func isFinal(status string) bool {
	switch status {
	case "Final", "F/OT", "F/SO", "Closed":
		return true
	}
	return false
}

func clock(minutes, seconds int64) string {
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// firstOf returns the first non-null value among paths.
func firstOf(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}
