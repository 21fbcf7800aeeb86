package sports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"github.com/portfolioproxy/gateway/internal/apperr"
	"github.com/portfolioproxy/gateway/internal/config"
)

const nbaGame = `{"GameID":21001,"Status":"InProgress","DateTime":"2025-03-16T19:30:00",
	"AwayTeam":"BOS","HomeTeam":"NYK","AwayTeamScore":88,"HomeTeamScore":91,
	"Quarter":"4","TimeRemainingMinutes":7,"TimeRemainingSeconds":8,
	"Channel":"ESPN","LastPlay":"Brunson makes 3-pt jump shot","IsClosed":false}`

const nhlGame = `{"GameID":33001,"Status":"InProgress","AwayTeam":"BOS","HomeTeam":"TOR",
	"AwayTeamScore":2,"HomeTeamScore":null,"Period":"2","TimeRemainingMinutes":1,
	"TimeRemainingSeconds":24,"LastPlay":"Shot on goal","IsClosed":false}`

const mlbGame = `{"GameID":71001,"Status":"InProgress","AwayTeam":"BOS","HomeTeam":"NYY",
	"AwayTeamRuns":3,"HomeTeamRuns":5,"Inning":6,"InningHalf":"M","InningDescription":"Mid 6",
	"IsClosed":false}`

const nflGame = `{"GameKey":"202410108","Status":"InProgress","AwayTeam":"BUF","HomeTeam":"NE",
	"AwayScore":17,"HomeScore":14,"Quarter":"3","TimeRemaining":"07:45","Channel":"CBS",
	"LastPlay":"J.Allen pass short right","IsClosed":false,
	"StadiumDetails":{"Name":"Gillette Stadium","City":"Foxborough"}}`

const competitionGame = `{"id":"401547","date":"2025-03-16T17:00Z","competitions":[{
	"status":{"period":4,"displayClock":"2:11","type":{"completed":false}},
	"competitors":[
		{"homeAway":"home","score":"21","team":{"name":"Patriots"}},
		{"homeAway":"away","score":"24","team":{"name":"Bills"}}
	]}]}`

func array(elems ...string) []byte {
	out := "["
	for i, e := range elems {
		if i > 0 {
			out += ","
		}
		out += e
	}
	return []byte(out + "]")
}

func TestTransform_AllSports(t *testing.T) {
	tests := []struct {
		sport string
		body  string
		want  Game
	}{
		{NBA, nbaGame, Game{
			GameID: 21001, DateTime: "2025-03-16T19:30:00", Status: "Q4 - 7:08",
			AwayTeam: "BOS", HomeTeam: "NYK", AwayTeamScore: 88, HomeTeamScore: 91,
			Channel: "ESPN", StadiumDetails: "Brunson makes 3-pt jump shot",
		}},
		{NHL, nhlGame, Game{
			GameID: 33001, Status: "Period 2 - 1:24", AwayTeam: "BOS", HomeTeam: "TOR",
			AwayTeamScore: 2, HomeTeamScore: 0, StadiumDetails: "Shot on goal",
		}},
		{MLB, mlbGame, Game{
			GameID: 71001, Status: "Mid 6", AwayTeam: "BOS", HomeTeam: "NYY",
			AwayTeamScore: 3, HomeTeamScore: 5, StadiumDetails: "Inning: Mid 6",
		}},
		{NFL, nflGame, Game{
			GameID: 202410108, Status: "Q3 - 7:45", AwayTeam: "BUF", HomeTeam: "NE",
			AwayTeamScore: 17, HomeTeamScore: 14, Channel: "CBS",
			StadiumDetails: "Gillette Stadium, Foxborough",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.sport, func(t *testing.T) {
			games, err := Transform(tt.sport, array(tt.body))
			require.NoError(t, err)
			require.Len(t, games, 1)
			assert.Equal(t, tt.want, games[0])
		})
	}
}

func TestTransform_FinalStates(t *testing.T) {
	for _, status := range []string{"Final", "F/OT", "F/SO"} {
		body, err := sjson.Set(nbaGame, "Status", status)
		require.NoError(t, err)
		games, err := Transform(NBA, array(body))
		require.NoError(t, err)
		assert.Equal(t, "Final", games[0].Status, status)
	}

	body, err := sjson.Set(nhlGame, "IsClosed", true)
	require.NoError(t, err)
	games, err := Transform(NHL, array(body))
	require.NoError(t, err)
	assert.Equal(t, "Final", games[0].Status)
}

func TestTransform_ScheduledAndFallbacks(t *testing.T) {
	body, err := sjson.Set(nbaGame, "Status", "Scheduled")
	require.NoError(t, err)
	games, err := Transform(NBA, array(body))
	require.NoError(t, err)
	assert.Equal(t, "Scheduled", games[0].Status)

	body, err = sjson.Delete(nbaGame, "Status")
	require.NoError(t, err)
	games, err = Transform(NBA, array(body))
	require.NoError(t, err)
	assert.Equal(t, "Scheduled", games[0].Status)

	body, err = sjson.Delete(mlbGame, "InningDescription")
	require.NoError(t, err)
	games, err = Transform(MLB, array(body))
	require.NoError(t, err)
	assert.Equal(t, "Inning 6", games[0].Status)
	assert.Empty(t, games[0].StadiumDetails)

	body, err = sjson.Delete(nflGame, "StadiumDetails")
	require.NoError(t, err)
	games, err = Transform(NFL, array(body))
	require.NoError(t, err)
	assert.Equal(t, "J.Allen pass short right", games[0].StadiumDetails)
}

func TestTransform_CompetitionShape(t *testing.T) {
	games, err := Transform(NFL, array(competitionGame))
	require.NoError(t, err)
	require.Len(t, games, 1)

	g := games[0]
	assert.Equal(t, "Bills", g.AwayTeam)
	assert.Equal(t, "Patriots", g.HomeTeam)
	assert.EqualValues(t, 24, g.AwayTeamScore)
	assert.EqualValues(t, 21, g.HomeTeamScore)
	assert.Equal(t, "Q4 - 2:11", g.Status)

	done, err := sjson.Set(competitionGame, "competitions.0.status.type.completed", true)
	require.NoError(t, err)
	games, err = Transform(NBA, array(done))
	require.NoError(t, err)
	assert.Equal(t, "Final", games[0].Status)

	noClock, err := sjson.Delete(competitionGame, "competitions.0.status.displayClock")
	require.NoError(t, err)
	games, err = Transform(NBA, array(noClock))
	require.NoError(t, err)
	assert.Equal(t, "In Progress", games[0].Status)
}

func TestTransform_TeamsShape(t *testing.T) {
	body := `{"gamePk":745001,"gameDate":"2025-03-16T17:05:00Z","status":{"abstractGameState":"Final"},
		"teams":{"away":{"score":4,"team":{"name":"Red Sox"}},"home":{"score":2,"team":{"name":"Yankees"}}}}`

	games, err := Transform(MLB, array(body))
	require.NoError(t, err)
	assert.Equal(t, Game{
		GameID: 745001, DateTime: "2025-03-16T17:05:00Z", Status: "Final",
		AwayTeam: "Red Sox", HomeTeam: "Yankees", AwayTeamScore: 4, HomeTeamScore: 2,
	}, games[0])
}

func TestTransform_IncompleteRecordsStillHaveTeamsAndScores(t *testing.T) {
	for _, sport := range []string{MLB, NFL, NHL, NBA} {
		games, err := Transform(sport, array(`{}`))
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, "", games[0].HomeTeam)
		assert.Zero(t, games[0].AwayTeamScore)
		assert.Equal(t, "Scheduled", games[0].Status)
	}
}

func TestTransform_InvalidInput(t *testing.T) {
	_, err := Transform("cricket", array(nbaGame))
	assert.True(t, errors.Is(err, ErrInvalidSportType))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = Transform(NBA, []byte(`[1, 2]`))
	assert.Equal(t, apperr.KindInvalidUpstreamData, apperr.KindOf(err))

	_, err = Transform(NBA, []byte(`{{`))
	assert.Equal(t, apperr.KindInvalidUpstreamData, apperr.KindOf(err))

	games, err := Transform(NBA, []byte(`{"message":"no games"}`))
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestTransform_IsPure(t *testing.T) {
	body := array(nbaGame, competitionGame)
	a, err := Transform(NBA, body)
	require.NoError(t, err)
	b, err := Transform(NBA, body)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2025-MAR-16", FormatDate(time.Date(2025, 3, 16, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-DEC-01", FormatDate(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
}

func TestService_Games(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotKey = r.URL.Path, r.URL.Query().Get("key")
		w.Write(array(nflGame))
	}))
	defer srv.Close()

	svc := NewService(config.SportsConfig{
		BaseURL: srv.URL,
		Timeout: time.Second,
		APIKeys: map[string]string{MLB: "k-mlb", NFL: "k-nfl", NHL: "k-nhl", NBA: "k-nba"},
	}, srv.Client())
	svc.now = func() time.Time { return time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC) }

	games, err := svc.Games(context.Background(), "NFL", time.Time{})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "/nfl/scores/json/ScoresByDate/2025-MAR-16", gotPath)
	assert.Equal(t, "k-nfl", gotKey)

	_, err = svc.Games(context.Background(), "nba", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "/nba/scores/json/GamesByDate/2025-JAN-05", gotPath)
	assert.Equal(t, "k-nba", gotKey)

	_, err = svc.Games(context.Background(), "curling", time.Time{})
	assert.ErrorIs(t, err, ErrInvalidSportType)
}

func TestService_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"HttpStatusCode":401,"Code":401,"Description":"Access denied"}`))
	}))
	defer srv.Close()

	svc := NewService(config.SportsConfig{BaseURL: srv.URL, APIKeys: map[string]string{NHL: "bad"}}, srv.Client())
	_, err := svc.Games(context.Background(), NHL, time.Time{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, "Failed to fetch NHL games", apperr.MessageOf(err))
}
