package nba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hoopsight/points-api/internal/models"
)

const defaultBaseURL = "https://stats.nba.com/stats"

// Client is the live stats.nba.com implementation of StatsSource.
// The upstream rejects requests without browser-looking headers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewClient builds a client with the given per-request timeout. The
// timeout bounds a single attempt; retries are the fetcher's concern.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Sugar(),
	}
}

// ResolveTeam looks up a team by its 3-letter abbreviation.
func (c *Client) ResolveTeam(ctx context.Context, abbreviation string) (models.TeamIdentity, error) {
	entry, ok := teamCatalog[strings.ToUpper(abbreviation)]
	if !ok {
		return models.TeamIdentity{}, fmt.Errorf("team %q: %w", abbreviation, ErrNotFound)
	}
	return models.TeamIdentity{
		ID:           entry.ID,
		Abbreviation: strings.ToUpper(abbreviation),
		Name:         entry.Name,
	}, nil
}

// ResolveRoster fetches the current roster player names for a team.
func (c *Client) ResolveRoster(ctx context.Context, teamID int, season string) ([]string, error) {
	params := url.Values{
		"TeamID": {fmt.Sprint(teamID)},
		"Season": {season},
	}
	rs, err := c.query(ctx, "commonteamroster", params)
	if err != nil {
		return nil, fmt.Errorf("roster for team %d: %w", teamID, err)
	}
	nameIdx, ok := rs.index("PLAYER")
	if !ok {
		return nil, fmt.Errorf("roster for team %d: missing PLAYER column", teamID)
	}
	names := make([]string, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		if name := asString(row, nameIdx); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// ResolvePlayer finds a player id by exact full-name match. The first
// upstream match wins.
func (c *Client) ResolvePlayer(ctx context.Context, fullName string) (models.PlayerIdentity, error) {
	params := url.Values{
		"LeagueID":            {"00"},
		"Season":              {""},
		"IsOnlyCurrentSeason": {"0"},
	}
	rs, err := c.query(ctx, "commonallplayers", params)
	if err != nil {
		return models.PlayerIdentity{}, fmt.Errorf("resolve player %q: %w", fullName, err)
	}
	idIdx, ok1 := rs.index("PERSON_ID")
	nameIdx, ok2 := rs.index("DISPLAY_FIRST_LAST")
	if !ok1 || !ok2 {
		return models.PlayerIdentity{}, fmt.Errorf("resolve player %q: unexpected catalog shape", fullName)
	}
	for _, row := range rs.RowSet {
		if strings.EqualFold(asString(row, nameIdx), fullName) {
			return models.PlayerIdentity{
				ID:   int(asFloat(row, idIdx)),
				Name: asString(row, nameIdx),
			}, nil
		}
	}
	return models.PlayerIdentity{}, fmt.Errorf("player %q: %w", fullName, ErrNotFound)
}

// FetchLog retrieves one season's game log for a player. Rows come back
// in upstream order, most recent game first.
func (c *Client) FetchLog(ctx context.Context, playerID int, season string) ([]models.GameLogRow, error) {
	params := url.Values{
		"PlayerID":   {fmt.Sprint(playerID)},
		"Season":     {season},
		"SeasonType": {"Regular Season"},
	}
	rs, err := c.query(ctx, "playergamelog", params)
	if err != nil {
		return nil, fmt.Errorf("game log %d/%s: %w", playerID, season, err)
	}

	rows := make([]models.GameLogRow, 0, len(rs.RowSet))
	for _, raw := range rs.RowSet {
		row := models.GameLogRow{
			Season:   season,
			GameDate: rs.str(raw, "GAME_DATE"),
			Matchup:  rs.str(raw, "MATCHUP"),
			Minutes:  rs.num(raw, "MIN"),
			FGM:      rs.num(raw, "FGM"),
			FGA:      rs.num(raw, "FGA"),
			FGPct:    rs.num(raw, "FG_PCT"),
			FG3M:     rs.num(raw, "FG3M"),
			FG3A:     rs.num(raw, "FG3A"),
			FG3Pct:   rs.num(raw, "FG3_PCT"),
			FTM:      rs.num(raw, "FTM"),
			FTA:      rs.num(raw, "FTA"),
			FTPct:    rs.num(raw, "FT_PCT"),
			OREB:     rs.num(raw, "OREB"),
			DREB:     rs.num(raw, "DREB"),
			REB:      rs.num(raw, "REB"),
			AST:      rs.num(raw, "AST"),
			STL:      rs.num(raw, "STL"),
			BLK:      rs.num(raw, "BLK"),
			Points:   rs.num(raw, "PTS"),
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// resultSet is the upstream's tabular payload shape: a header list and
// positionally matching row values.
type resultSet struct {
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`

	idx map[string]int
}

type statsResponse struct {
	ResultSets []resultSet `json:"resultSets"`
}

func (rs *resultSet) index(header string) (int, bool) {
	if rs.idx == nil {
		rs.idx = make(map[string]int, len(rs.Headers))
		for i, h := range rs.Headers {
			rs.idx[h] = i
		}
	}
	i, ok := rs.idx[header]
	return i, ok
}

func (rs *resultSet) str(row []interface{}, header string) string {
	if i, ok := rs.index(header); ok {
		return asString(row, i)
	}
	return ""
}

func (rs *resultSet) num(row []interface{}, header string) float64 {
	if i, ok := rs.index(header); ok {
		return asFloat(row, i)
	}
	return 0
}

func asString(row []interface{}, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

func asFloat(row []interface{}, i int) float64 {
	if i < 0 || i >= len(row) {
		return 0
	}
	f, _ := row[i].(float64)
	return f
}

// query issues one GET against a stats endpoint and returns its first
// result set. Network-level failures and upstream overload responses are
// wrapped as TransientError so the fetcher retries them.
func (c *Client) query(ctx context.Context, endpoint string, params url.Values) (*resultSet, error) {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Referer", "https://www.nba.com/")
	req.Header.Add("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &TransientError{Err: fmt.Errorf("upstream status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	var parsed statsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	if len(parsed.ResultSets) == 0 {
		return nil, fmt.Errorf("%s: empty result sets", endpoint)
	}

	c.logger.Debugw("Upstream query", "endpoint", endpoint, "rows", len(parsed.ResultSets[0].RowSet))
	return &parsed.ResultSets[0], nil
}
