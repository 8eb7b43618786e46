package models

// PlayerIdentity maps a player's full name to the upstream catalog id.
// Resolution is exact-match; the first upstream hit is authoritative.
type PlayerIdentity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TeamIdentity is a team plus its roster snapshot at query time.
// Rosters are not stable, so callers must treat this as TTL-bound data.
type TeamIdentity struct {
	ID           int      `json:"id"`
	Abbreviation string   `json:"abbreviation"`
	Name         string   `json:"name"`
	Roster       []string `json:"roster"`
}

// GameLogRow is one played game for one player, as delivered by the
// upstream game log endpoint (season-major, most recent game first).
type GameLogRow struct {
	GameDate string `json:"game_date"`
	Matchup  string `json:"matchup"`
	Season   string `json:"season"`

	Minutes float64 `json:"min"`
	FGM     float64 `json:"fgm"`
	FGA     float64 `json:"fga"`
	FGPct   float64 `json:"fg_pct"`
	FG3M    float64 `json:"fg3m"`
	FG3A    float64 `json:"fg3a"`
	FG3Pct  float64 `json:"fg3_pct"`
	FTM     float64 `json:"ftm"`
	FTA     float64 `json:"fta"`
	FTPct   float64 `json:"ft_pct"`
	OREB    float64 `json:"oreb"`
	DREB    float64 `json:"dreb"`
	REB     float64 `json:"reb"`
	AST     float64 `json:"ast"`
	STL     float64 `json:"stl"`
	BLK     float64 `json:"blk"`
	Points  float64 `json:"pts"`
}

// StatColumns lists the numeric box-score fields in their canonical order:
// the 16 feature columns plus the points target.
var StatColumns = []string{
	"MIN", "FGM", "FGA", "FG_PCT", "FG3M", "FG3A", "FG3_PCT",
	"FTM", "FTA", "FT_PCT", "OREB", "DREB", "REB", "AST", "STL", "BLK",
	"PTS",
}

// Stat returns the value of a canonical column for this row.
func (g GameLogRow) Stat(column string) float64 {
	switch column {
	case "MIN":
		return g.Minutes
	case "FGM":
		return g.FGM
	case "FGA":
		return g.FGA
	case "FG_PCT":
		return g.FGPct
	case "FG3M":
		return g.FG3M
	case "FG3A":
		return g.FG3A
	case "FG3_PCT":
		return g.FG3Pct
	case "FTM":
		return g.FTM
	case "FTA":
		return g.FTA
	case "FT_PCT":
		return g.FTPct
	case "OREB":
		return g.OREB
	case "DREB":
		return g.DREB
	case "REB":
		return g.REB
	case "AST":
		return g.AST
	case "STL":
		return g.STL
	case "BLK":
		return g.BLK
	case "PTS":
		return g.Points
	}
	return 0
}
