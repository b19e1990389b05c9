package classify

import (
	"strings"

	"github.com/yourusername/slip-tracker/internal/models"
)

// Per-league team nickname dictionaries. Immutable after process start;
// matching against them is always fuzzy to absorb OCR noise. UFC and soccer
// are keyword leagues: participants are individuals or clubs outside these
// fixed sets, so league detection relies on competition vocabulary instead.
var teamsByLeague = map[models.League][]string{
	models.LeagueNFL: {
		"Patriots", "Dolphins", "Cowboys", "Eagles", "Jets", "Giants", "Chiefs", "49ers", "Packers", "Bills",
		"Vikings", "Falcons", "Seahawks", "Rams", "Saints", "Lions", "Bears", "Broncos", "Chargers", "Raiders",
		"Texans", "Jaguars", "Commanders", "Ravens", "Browns", "Steelers", "Bengals", "Titans", "Colts",
		"Buccaneers", "Panthers", "Cardinals",
	},
	models.LeagueNBA: {
		"Lakers", "Celtics", "Heat", "Warriors", "Bucks", "Knicks", "Mavericks", "Suns", "Clippers", "Nuggets",
		"76ers", "Raptors", "Bulls", "Hawks", "Cavaliers", "Grizzlies", "Pelicans", "Wolves", "Kings", "Thunder",
		"Spurs", "Pistons", "Pacers", "Magic", "Wizards", "Hornets", "Jazz", "Blazers", "Rockets",
	},
	models.LeagueMLB: {
		"Yankees", "Dodgers", "Astros", "Braves", "Mets", "Red Sox", "Cubs", "Giants", "Phillies", "Padres",
		"Rays", "Blue Jays", "Cardinals", "Brewers", "Twins", "Rangers", "Mariners", "Guardians", "Pirates",
		"Nationals", "Athletics", "Rockies", "Diamondbacks", "Tigers", "Royals", "Orioles", "White Sox", "Marlins", "Angels",
	},
	models.LeagueNHL: {
		"Rangers", "Bruins", "Maple Leafs", "Lightning", "Golden Knights", "Panthers", "Avalanche", "Oilers",
		"Penguins", "Capitals", "Devils", "Stars", "Wild", "Jets", "Canucks", "Flames", "Kings", "Sharks",
		"Senators", "Sabres", "Predators", "Hurricanes", "Blue Jackets", "Ducks", "Coyotes", "Flyers", "Kraken", "Islanders", "Red Wings",
	},
}

// propStats is the catalog of statistic keywords that mark a player prop.
// Longer phrases sort before their substrings during normalization.
var propStats = []string{
	"passing touchdowns", "rushing touchdowns", "receiving touchdowns",
	"passing yards", "rushing yards", "receiving yards",
	"passing attempts", "passing completions",
	"three pointers", "three-point field goals", "total match points",
	"anytime touchdown", "anytime td", "total bases", "shots on goal",
	"total rounds", "total runs", "total goals", "hits allowed", "earned runs",
	"receptions", "attempts", "completions", "touchdowns", "interceptions",
	"points", "rebounds", "assists", "pra", "threes", "saves", "hits",
	"strikeouts", "outs", "sacks", "tackles", "to score",
}

// statLeagueHints nudge league detection for prop blocks that name a player
// but no team. One vote each, so explicit team matches still dominate.
var statLeagueHints = map[string]models.League{
	"passing yards":        models.LeagueNFL,
	"rushing yards":        models.LeagueNFL,
	"receiving yards":      models.LeagueNFL,
	"receptions":           models.LeagueNFL,
	"passing touchdowns":   models.LeagueNFL,
	"passing attempts":     models.LeagueNFL,
	"passing completions":  models.LeagueNFL,
	"anytime td":           models.LeagueNFL,
	"anytime touchdown":    models.LeagueNFL,
	"interceptions":        models.LeagueNFL,
	"sacks":                models.LeagueNFL,
	"tackles":              models.LeagueNFL,
	"rebounds":             models.LeagueNBA,
	"assists":              models.LeagueNBA,
	"pra":                  models.LeagueNBA,
	"threes":               models.LeagueNBA,
	"three pointers":       models.LeagueNBA,
	"shots on goal":        models.LeagueNHL,
	"saves":                models.LeagueNHL,
	"total bases":          models.LeagueMLB,
	"strikeouts":           models.LeagueMLB,
	"earned runs":          models.LeagueMLB,
	"hits allowed":         models.LeagueMLB,
	"total runs":           models.LeagueMLB,
	"total rounds":         models.LeagueUFC,
	"total goals":          models.LeagueSoccer,
}

var soccerKeywords = []string{
	"premier league", "la liga", "bundesliga", "serie a", "mls", "champions league",
}

var ufcKeywords = []string{
	"ufc", "mma", "total rounds", "by ko", "by submission", "by decision",
}

// teamLeagues are the leagues with fixed team dictionaries.
var teamLeagues = []models.League{
	models.LeagueNFL, models.LeagueNBA, models.LeagueMLB, models.LeagueNHL,
}

// TeamsForLeague returns the nickname dictionary for a league. Keyword
// leagues return nil.
func TeamsForLeague(league models.League) []string {
	return teamsByLeague[league]
}

// NormalizeStat maps free-form statistic text onto the catalog entry it
// matches, or returns the lowercased input when nothing matches.
func NormalizeStat(stat string) string {
	s := strings.ToLower(strings.TrimSpace(stat))
	if s == "" {
		return s
	}
	for _, cat := range propStats {
		if strings.Contains(s, cat) || strings.Contains(cat, s) {
			return cat
		}
	}
	return s
}

// ContainsPropStat reports whether text mentions any catalog statistic.
func ContainsPropStat(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, cat := range propStats {
		if strings.Contains(lowered, cat) {
			return cat, true
		}
	}
	return "", false
}
