package eventfeed

// Wire shapes of the scoreboard API. Only the fields the tracker reads are
// declared; the feed sends far more.

type scoreboardResponse struct {
	Events []apiEvent `json:"events"`
}

type apiEvent struct {
	ID           string           `json:"id"`
	Date         string           `json:"date"` // RFC3339, zulu
	Status       apiEventStatus   `json:"status"`
	Competitions []apiCompetition `json:"competitions"`
}

type apiEventStatus struct {
	Type apiStatusType `json:"type"`
}

type apiStatusType struct {
	State     string `json:"state"` // pre | in | post
	Detail    string `json:"detail"`
	Completed bool   `json:"completed"`
}

type apiCompetition struct {
	Competitors []apiCompetitor `json:"competitors"`
}

type apiCompetitor struct {
	HomeAway string  `json:"homeAway"` // home | away
	Score    string  `json:"score"`
	Team     apiTeam `json:"team"`
}

type apiTeam struct {
	ShortDisplayName string `json:"shortDisplayName"`
}

// Player statistic lines from the event summary endpoint, used to settle
// player props.

type summaryResponse struct {
	Players []apiPlayerLine `json:"players"`
}

type apiPlayerLine struct {
	Name  string             `json:"name"`
	Stats map[string]float64 `json:"stats"`
}
