package fflogs

import (
	"ffxiv_cadence/analysis"
)

type respReportFight struct {
	ReportData struct {
		Report *struct {
			Fights []struct {
				ID              int    `json:"id"`
				EncounterID     int    `json:"encounterID"`
				Name            string `json:"name"`
				Kill            *bool  `json:"kill"`
				StartTime       int64  `json:"startTime"`
				EndTime         int64  `json:"endTime"`
				FriendlyPlayers []int  `json:"friendlyPlayers"`
			} `json:"fights"`
			MasterData struct {
				Actors []struct {
					ID      int    `json:"id"`
					Name    string `json:"name"`
					Type    string `json:"type"`
					SubType string `json:"subType"`
				} `json:"actors"`
			} `json:"masterData"`
		} `json:"report"`
	} `json:"reportData"`
}

type respReportEvents struct {
	ReportData struct {
		Report *struct {
			Events eventPage `json:"events"`
		} `json:"report"`
	} `json:"reportData"`
}

type eventPage struct {
	Data              []eventEntry `json:"data"`
	NextPageTimestamp *int64       `json:"nextPageTimestamp"`
}

type eventEntry struct {
	Timestamp     int64  `json:"timestamp"`
	Type          string `json:"type"`
	SourceID      int    `json:"sourceID"`
	TargetID      int    `json:"targetID"`
	AbilityGameID int    `json:"abilityGameID"`
	Targetable    *int   `json:"targetable,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////////////////////////

// Fight is one pull of a report. Times are report-relative milliseconds.
type Fight struct {
	Code        string           `json:"code"`
	ID          int              `json:"id"`
	EncounterID int              `json:"encounterId"`
	Name        string           `json:"name"`
	Kill        bool             `json:"kill"`
	StartTime   int64            `json:"startTime"`
	EndTime     int64            `json:"endTime"`
	Actors      []analysis.Actor `json:"actors"`
}

func (f *Fight) Duration() int64 {
	return f.EndTime - f.StartTime
}

// EventFilter selects one kind of event stream.
type EventFilter struct {
	Name       string
	DataType   string
	Hostility  string
	Expression string
}

var (
	PlayerEvents = EventFilter{
		Name:       "player",
		DataType:   "All",
		Hostility:  "Friendlies",
		Expression: "type in ('begincast', 'cast', 'applybuff', 'removebuff')",
	}
	EnemyTargetability = EventFilter{
		Name:       "targetability",
		DataType:   "All",
		Hostility:  "Enemies",
		Expression: "type = 'targetabilityupdate'",
	}
)
