package ffxiv

import (
	"strings"
)

var (
	JobOrder = map[string]int{
		"Paladin":    11,
		"Warrior":    12,
		"DarkKnight": 13,
		"Gunbreaker": 14,

		"WhiteMage":   20,
		"Scholar":     21,
		"Astrologian": 22,
		"Sage":        23,

		"Monk":    31,
		"Dragoon": 32,
		"Ninja":   33,
		"Samurai": 34,
		"Reaper":  35,

		"Bard":      40,
		"Machinist": 41,
		"Dancer":    42,

		"BlackMage": 50,
		"Summoner":  51,
		"RedMage":   52,
	}

	// 직업 특성에 의한 기본 GCD 감소
	jobSpeedModifiers = map[string]float64{
		"Monk":  0.8,
		"Ninja": 0.85,
	}
)

// NormalizeJob maps FF Logs job names ("Dark Knight", "darkknight") to the
// JobOrder key. Unknown jobs return "".
func NormalizeJob(job string) string {
	key := strings.ReplaceAll(job, " ", "")
	for name := range JobOrder {
		if strings.EqualFold(name, key) {
			return name
		}
	}
	return ""
}

// JobSpeedModifier returns 1 when the job has no innate speed trait.
func JobSpeedModifier(job string) float64 {
	if v, ok := jobSpeedModifiers[job]; ok {
		return v
	}
	return 1
}
