package tournament

import (
	"sort"
	"strings"
)

// CalculatePlacementsForGroup derives the standings of one group from its
// reported matchups. Singles placements include every group member even
// before their first match; doubles teams only exist once scheduled. Ties on
// wins break by point differential, then points scored, then team key, and
// identical records share a rank.
func CalculatePlacementsForGroup(mode Mode, participantIDs []string, matches []*Match) []Placement {
	stats := make(map[string]*Placement)
	ensure := func(ids []string) *Placement {
		key := canonicalTeamKey(ids)
		if entry, ok := stats[key]; ok {
			return entry
		}
		team := append([]string(nil), ids...)
		sort.Strings(team)
		entry := &Placement{TeamIDs: team}
		stats[key] = entry
		return entry
	}

	if mode == ModeSingles {
		for _, id := range participantIDs {
			ensure([]string{id})
		}
	}

	for _, m := range matches {
		team1 := ensure(m.Team1)
		team2 := ensure(m.Team2)
		if m.Status != MatchPlayed || m.Result == nil {
			continue
		}

		team1.MatchesPlayed++
		team2.MatchesPlayed++
		team1.PointsFor += m.Result.Team1
		team1.PointsAgainst += m.Result.Team2
		team2.PointsFor += m.Result.Team2
		team2.PointsAgainst += m.Result.Team1

		if m.Result.Team1 > m.Result.Team2 {
			team1.Wins++
			team2.Losses++
		} else if m.Result.Team2 > m.Result.Team1 {
			team2.Wins++
			team1.Losses++
		}
	}

	placements := make([]Placement, 0, len(stats))
	for _, entry := range stats {
		entry.PointDifferential = entry.PointsFor - entry.PointsAgainst
		placements = append(placements, *entry)
	}

	sort.Slice(placements, func(i, j int) bool {
		a, b := placements[i], placements[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.PointDifferential != b.PointDifferential {
			return a.PointDifferential > b.PointDifferential
		}
		if a.PointsFor != b.PointsFor {
			return a.PointsFor > b.PointsFor
		}
		return strings.Join(a.TeamIDs, "|") < strings.Join(b.TeamIDs, "|")
	})

	currentRank := 0
	for i := range placements {
		if i > 0 && placements[i].Wins == placements[i-1].Wins &&
			placements[i].PointDifferential == placements[i-1].PointDifferential &&
			placements[i].PointsFor == placements[i-1].PointsFor {
			placements[i].Rank = currentRank
			continue
		}
		currentRank = i + 1
		placements[i].Rank = currentRank
	}
	return placements
}
