package tournament

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// bye is the placeholder filling the empty slot of odd-sized round robins.
const bye = "BYE"

// GroupSeeding is the outcome of distributing seeded participants over the
// group labels.
type GroupSeeding struct {
	Label        string
	Participants []Seed
}

// DistributeIntoGroups slices rating-sorted participants into contiguous
// bands, one per label. When the split is uneven the earlier groups take the
// extra player, so the strongest tables are also the fullest.
func DistributeIntoGroups(participants []Seed, labels []string) []GroupSeeding {
	baseSize := len(participants) / len(labels)
	remainder := len(participants) % len(labels)
	cursor := 0

	groups := make([]GroupSeeding, len(labels))
	for i, label := range labels {
		size := baseSize
		if remainder > 0 {
			size++
			remainder--
		}
		groups[i] = GroupSeeding{
			Label:        label,
			Participants: participants[cursor : cursor+size],
		}
		cursor += size
	}
	return groups
}

// roundRobinRounds schedules every pair exactly once using the circle method:
// the first player stays fixed while the rest rotate one seat per round. Odd
// fields get a bye slot whose pairings are dropped.
func roundRobinRounds(players []string) [][][2]string {
	list := append([]string(nil), players...)
	if len(list) <= 1 {
		return nil
	}
	if len(list)%2 == 1 {
		list = append(list, bye)
	}

	half := len(list) / 2
	rotation := append([]string(nil), list[1:]...)
	totalRounds := len(list) - 1

	rounds := make([][][2]string, 0, totalRounds)
	for round := 0; round < totalRounds; round++ {
		left := append([]string{list[0]}, rotation[:half-1]...)
		right := make([]string, 0, half)
		for i := len(rotation) - 1; i >= half-1; i-- {
			right = append(right, rotation[i])
		}

		var pairs [][2]string
		for i := 0; i < half; i++ {
			if left[i] != bye && right[i] != bye {
				pairs = append(pairs, [2]string{left[i], right[i]})
			}
		}
		rounds = append(rounds, pairs)

		rotation = append(rotation[1:], rotation[0])
	}
	return rounds
}

// GenerateSinglesPairings builds a budget-limited singles schedule. Whole
// round robin rounds are taken while they fit; the final partial round picks
// the pairings whose players have played the least, preferring a low maximum
// over a low sum and falling back to the original participant order.
func GenerateSinglesPairings(participantIDs []string, limit int) []Matchup {
	if len(participantIDs) < 2 || limit <= 0 {
		return nil
	}

	rounds := roundRobinRounds(participantIDs)
	total := 0
	for _, round := range rounds {
		total += len(round)
	}
	maxMatches := limit
	if total < maxMatches {
		maxMatches = total
	}

	position := make(map[string]int, len(participantIDs))
	for i, id := range participantIDs {
		position[id] = i
	}
	counts := make(map[string]int, len(participantIDs))

	var pairs []Matchup
	take := func(home, away string) {
		pairs = append(pairs, Matchup{Team1: []string{home}, Team2: []string{away}, Iteration: 1})
		counts[home]++
		counts[away]++
	}

	for _, round := range rounds {
		if len(pairs) >= maxMatches {
			break
		}
		if len(round) == 0 {
			continue
		}

		if len(round) <= maxMatches-len(pairs) {
			for _, pair := range round {
				take(pair[0], pair[1])
			}
			continue
		}

		available := append([][2]string(nil), round...)
		for len(pairs) < maxMatches && len(available) > 0 {
			sort.Slice(available, func(i, j int) bool {
				a, b := available[i], available[j]
				aMax := max(counts[a[0]], counts[a[1]])
				bMax := max(counts[b[0]], counts[b[1]])
				if aMax != bMax {
					return aMax < bMax
				}
				aSum := counts[a[0]] + counts[a[1]]
				bSum := counts[b[0]] + counts[b[1]]
				if aSum != bSum {
					return aSum < bSum
				}
				return position[a[0]] < position[b[0]]
			})
			selected := available[0]
			available = available[1:]
			take(selected[0], selected[1])
		}
	}
	return pairs
}

// GenerateDoublesPairings builds a randomized doubles schedule: shuffle, chunk
// into fours, and keep chunks that respect the per-player cap and have not
// been seen before. The attempt budget keeps small fields from spinning when
// no fresh combination remains.
func GenerateDoublesPairings(participantIDs []string, limit int, rng *rand.Rand) []Matchup {
	ids := append([]string(nil), participantIDs...)
	if len(ids) < 4 || limit <= 0 {
		return nil
	}

	counts := make(map[string]int, len(ids))
	maxPerPlayer := (limit*4 + len(ids) - 1) / len(ids)
	if maxPerPlayer < 1 {
		maxPerPlayer = 1
	}

	var matchups []Matchup
	seen := make(map[string]bool)

	for attempts := 0; len(matchups) < limit && attempts < limit*30; attempts++ {
		shuffled := append([]string(nil), ids...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		for i := 0; i+3 < len(shuffled) && len(matchups) < limit; i += 4 {
			team1 := []string{shuffled[i], shuffled[i+1]}
			team2 := []string{shuffled[i+2], shuffled[i+3]}
			if counts[team1[0]] >= maxPerPlayer || counts[team1[1]] >= maxPerPlayer ||
				counts[team2[0]] >= maxPerPlayer || counts[team2[1]] >= maxPerPlayer {
				continue
			}

			key := canonicalMatchupKey(team1, team2)
			if seen[key] {
				continue
			}
			seen[key] = true
			for _, id := range append(team1, team2...) {
				counts[id]++
			}
			matchups = append(matchups, Matchup{Team1: team1, Team2: team2, Iteration: 1})
		}
	}
	return matchups
}

// GenerateCompetitiveSinglesSchedule plays the full round robin the requested
// number of times, swapping sides on even iterations.
func GenerateCompetitiveSinglesSchedule(participantIDs []string, iterations int) []Matchup {
	if len(participantIDs) < 2 || iterations < 1 {
		return nil
	}

	rounds := roundRobinRounds(participantIDs)
	var matches []Matchup
	for iteration := 1; iteration <= iterations; iteration++ {
		swap := iteration%2 == 0
		for _, round := range rounds {
			for _, pair := range round {
				home, away := pair[0], pair[1]
				if swap {
					home, away = away, home
				}
				matches = append(matches, Matchup{Team1: []string{home}, Team2: []string{away}, Iteration: iteration})
			}
		}
	}
	return matches
}

// GenerateCompetitiveDoublesSchedule locks teams by pairing the strongest
// remaining player with the weakest, then round robins the teams the
// requested number of times, swapping sides on even iterations.
func GenerateCompetitiveDoublesSchedule(participants []Seed, iterations int) ([]Matchup, error) {
	if len(participants) < 4 || iterations < 1 {
		return nil, nil
	}
	if len(participants)%2 != 0 {
		return nil, fmt.Errorf("competitive doubles scheduling requires an even number of participants")
	}

	sorted := append([]Seed(nil), participants...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})

	teamCount := len(sorted) / 2
	teams := make([][]string, teamCount)
	for i := 0; i < teamCount; i++ {
		teams[i] = []string{sorted[i].PlayerID, sorted[len(sorted)-1-i].PlayerID}
	}

	labels := make([]string, teamCount)
	for i := range teams {
		labels[i] = strconv.Itoa(i)
	}
	rounds := roundRobinRounds(labels)

	var matches []Matchup
	for iteration := 1; iteration <= iterations; iteration++ {
		swap := iteration%2 == 0
		for _, round := range rounds {
			for _, pair := range round {
				homeIdx, _ := strconv.Atoi(pair[0])
				awayIdx, _ := strconv.Atoi(pair[1])
				home := append([]string(nil), teams[homeIdx]...)
				away := append([]string(nil), teams[awayIdx]...)
				if swap {
					home, away = away, home
				}
				matches = append(matches, Matchup{Team1: home, Team2: away, Iteration: iteration})
			}
		}
	}
	return matches, nil
}

func canonicalTeamKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ":")
}

func canonicalMatchupKey(team1, team2 []string) string {
	keys := []string{canonicalTeamKey(team1), canonicalTeamKey(team2)}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}
