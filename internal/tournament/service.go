package tournament

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/beniksen/topspin/internal/league"
	"github.com/beniksen/topspin/internal/metrics"
	"github.com/beniksen/topspin/internal/rating"
)

type service struct {
	store   Store
	players league.Store
	engine  rating.Engine
	metrics metrics.Metrics
	rng     *rand.Rand
}

// NewService wires the tournament orchestration on top of the tournament
// store, the league store and the rating engine. The rng drives doubles
// pairing and is injected so tests can fix the seed.
func NewService(store Store, players league.Store, engine rating.Engine, m metrics.Metrics, rng *rand.Rand) Service {
	return &service{store: store, players: players, engine: engine, metrics: m, rng: rng}
}

func (s *service) Create(params CreateParams) (*Tournament, error) {
	if params.Format == "" {
		params.Format = FormatStandard
	}
	if params.MatchCountMode == "" {
		params.MatchCountMode = CountPerPlayer
	}
	if params.MatchesPerPlayer == 0 {
		params.MatchesPerPlayer = DefaultMatchesPerPlayer
	}
	if params.GamesPerGroup == 0 {
		params.GamesPerGroup = DefaultGamesPerGroup
	}
	if params.RoundRobinIterations < 1 {
		params.RoundRobinIterations = 1
	}

	if err := validateCreateParams(params); err != nil {
		return nil, err
	}

	seeds, err := s.loadSeeds(params.Mode, params.ParticipantIDs)
	if err != nil {
		return nil, err
	}
	groupSeedings := DistributeIntoGroups(seeds, params.GroupLabels)

	t := &Tournament{
		Name:                 params.Name,
		Mode:                 params.Mode,
		Format:               params.Format,
		MatchCountMode:       params.MatchCountMode,
		RoundRobinIterations: params.RoundRobinIterations,
		Status:               StatusScheduled,
		StartAt:              params.StartAt,
		EndAt:                params.EndAt,
	}
	if params.Format != FormatCompetitiveMonthly {
		if params.MatchCountMode == CountPerPlayer {
			v := params.MatchesPerPlayer
			t.MatchesPerPlayer = &v
		} else {
			v := params.GamesPerGroup
			t.GamesPerGroup = &v
		}
	}

	var groups []*Group
	var matches []*Match
	for _, seeding := range groupSeedings {
		group := &Group{ID: uuid.NewString(), Name: seeding.Label, TableLabel: seeding.Label}
		for i, seed := range seeding.Participants {
			group.Participants = append(group.Participants, Participant{PlayerID: seed.PlayerID, Seed: i + 1})
		}
		groups = append(groups, group)

		matchups, err := s.scheduleGroup(params, seeding)
		if err != nil {
			return nil, err
		}
		scheduledAt := params.StartAt
		for _, matchup := range matchups {
			matches = append(matches, &Match{
				GroupID:     group.ID,
				Iteration:   matchup.Iteration,
				Team1:       matchup.Team1,
				Team2:       matchup.Team2,
				Status:      MatchScheduled,
				ScheduledAt: &scheduledAt,
			})
		}

		if params.Format != FormatCompetitiveMonthly && params.MatchCountMode == CountPerPlayer {
			want := params.MatchesPerPlayer * len(seeding.Participants) / 2
			if len(matchups) < want {
				log.Warn("Group schedule is under budget",
					"group", seeding.Label, "scheduled", len(matchups), "requested", want)
			}
		}
	}

	if err := s.store.CreateTournament(t, groups, matches); err != nil {
		return nil, err
	}
	s.metrics.IncTournamentsCreated()
	return t, nil
}

func (s *service) Report(params ReportParams) (*league.Match, error) {
	tm, err := s.store.GetMatch(params.TournamentMatchID)
	if err != nil {
		return nil, err
	}
	if tm.TournamentID != params.TournamentID {
		return nil, fmt.Errorf("tournament match %s does not belong to tournament %s", params.TournamentMatchID, params.TournamentID)
	}
	if tm.Status == MatchPlayed {
		return nil, fmt.Errorf("matchup %s has already been reported", tm.ID)
	}
	if tm.Status == MatchCancelled {
		return nil, fmt.Errorf("matchup %s has been cancelled", tm.ID)
	}

	t, err := s.store.GetTournament(params.TournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusCancelled || t.Status == StatusCompleted {
		return nil, fmt.Errorf("tournament %s is not accepting results (status %s)", t.ID, t.Status)
	}

	matchType := league.MatchTypeSingles
	if t.Mode == ModeDoubles {
		matchType = league.MatchTypeDoubles
	}
	playedAt := time.Now()
	if tm.ScheduledAt != nil {
		playedAt = *tm.ScheduledAt
	}

	match := &league.Match{
		Type:              matchType,
		Status:            league.MatchStatusConfirmed,
		Team1:             tm.Team1,
		Team2:             tm.Team2,
		Team1Score:        params.Team1Score,
		Team2Score:        params.Team2Score,
		PlayedAt:          playedAt,
		TournamentMatchID: &tm.ID,
	}
	if err := league.ValidateMatch(match); err != nil {
		return nil, err
	}

	if err := s.players.InsertMatch(match); err != nil {
		return nil, err
	}
	if err := s.store.MarkMatchPlayed(tm.ID, match.ID); err != nil {
		return nil, err
	}
	if err := s.engine.ApplyRatingsForMatch(match.ID); err != nil {
		return nil, err
	}

	if t.Status == StatusScheduled {
		if err := s.store.UpdateStatus(t.ID, StatusActive); err != nil {
			return nil, err
		}
	}

	remaining, err := s.store.CountUnplayed(t.ID)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		if err := s.store.UpdateStatus(t.ID, StatusCompleted); err != nil {
			return nil, err
		}
		log.Info("Tournament completed", "id", t.ID, "name", t.Name)
	}

	return match, nil
}

func (s *service) Get(id string) (*Detail, error) {
	t, err := s.store.GetTournament(id)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroups(id)
	if err != nil {
		return nil, err
	}
	matches, err := s.store.ListMatches(id)
	if err != nil {
		return nil, err
	}

	matchesByGroup := make(map[string][]*Match)
	for _, m := range matches {
		matchesByGroup[m.GroupID] = append(matchesByGroup[m.GroupID], m)
	}

	detail := &Detail{Tournament: *t}
	for _, g := range groups {
		participantIDs := make([]string, 0, len(g.Participants))
		for _, p := range g.Participants {
			participantIDs = append(participantIDs, p.PlayerID)
		}
		groupMatches := matchesByGroup[g.ID]
		detail.Groups = append(detail.Groups, GroupDetail{
			Group:      *g,
			Matches:    groupMatches,
			Placements: CalculatePlacementsForGroup(t.Mode, participantIDs, groupMatches),
		})
	}
	return detail, nil
}

func (s *service) List() ([]*Tournament, error) {
	return s.store.ListTournaments()
}

func (s *service) Cancel(id string) error {
	t, err := s.store.GetTournament(id)
	if err != nil {
		return err
	}
	if t.Status == StatusCompleted {
		return fmt.Errorf("tournament %s has already completed", id)
	}
	return s.store.UpdateStatus(id, StatusCancelled)
}

func validateCreateParams(params CreateParams) error {
	if len(params.ParticipantIDs) < 2 {
		return fmt.Errorf("tournament must include at least two participants")
	}
	if len(params.GroupLabels) == 0 {
		return fmt.Errorf("provide at least one group label")
	}
	seen := make(map[string]bool, len(params.GroupLabels))
	for _, label := range params.GroupLabels {
		if seen[label] {
			return fmt.Errorf("group labels must be unique")
		}
		seen[label] = true
	}
	if !params.StartAt.Before(params.EndAt) {
		return fmt.Errorf("end time must be after the start time")
	}
	if params.Mode != ModeSingles && params.Mode != ModeDoubles {
		return fmt.Errorf("unknown tournament mode %q", params.Mode)
	}
	if params.Mode == ModeDoubles && len(params.ParticipantIDs) < 4 {
		return fmt.Errorf("doubles tournaments require at least four participants")
	}
	if params.MatchCountMode == CountPerPlayer && params.MatchesPerPlayer < 1 {
		return fmt.Errorf("matches per player must be at least 1")
	}
	if params.MatchCountMode == CountTotalMatches && params.GamesPerGroup < 1 {
		return fmt.Errorf("games per group must be at least 1")
	}
	if params.Format == FormatCompetitiveMonthly {
		if params.MatchCountMode != CountPerPlayer {
			return fmt.Errorf("competitive monthly tournaments always allocate matches per player")
		}
		if params.RoundRobinIterations > MaxRoundRobinIterations {
			return fmt.Errorf("round robin iterations are limited to %d per tournament", MaxRoundRobinIterations)
		}
	}
	return nil
}

// loadSeeds resolves the participants and orders them by the mode's rating,
// strongest first.
func (s *service) loadSeeds(mode Mode, participantIDs []string) ([]Seed, error) {
	players, err := s.players.GetPlayers(participantIDs)
	if err != nil {
		return nil, err
	}

	seeds := make([]Seed, len(players))
	for i, p := range players {
		seedRating := p.Singles.Rating
		if mode == ModeDoubles {
			seedRating = p.Doubles.Rating
		}
		seeds[i] = Seed{PlayerID: p.ID, Rating: seedRating}
	}
	sort.SliceStable(seeds, func(i, j int) bool {
		return seeds[i].Rating > seeds[j].Rating
	})
	return seeds, nil
}

func (s *service) scheduleGroup(params CreateParams, seeding GroupSeeding) ([]Matchup, error) {
	ids := make([]string, len(seeding.Participants))
	for i, seed := range seeding.Participants {
		ids[i] = seed.PlayerID
	}

	if params.Format == FormatCompetitiveMonthly {
		if params.Mode == ModeSingles {
			if len(ids) < 2 {
				return nil, fmt.Errorf("competitive singles groups require at least two participants")
			}
			return GenerateCompetitiveSinglesSchedule(ids, params.RoundRobinIterations), nil
		}
		if len(ids) < 4 || len(ids)%2 != 0 {
			return nil, fmt.Errorf("competitive doubles groups require an even number of participants (minimum four)")
		}
		return GenerateCompetitiveDoublesSchedule(seeding.Participants, params.RoundRobinIterations)
	}

	if params.Mode == ModeSingles {
		combos := len(ids) * (len(ids) - 1) / 2
		limit := params.GamesPerGroup
		if params.MatchCountMode == CountPerPlayer {
			limit = params.MatchesPerPlayer * len(ids) / 2
		}
		if combos < limit {
			limit = combos
		}
		return GenerateSinglesPairings(ids, limit), nil
	}

	target := params.GamesPerGroup
	if params.MatchCountMode == CountPerPlayer {
		target = (params.MatchesPerPlayer*len(ids) + 3) / 4
	}
	return GenerateDoublesPairings(ids, target, s.rng), nil
}
