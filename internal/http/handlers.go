package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/beniksen/topspin/internal/league"
	"github.com/beniksen/topspin/internal/pubsub"
	"github.com/beniksen/topspin/internal/tournament"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func respondWithJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response to JSON", "error", err)
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Error("Failed to decode request body", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// decodePushData unwraps a Pub/Sub push delivery: the JSON envelope carries the
// MessagePack payload base64-encoded in message.data.
func decodePushData(r *http.Request) ([]byte, error) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	log.Debug("Received push message", "body", string(bodyBytes))
	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wrapper JSON: %w", err)
	}
	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return rawData, nil
}

// playerNames resolves player ids to display names for notifications. Unknown
// ids fall back to the raw id in the formatter, so a lookup failure is not fatal.
func (s *Server) playerNames(ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	players, err := s.Store.GetPlayers(ids)
	if err != nil {
		log.Warn("Failed to resolve player names", "error", err)
		return names
	}
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return names
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("active") == "true"
		players, err := s.Store.ListPlayers(activeOnly)
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		respondWithJSON(w, players)
	}
}

func (s *Server) UpsertPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if req.ID == "" || req.Name == "" {
			http.Error(w, "Both id and name are required", http.StatusBadRequest)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would upsert player", "id", req.ID, "name", req.Name)
			fmt.Fprint(w, "OK")
			return
		}
		if err := s.Store.UpsertPlayer(req.ID, req.Name); err != nil {
			http.Error(w, "Failed to upsert player", http.StatusInternalServerError)
			log.Error("Failed to upsert player", "id", req.ID, "error", err)
			return
		}
		log.Info("Upserted player", "id", req.ID, "name", req.Name)
		fmt.Fprint(w, "OK")
	}
}

func (s *Server) SetPlayerActiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     string `json:"id"`
			Active bool   `json:"active"`
		}
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if req.ID == "" {
			http.Error(w, "Player id is required", http.StatusBadRequest)
			return
		}
		if err := s.Store.SetPlayerActive(req.ID, req.Active); err != nil {
			http.Error(w, "Failed to update player", http.StatusInternalServerError)
			log.Error("Failed to update player active flag", "id", req.ID, "error", err)
			return
		}
		log.Info("Updated player active flag", "id", req.ID, "active", req.Active)
		fmt.Fprint(w, "OK")
	}
}

func (s *Server) RatingHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player")
		if playerID == "" {
			http.Error(w, "Query parameter 'player' is required", http.StatusBadRequest)
			return
		}
		mode := league.Mode(r.URL.Query().Get("mode"))
		if mode == "" {
			mode = league.ModeOverall
		}
		history, err := s.Store.GetRatingHistory(playerID, mode)
		if err != nil {
			http.Error(w, "Failed to get rating history", http.StatusInternalServerError)
			log.Error("Failed to get rating history", "player", playerID, "error", err)
			return
		}
		respondWithJSON(w, history)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var from *time.Time
		if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
			since, err := time.Parse(time.RFC3339, sinceStr)
			if err != nil {
				http.Error(w, "Invalid 'since' parameter, expected RFC3339", http.StatusBadRequest)
				return
			}
			from = &since
		}
		matches, err := s.Store.GetConfirmedMatches(from)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		respondWithJSON(w, matches)
	}
}

func (s *Server) SubmitMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Type         league.MatchType `json:"match_type"`
			Team1        []string         `json:"team1"`
			Team2        []string         `json:"team2"`
			Team1Score   int              `json:"team1_score"`
			Team2Score   int              `json:"team2_score"`
			TargetPoints int              `json:"target_points"`
			WinByMargin  int              `json:"win_by_margin"`
			PlayedAt     time.Time        `json:"played_at"`
		}
		if !decodeJSONBody(w, r, &req) {
			return
		}

		match := &league.Match{
			Type:         req.Type,
			Team1:        req.Team1,
			Team2:        req.Team2,
			Team1Score:   req.Team1Score,
			Team2Score:   req.Team2Score,
			TargetPoints: req.TargetPoints,
			WinByMargin:  req.WinByMargin,
			PlayedAt:     req.PlayedAt,
		}
		if match.TargetPoints == 0 {
			match.TargetPoints = league.DefaultTargetPoints
		}
		if match.WinByMargin == 0 {
			match.WinByMargin = league.DefaultWinByMargin
		}
		if err := league.ValidateMatch(match); err != nil {
			http.Error(w, fmt.Sprintf("Invalid match: %v", err), http.StatusBadRequest)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would submit match", "team1", match.Team1, "team2", match.Team2)
			respondWithJSON(w, match)
			return
		}
		if err := s.Store.InsertMatch(match); err != nil {
			http.Error(w, "Failed to save match", http.StatusInternalServerError)
			log.Error("Failed to insert match", "error", err)
			return
		}
		log.Info("Match submitted", "matchID", match.ID, "status", match.Status)
		respondWithJSON(w, match)
	}
}

func (s *Server) ConfirmMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID string `json:"id"`
		}
		if !decodeJSONBody(w, r, &req) {
			return
		}
		match, err := s.Store.GetMatch(req.ID)
		if err != nil {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		if match.Status == league.MatchStatusConfirmed {
			http.Error(w, "Match is already confirmed", http.StatusConflict)
			return
		}
		if match.Status == league.MatchStatusCancelled {
			http.Error(w, "Match is cancelled", http.StatusConflict)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would confirm match", "matchID", req.ID)
			fmt.Fprint(w, "OK")
			return
		}
		if err := s.Store.UpdateMatchStatus(req.ID, league.MatchStatusConfirmed); err != nil {
			http.Error(w, "Failed to confirm match", http.StatusInternalServerError)
			log.Error("Failed to confirm match", "matchID", req.ID, "error", err)
			return
		}
		log.Info("Match confirmed", "matchID", req.ID)
		if err := s.pubsub.SendMessage(string(pubsub.EventRateMatch), pubsub.RateMatchPayload{MatchID: req.ID}); err != nil {
			log.Error("Failed to publish rate-match event", "matchID", req.ID, "error", err)
		}
		fmt.Fprint(w, "OK")
	}
}

func (s *Server) EditMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID         string `json:"id"`
			Team1Score int    `json:"team1_score"`
			Team2Score int    `json:"team2_score"`
		}
		if !decodeJSONBody(w, r, &req) {
			return
		}
		match, err := s.Store.GetMatch(req.ID)
		if err != nil {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		edited := *match
		edited.Team1Score = req.Team1Score
		edited.Team2Score = req.Team2Score
		if err := league.ValidateMatch(&edited); err != nil {
			http.Error(w, fmt.Sprintf("Invalid score: %v", err), http.StatusBadRequest)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would edit match score", "matchID", req.ID)
			fmt.Fprint(w, "OK")
			return
		}
		if err := s.Store.UpdateMatchScore(req.ID, req.Team1Score, req.Team2Score); err != nil {
			http.Error(w, "Failed to update match", http.StatusInternalServerError)
			log.Error("Failed to update match score", "matchID", req.ID, "error", err)
			return
		}
		log.Info("Match score edited", "matchID", req.ID, "team1Score", req.Team1Score, "team2Score", req.Team2Score)
		// Ratings are path dependent. An edited confirmed result invalidates every
		// rating computed after it, so the whole league is replayed.
		if match.Status == league.MatchStatusConfirmed {
			if err := s.pubsub.SendMessage(string(pubsub.EventRecomputeAll), pubsub.RecomputePayload{Reason: "match edited"}); err != nil {
				log.Error("Failed to publish recompute event", "error", err)
			}
		}
		fmt.Fprint(w, "OK")
	}
}

func (s *Server) CancelMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID string `json:"id"`
		}
		if !decodeJSONBody(w, r, &req) {
			return
		}
		match, err := s.Store.GetMatch(req.ID)
		if err != nil {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would cancel match", "matchID", req.ID)
			fmt.Fprint(w, "OK")
			return
		}
		if err := s.Store.UpdateMatchStatus(req.ID, league.MatchStatusCancelled); err != nil {
			http.Error(w, "Failed to cancel match", http.StatusInternalServerError)
			log.Error("Failed to cancel match", "matchID", req.ID, "error", err)
			return
		}
		log.Info("Match cancelled", "matchID", req.ID)
		if match.Status == league.MatchStatusConfirmed {
			if err := s.pubsub.SendMessage(string(pubsub.EventRecomputeAll), pubsub.RecomputePayload{Reason: "match cancelled"}); err != nil {
				log.Error("Failed to publish recompute event", "error", err)
			}
		}
		fmt.Fprint(w, "OK")
	}
}

// LeaderboardHandler serves the rating leaderboard for one mode. With
// announce=true the leaderboard is also posted to the notification channel.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := league.Mode(r.URL.Query().Get("mode"))
		if mode == "" {
			mode = league.ModeOverall
		}
		players, err := s.Store.Leaderboard(mode)
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err)
			return
		}
		if r.URL.Query().Get("announce") == "true" {
			if err := s.Notifier.SendLeaderboard(mode, players, isDryRunFromContext(r)); err != nil {
				log.Error("Failed to announce leaderboard", "error", err)
			}
		}
		respondWithJSON(w, players)
	}
}

// RecomputeHandler triggers a rating replay. An optional 'from' parameter
// (RFC3339) restricts the replay to matches played at or after that time. It
// doubles as the push target for recompute events, the delivery body carries
// nothing we need.
func (s *Server) RecomputeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var from *time.Time
		if fromStr := r.URL.Query().Get("from"); fromStr != "" {
			parsed, err := time.Parse(time.RFC3339, fromStr)
			if err != nil {
				http.Error(w, "Invalid 'from' parameter, expected RFC3339", http.StatusBadRequest)
				return
			}
			from = &parsed
		}
		log.Info("Starting rating recompute...", "from", from)
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would recompute ratings")
			fmt.Fprintln(w, "Recompute skipped.")
			return
		}
		if err := s.Engine.Recompute(from); err != nil {
			http.Error(w, "Failed to recompute ratings", http.StatusInternalServerError)
			log.Error("Rating recompute failed", "error", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Recompute completed.")
		log.Info("Rating recompute finished.")
	}
}

func (s *Server) RateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, err := decodePushData(r)
		if err != nil {
			log.Error("Failed to decode push message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}
		payload := pubsub.RateMatchPayload{}
		if err := s.pubsub.ProcessMessage(rawData, &payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would rate match", "matchID", payload.MatchID)
			w.Write([]byte("OK"))
			return
		}
		if err := s.Engine.ApplyRatingsForMatch(payload.MatchID); err != nil {
			log.Error("Failed to apply ratings", "matchID", payload.MatchID, "error", err)
			http.Error(w, "Failed to apply ratings", http.StatusInternalServerError)
			return
		}
		if err := s.pubsub.SendMessage(string(pubsub.EventNotifyResult), pubsub.NotifyResultPayload{MatchID: payload.MatchID}); err != nil {
			log.Error("Failed to publish notify-result event", "matchID", payload.MatchID, "error", err)
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) NotifyResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, err := decodePushData(r)
		if err != nil {
			log.Error("Failed to decode push message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}
		payload := pubsub.NotifyResultPayload{}
		if err := s.pubsub.ProcessMessage(rawData, &payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		match, err := s.Store.GetMatch(payload.MatchID)
		if err != nil {
			log.Error("Failed to load match for notification", "matchID", payload.MatchID, "error", err)
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		names := s.playerNames(match.Participants())
		if err := s.Notifier.SendResultNotification(match, names, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to notify result", "matchID", payload.MatchID, "error", err)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) NotifyStandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, err := decodePushData(r)
		if err != nil {
			log.Error("Failed to decode push message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}
		payload := pubsub.NotifyStandingsPayload{}
		if err := s.pubsub.ProcessMessage(rawData, &payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		detail, err := s.Tournaments.Get(payload.TournamentID)
		if err != nil {
			log.Error("Failed to load tournament for standings", "tournamentID", payload.TournamentID, "error", err)
			http.Error(w, "Tournament not found", http.StatusNotFound)
			return
		}
		var ids []string
		for _, group := range detail.Groups {
			for _, p := range group.Participants {
				ids = append(ids, p.PlayerID)
			}
		}
		names := s.playerNames(ids)
		if err := s.Notifier.SendStandings(detail, names, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to notify standings", "tournamentID", payload.TournamentID, "error", err)
			http.Error(w, "Failed to notify standings", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) ListTournamentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournaments, err := s.Tournaments.List()
		if err != nil {
			http.Error(w, "Failed to get tournaments", http.StatusInternalServerError)
			log.Error("Failed to list tournaments", "error", err)
			return
		}
		respondWithJSON(w, tournaments)
	}
}

func (s *Server) CreateTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name                 string    `json:"name"`
			Mode                 string    `json:"mode"`
			Format               string    `json:"format"`
			MatchCountMode       string    `json:"match_count_mode"`
			MatchesPerPlayer     int       `json:"matches_per_player"`
			GamesPerGroup        int       `json:"games_per_group"`
			RoundRobinIterations int       `json:"round_robin_iterations"`
			GroupLabels          []string  `json:"group_labels"`
			StartAt              time.Time `json:"start_at"`
			EndAt                time.Time `json:"end_at"`
			ParticipantIDs       []string  `json:"participant_ids"`
		}
		if !decodeJSONBody(w, r, &req) {
			return
		}
		params := tournament.CreateParams{
			Name:                 req.Name,
			Mode:                 tournament.Mode(req.Mode),
			Format:               tournament.Format(req.Format),
			MatchCountMode:       tournament.MatchCountMode(req.MatchCountMode),
			MatchesPerPlayer:     req.MatchesPerPlayer,
			GamesPerGroup:        req.GamesPerGroup,
			RoundRobinIterations: req.RoundRobinIterations,
			GroupLabels:          req.GroupLabels,
			StartAt:              req.StartAt,
			EndAt:                req.EndAt,
			ParticipantIDs:       req.ParticipantIDs,
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would create tournament", "name", params.Name, "participants", len(params.ParticipantIDs))
			fmt.Fprint(w, "OK")
			return
		}
		t, err := s.Tournaments.Create(params)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to create tournament: %v", err), http.StatusBadRequest)
			log.Error("Failed to create tournament", "name", params.Name, "error", err)
			return
		}
		log.Info("Tournament created", "tournamentID", t.ID, "name", t.Name)
		if detail, err := s.Tournaments.Get(t.ID); err == nil {
			matchCount := 0
			for _, group := range detail.Groups {
				matchCount += len(group.Matches)
			}
			if err := s.Notifier.SendTournamentCreated(t, len(detail.Groups), matchCount, false); err != nil {
				log.Error("Failed to announce tournament", "tournamentID", t.ID, "error", err)
			}
		}
		respondWithJSON(w, t)
	}
}

func (s *Server) GetTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Query parameter 'id' is required", http.StatusBadRequest)
			return
		}
		detail, err := s.Tournaments.Get(id)
		if err != nil {
			http.Error(w, "Tournament not found", http.StatusNotFound)
			log.Error("Failed to get tournament", "tournamentID", id, "error", err)
			return
		}
		respondWithJSON(w, detail)
	}
}

func (s *Server) ReportTournamentMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TournamentID      string `json:"tournament_id"`
			TournamentMatchID string `json:"tournament_match_id"`
			Team1Score        int    `json:"team1_score"`
			Team2Score        int    `json:"team2_score"`
		}
		if !decodeJSONBody(w, r, &req) {
			return
		}
		params := tournament.ReportParams{
			TournamentID:      req.TournamentID,
			TournamentMatchID: req.TournamentMatchID,
			Team1Score:        req.Team1Score,
			Team2Score:        req.Team2Score,
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would report tournament result", "tournamentMatchID", params.TournamentMatchID)
			fmt.Fprint(w, "OK")
			return
		}
		match, err := s.Tournaments.Report(params)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to report result: %v", err), http.StatusBadRequest)
			log.Error("Failed to report tournament result", "tournamentMatchID", params.TournamentMatchID, "error", err)
			return
		}
		log.Info("Tournament result reported", "tournamentID", params.TournamentID, "matchID", match.ID)
		if err := s.pubsub.SendMessage(string(pubsub.EventNotifyResult), pubsub.NotifyResultPayload{MatchID: match.ID}); err != nil {
			log.Error("Failed to publish notify-result event", "matchID", match.ID, "error", err)
		}
		if err := s.pubsub.SendMessage(string(pubsub.EventNotifyStandings), pubsub.NotifyStandingsPayload{TournamentID: params.TournamentID}); err != nil {
			log.Error("Failed to publish notify-standings event", "tournamentID", params.TournamentID, "error", err)
		}
		respondWithJSON(w, match)
	}
}

func (s *Server) CancelTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID string `json:"id"`
		}
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would cancel tournament", "tournamentID", req.ID)
			fmt.Fprint(w, "OK")
			return
		}
		if err := s.Tournaments.Cancel(req.ID); err != nil {
			http.Error(w, fmt.Sprintf("Failed to cancel tournament: %v", err), http.StatusBadRequest)
			log.Error("Failed to cancel tournament", "tournamentID", req.ID, "error", err)
			return
		}
		log.Info("Tournament cancelled", "tournamentID", req.ID)
		fmt.Fprint(w, "OK")
	}
}
