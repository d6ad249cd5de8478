package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	leaderboardMode string
	historyPlayer   string
	historyMode     string
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(tournamentsCmd)
	rootCmd.AddCommand(metricsCmd)

	leaderboardCmd.Flags().StringVar(&leaderboardMode, "mode", "OVERALL", "Rating mode (OVERALL, SINGLES or DOUBLES)")
	historyCmd.Flags().StringVar(&historyPlayer, "player", "", "Player id")
	historyCmd.Flags().StringVar(&historyMode, "mode", "OVERALL", "Rating mode (OVERALL, SINGLES or DOUBLES)")
	historyCmd.MarkFlagRequired("player")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the league",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the confirmed matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the rating leaderboard for one mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard?mode=" + url.QueryEscape(leaderboardMode))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the rating history of a player",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/history?player=" + url.QueryEscape(historyPlayer) + "&mode=" + url.QueryEscape(historyMode))
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Trigger a full rating recompute",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/recompute")
	},
}

var tournamentsCmd = &cobra.Command{
	Use:   "tournaments",
	Short: "List the tournaments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/tournaments")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
