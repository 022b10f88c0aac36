// Command autoplay plays Agro Hegemony games against a running agrosim
// server with a heuristic player and reports outcome statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/agro-hegemony/internal/autoplay"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	apiURL := flag.String("api", envOrDefault("AGROSIM_API_URL", "http://localhost:8080"), "agrosim API base URL")
	games := flag.Int("games", envIntOrDefault("AUTOPLAY_GAMES", 10), "number of games to play")
	ruleset := flag.String("ruleset", "plots", "ruleset: territories or plots")
	role := flag.String("role", "family_farmer", "role to play")
	seed := flag.Int64("seed", 1, "seed of the first game; later games add one")
	steps := flag.Int("steps", 5000, "maximum actions per game")
	journal := flag.String("journal", "", "write the step journal to this file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("autoplay starting", "api_url", *apiURL, "games", *games, "ruleset", *ruleset, "role", *role)
	waitForAPI(ctx, *apiURL)

	player := autoplay.NewPlayer(*apiURL)
	player.MaxSteps = *steps
	if *journal != "" {
		player.Journal = autoplay.LoadJournal(*journal)
	}

	var (
		victories   = map[string]int{}
		defeats     int
		unfinished  int
		failed      int
		totalSteps  int
		totalTurns  int
		totalRefuse int
	)
	start := time.Now()
	for i := 0; i < *games; i++ {
		res, err := player.Play(ctx, *ruleset, *role, *seed+int64(i))
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("game failed", "index", i, "error", err)
			failed++
			continue
		}
		totalSteps += res.Steps
		totalTurns += res.Turns
		totalRefuse += res.Refused
		switch {
		case !res.Finished:
			unfinished++
		case res.Outcome.Victory():
			victories[res.Outcome.VictoryKind]++
		default:
			defeats++
		}
		slog.Info("game finished",
			"game", res.GameID,
			"turns", res.Turns,
			"steps", res.Steps,
			"outcome", outcomeLabel(res),
		)
	}

	if *journal != "" {
		if err := player.Journal.Save(*journal); err != nil {
			slog.Error("failed to save journal", "error", err)
		}
	}

	played := *games - failed
	fmt.Printf("\nPlayed %d games in %s (%s actions, %s refused, %s turns)\n",
		played, time.Since(start).Round(time.Millisecond),
		humanize.Comma(int64(totalSteps)), humanize.Comma(int64(totalRefuse)), humanize.Comma(int64(totalTurns)))
	kinds := make([]string, 0, len(victories))
	for k := range victories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  victory %-24s %d\n", k, victories[k])
	}
	fmt.Printf("  defeat                           %d\n", defeats)
	fmt.Printf("  unfinished                       %d\n", unfinished)
	if failed > 0 {
		fmt.Printf("  failed                           %d\n", failed)
	}
	if played > 0 {
		fmt.Printf("Average game length: %s turns\n", humanize.FormatFloat("#,###.#", float64(totalTurns)/float64(played)))
	}
	fmt.Print(player.Journal.Summary())
}

func outcomeLabel(res *autoplay.Result) string {
	if !res.Finished || res.Outcome == nil {
		return "unfinished"
	}
	if res.Outcome.Victory() {
		return "victory:" + res.Outcome.VictoryKind
	}
	return "defeat: " + res.Outcome.Reason
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Exits after 2 minutes if the API never becomes ready.
func waitForAPI(ctx context.Context, apiURL string) {
	backoff := time.Second
	maxBackoff := 15 * time.Second
	deadline := time.Now().Add(2 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("agrosim API is ready")
				return
			}
		}
		if time.Now().After(deadline) {
			slog.Error("agrosim API did not become ready within 2 minutes")
			os.Exit(1)
		}
		slog.Info("agrosim not ready, retrying...", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			os.Exit(1)
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
