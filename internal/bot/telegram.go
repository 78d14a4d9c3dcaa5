package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"benchcoach/internal/domain"
	"benchcoach/internal/service"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(scoringService *service.ScoringService) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/recs", func(c tele.Context) error {
		date, err := dateArg(c.Args())
		if err != nil {
			return c.Send("Usage: /recs [YYYY-MM-DD]")
		}
		recs, err := scoringService.GetRecommendations(context.Background(), date)
		if err != nil {
			return c.Send(fmt.Sprintf("Error scoring slate for %s: %v", date.Format("2006-01-02"), err))
		}
		if len(recs) == 0 {
			return c.Send(fmt.Sprintf("No rostered players on %s", date.Format("2006-01-02")))
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Sit/start for %s\n", date.Format("2006-01-02"))
		for _, r := range recs {
			fmt.Fprintf(&sb, "%s: %s (%.3f)\n", r.PlayerName, r.Recommendation, r.FinalScore)
		}
		return c.Send(sb.String())
	})

	b.Handle("/player", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /player <player-id> [YYYY-MM-DD]")
		}
		date, err := dateArg(args[1:])
		if err != nil {
			return c.Send("Usage: /player <player-id> [YYYY-MM-DD]")
		}
		recs, err := scoringService.GetRecommendations(context.Background(), date)
		if err != nil {
			return c.Send(fmt.Sprintf("Error scoring slate for %s: %v", date.Format("2006-01-02"), err))
		}
		for _, r := range recs {
			if r.PlayerID == args[0] {
				return c.Send(formatPlayer(r))
			}
		}
		return c.Send(fmt.Sprintf("No recommendation for %s on %s", args[0], date.Format("2006-01-02")))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func dateArg(args []string) (time.Time, error) {
	if len(args) == 0 {
		return domain.DateOnly(time.Now().UTC()), nil
	}
	return time.ParseInLocation("2006-01-02", args[0], time.UTC)
}

func formatPlayer(r domain.Recommendation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s (score %.3f)\n", r.PlayerName, r.Recommendation, r.FinalScore)
	if r.Ensemble != nil {
		fmt.Fprintf(&sb, "Ensemble: %.2f pts (confidence %.2f)\n", r.Ensemble.PredEnsemble, r.Ensemble.Confidence)
	}
	for _, line := range topFactors(r.Factors, 5) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// topFactors returns the n largest contributions by magnitude, formatted.
func topFactors(factors map[string]domain.FactorLine, n int) []string {
	type entry struct {
		name string
		line domain.FactorLine
	}
	entries := make([]entry, 0, len(factors))
	for name, line := range factors {
		entries = append(entries, entry{name, line})
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && abs(entries[j].line.Contribution) > abs(entries[j-1].line.Contribution); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s: %+.3f", e.name, e.line.Contribution))
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
