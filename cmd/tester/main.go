// Command tester runs a complete game in-process with autoplay agents and
// prints the event stream, for exercising the engine without a Nakama
// deployment.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"

	"viralspiral/internal/app"
	"viralspiral/internal/autoplay"
	"viralspiral/internal/config"
	"viralspiral/internal/content"
	"viralspiral/internal/domain"
)

var playerNames = []string{"ada", "grace", "linus", "margaret", "dennis", "barbara"}

func main() {
	playersFlag := flag.Int("players", 0, "number of player slots (default from config)")
	seedFlag := flag.Int64("seed", 0, "random seed, 0 means time-based")
	maxTicks := flag.Int("max-ticks", 10000, "abort after this many scheduler ticks")
	verbose := flag.Bool("verbose", false, "print every event, not just round milestones")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		pterm.Debug.Println("Loaded environment from .env")
	}
	if path := os.Getenv("VIRALSPIRAL_CONFIG"); path != "" {
		if err := config.LoadGameConfig(path); err != nil {
			pterm.Warning.Printfln("Could not load config %s: %v", path, err)
		}
	}

	seed := *seedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	players := *playersFlag
	if players == 0 {
		players = config.DefaultPlayers()
	}
	if players > len(playerNames) {
		players = len(playerNames)
	}

	if err := run(players, seed, *maxTicks, *verbose); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func run(players int, seed int64, maxTicks int, verbose bool) error {
	pterm.DefaultSection.Println("Viral Spiral tester")
	pterm.Info.Printfln("players=%d seed=%d", players, seed)

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	game, enc, err := app.NewGame("tester", "", players, catalog, config.Rules())
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	svc := app.NewService(rand.New(rand.NewSource(seed)), enc)
	sched := app.NewScheduler(svc, game, domain.NewDeckSelector(rand.New(rand.NewSource(seed+1))))

	registry := app.NewRegistry(config.MaxGames())
	if err := registry.Register(&app.Session{Game: game, Svc: svc, Sched: sched}); err != nil {
		return err
	}
	defer registry.Evict(game.ID)

	agents := make([]*autoplay.Agent, 0, players)
	for i := 0; i < players; i++ {
		name := playerNames[i]
		p, events, err := svc.Join(game, name, "tester")
		if err != nil {
			return fmt.Errorf("seating %s: %w", name, err)
		}
		printEvents(game, events, verbose)
		agents = append(agents, &autoplay.Agent{
			PlayerID: p.ID,
			Name:     name,
			Strategy: autoplay.NewRandomBrain(rand.New(rand.NewSource(seed + int64(i) + 2))),
		})
	}

	tick := 0
	for ; tick < maxTicks && sched.Phase() != domain.PhaseEnded; tick++ {
		events := sched.Tick()
		printEvents(game, events, verbose)
		if err := react(svc, game, agents, events, verbose); err != nil {
			return err
		}
	}
	if sched.Phase() != domain.PhaseEnded {
		return fmt.Errorf("game did not finish within %d ticks", maxTicks)
	}

	printOutcome(game, sched, tick)
	return nil
}

// react feeds events through the agents until no agent produces more.
func react(svc *app.Service, game *domain.Game, agents []*autoplay.Agent, events []app.Event, verbose bool) error {
	for len(events) > 0 {
		var next []app.Event
		for _, ev := range events {
			for _, a := range agents {
				out, err := a.React(svc, game, ev)
				if err != nil {
					// Engine rejections are part of normal play; a
					// human client would just pick again.
					pterm.Debug.Printfln("%s: %v", a.Name, err)
					continue
				}
				next = append(next, out...)
			}
		}
		printEvents(game, next, verbose)
		events = next
	}
	return nil
}

func loadCatalog() (*content.Catalog, error) {
	if path := os.Getenv("VIRALSPIRAL_CATALOG"); path != "" {
		catalog, err := content.LoadCatalog(path)
		if err != nil {
			return nil, fmt.Errorf("loading catalog %s: %w", path, err)
		}
		return catalog, nil
	}
	return content.SampleCatalog(), nil
}

func printEvents(game *domain.Game, events []app.Event, verbose bool) {
	for _, ev := range events {
		switch payload := ev.Payload.(type) {
		case app.PlayerJoinedPayload:
			pterm.Info.Printfln("%s joined as %s", payload.Player.Name, payload.Player.Color)
		case app.RoundPayload:
			if ev.Kind != app.EventRoundStart {
				continue
			}
			if payload.Skipped {
				pterm.Warning.Printfln("round: %s is cancelled and skipped", payload.Player.Name)
			} else if verbose {
				pterm.Info.Printfln("round: %s draws", payload.Player.Name)
			}
		case app.ActionPerformedPayload:
			if verbose {
				pterm.Info.Printfln("%s: %s", payload.Player, payload.Action)
			}
		case app.EndgamePayload:
			if payload.Error != "" {
				pterm.Warning.Printfln("game over: %s", payload.Error)
			} else if payload.Winner != "" {
				pterm.Success.Printfln("game over: %s wins", payload.Winner)
			} else {
				pterm.Warning.Println("game over: bias consumed the world")
			}
		}
	}
}

func printOutcome(game *domain.Game, sched *app.Scheduler, ticks int) {
	game.Lock()
	defer game.Unlock()

	rows := pterm.TableData{{"Player", "Color", "Clout"}}
	for _, p := range game.TurnOrder() {
		rows = append(rows, []string{p.Name, p.Color.Name, strconv.Itoa(game.Ledger.Clout(p))})
	}
	pterm.DefaultSection.Println("Final scores")
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		pterm.Error.Println(err.Error())
	}
	pterm.Info.Printfln("ticks=%d full_rounds=%d tgb=%d", ticks, len(game.FullRounds), game.TotalGlobalBias())
}
