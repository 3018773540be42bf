package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bodygoal/internal/artifact"
	"bodygoal/internal/config"
	"bodygoal/internal/database"
	"bodygoal/internal/engine"
	"bodygoal/internal/llm"
	"bodygoal/internal/metrics"
	"bodygoal/internal/profile"
	"bodygoal/internal/profileapi"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "plan":
		runPlan(ctx, cfg, os.Args[2:])
	case "suggest":
		runSuggest(ctx, cfg, os.Args[2:])
	case "coach":
		runCoach(ctx, cfg, os.Args[2:])
	case "metrics-cleanup":
		runMetricsCleanup(cfg, os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: bodygoal <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan               Generate or show the daily meal & workout plan")
	fmt.Println("  suggest            Generate quick suggestions for a category")
	fmt.Println("  coach              Ask the coach a free-form question")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}

// profileFlags registers the inline profile flags used when no profile
// service is configured.
func profileFlags(fs *flag.FlagSet) *profile.Biometrics {
	b := &profile.Biometrics{}
	fs.StringVar((*string)(&b.Sex), "sex", "", "male or female")
	fs.IntVar(&b.Age, "age", 0, "Age in years")
	fs.Float64Var(&b.Height, "height", 0, "Height in cm")
	fs.Float64Var(&b.Weight, "weight", 0, "Weight in kg")
	fs.Float64Var(&b.TargetWeight, "target-weight", 0, "Target weight in kg (optional)")
	fs.StringVar((*string)(&b.ActivityLevel), "activity", "", "sedentary, light, moderate, active or very_active")
	fs.StringVar(&b.Goal, "goal", "", "Free-form goal, e.g. 'lose weight'")
	return b
}

func resolveProfile(ctx context.Context, cfg *config.Config, userID string, inline *profile.Biometrics) (profile.Biometrics, engine.Snapshot, error) {
	if cfg.ProfileAPIURL != "" {
		src := profileapi.NewClient(cfg.ProfileAPIURL, cfg.ProfileAPIKey)
		b, err := src.FetchProfile(ctx, userID)
		if err != nil {
			return profile.Biometrics{}, nil, err
		}
		snap, err := src.FetchSnapshot(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Msg("snapshot fetch failed, generating without it")
		}
		return b, snap, nil
	}
	return *inline, nil, nil
}

func newEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, llm.TextGenerator, func(), error) {
	textGen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := artifact.NewCachedStore(artifact.NewRepository(db.SQL), 1024)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	metricsStore := metrics.NewStore(db.SQL)

	cleanup := func() {
		if c, ok := textGen.(llm.Closer); ok {
			c.Close()
		}
		db.Close()
	}

	eng := engine.NewEngine(store, textGen, metricsStore, cfg.PlanTTL, cfg.GenerationTimeout, log.Logger)
	return eng, textGen, cleanup, nil
}

func newTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, error) {
	if cfg.LLMProvider == config.ProviderGroq {
		return llm.NewGroqClient(cfg), nil
	}
	return llm.NewGeminiClient(ctx, cfg)
}

func runPlan(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	userID := fs.String("user", "cli", "User ID")
	inline := profileFlags(fs)
	fs.Parse(args)

	b, snap, err := resolveProfile(ctx, cfg, *userID, inline)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve profile")
	}

	eng, _, cleanup, err := newEngine(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize engine")
	}
	defer cleanup()

	res, err := eng.Obtain(ctx, *userID, artifact.TypeFullPlan, b, snap)
	if err != nil {
		log.Fatal().Err(err).Msg("plan request failed")
	}
	if res.Status == engine.StatusUnavailable {
		log.Fatal().Err(res.Err).Msg("plan generator unavailable")
	}

	plan, err := res.Artifact.FullPlan()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to decode plan")
	}

	fmt.Printf("Status: %s\n", res.Status)
	fmt.Printf("Calorie target: %d kcal\n\n", profile.CalorieTarget(b))
	fmt.Println("Meals:")
	for _, m := range plan.MealPlan {
		fmt.Printf("  - %s (%d kcal): %s\n", m.Name, m.Calories, m.Description)
	}
	fmt.Println("Workouts:")
	for _, w := range plan.WorkoutPlan {
		fmt.Printf("  - %s (%d min): %s\n", w.Name, w.Duration, w.Description)
	}
}

func runSuggest(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	userID := fs.String("user", "cli", "User ID")
	category := fs.String("category", "", "meals, workouts, progress or overview (all when empty)")
	asJSON := fs.Bool("json", false, "Print raw JSON payloads")
	inline := profileFlags(fs)
	fs.Parse(args)

	b, snap, err := resolveProfile(ctx, cfg, *userID, inline)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve profile")
	}

	eng, _, cleanup, err := newEngine(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize engine")
	}
	defer cleanup()

	var results map[artifact.Type]engine.Result
	if *category == "" {
		results, err = eng.SuggestAll(ctx, *userID, b, snap)
		if err != nil {
			log.Fatal().Err(err).Msg("suggestion request failed")
		}
	} else {
		typ := artifact.Type("suggestion_" + *category)
		if !typ.IsSuggestion() {
			log.Fatal().Str("category", *category).Msg("unknown category")
		}
		res, err := eng.Obtain(ctx, *userID, typ, b, snap)
		if err != nil {
			log.Fatal().Err(err).Msg("suggestion request failed")
		}
		results = map[artifact.Type]engine.Result{typ: res}
	}

	for _, typ := range artifact.SuggestionTypes {
		res, ok := results[typ]
		if !ok {
			continue
		}
		if *asJSON {
			json.NewEncoder(os.Stdout).Encode(map[string]any{
				"type":    typ,
				"status":  res.Status,
				"payload": res.Artifact.Payload,
			})
			continue
		}
		payload, err := res.Artifact.Suggestions()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to decode suggestions")
		}
		fmt.Printf("%s (%s):\n", typ.Category(), res.Status)
		for _, s := range payload.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
}

func runCoach(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("coach", flag.ExitOnError)
	userID := fs.String("user", "cli", "User ID")
	question := fs.String("q", "", "Question for the coach")
	inline := profileFlags(fs)
	fs.Parse(args)

	b, _, err := resolveProfile(ctx, cfg, *userID, inline)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve profile")
	}

	textGen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create generation client")
	}
	if c, ok := textGen.(llm.Closer); ok {
		defer c.Close()
	}

	coach := engine.NewCoach(textGen, cfg.GenerationTimeout, log.Logger)
	answer, err := coach.Ask(ctx, b, *question)
	if err != nil {
		log.Fatal().Err(err).Msg("coach request failed")
	}
	fmt.Println(answer)
}

func runMetricsCleanup(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
	days := fs.Int("days", 30, "Keep records for the last N days")
	fs.Parse(args)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	affected, err := metrics.NewStore(db.SQL).Cleanup(*days)
	if err != nil {
		log.Fatal().Err(err).Msg("cleanup failed")
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
}
