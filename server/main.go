package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"penney-bench/server/config"
	"penney-bench/server/engine"
	"penney-bench/server/errs"
	"penney-bench/server/logging"
	"penney-bench/server/store"
	"penney-bench/server/store/sqlite"
	"penney-bench/server/sweep"
)

//
// ===== pretty printing =====
//

var useColor bool

const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colDim    = "\033[2m"
	colGreen  = "\033[32m"
	colRed    = "\033[31m"
	colYellow = "\033[33m"
	colCyan   = "\033[36m"
)

func c(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + colReset
}
func bold(s string) string { return c(colBold, s) }
func dim(s string) string  { return c(colDim, s) }
func good(s string) string { return c(colGreen, s) }
func warn(s string) string { return c(colYellow, s) }
func bad(s string) string  { return c(colRed, s) }
func cyan(s string) string { return c(colCyan, s) }
func section(title string) { fmt.Printf("\n%s %s %s\n", dim("──"), bold(title), dim("──")) }
func sub(title string)     { fmt.Printf("%s %s\n", dim("•"), bold(title)) }

func symbolTag(s engine.Symbol) string {
	if s == engine.Red {
		return bad(string(s))
	}
	return string(s)
}

//
// ===== bootstrap =====
//

var stopFlag atomic.Bool

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	useColor = !cfg.NoColor && strings.TrimSpace(os.Getenv("USE_COLOR")) != "0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	mode, args := "", []string(nil)
	if len(os.Args) > 1 {
		mode, args = os.Args[1], os.Args[2:]
	}

	switch mode {
	case "--simulate":
		err = runSimulate(ctx, cfg, log, args)
	case "--merge":
		err = runMerge(ctx, cfg, log, args)
	case "--show":
		err = runShow(ctx, cfg, log, args)
	case "--deal":
		err = runDeal(cfg, args)
	case "--migrate":
		err = runMigrate(ctx, cfg, log)
	case "", "--serve":
		err = runServer(ctx, cfg, log)
	default:
		err = errs.Configurationf("unknown mode %q (want --simulate, --merge, --show, --deal, --migrate or --serve)", mode)
	}
	if err != nil {
		log.Error("command failed", zap.String("mode", mode), zap.Error(err))
		log.Sync()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case errors.Is(err, errs.ErrConfiguration), errors.Is(err, errs.ErrSchema):
		return 2
	default:
		return 1
	}
}

func watchSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	stopFlag.Store(true)
	cancel()
}

// openStore picks Postgres when DATABASE_URL is set, else the SQLite file.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.ResultStore, error) {
	if !cfg.UsePostgres() {
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Debug("store opened", zap.String("store", cfg.StoreName()))
		return st, nil
	}
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close(ctx)
		return nil, errs.Storage("ping postgres", err)
	}
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx, db); err != nil {
			db.Close(ctx)
			return nil, err
		}
		log.Info("migrated", zap.String("store", cfg.StoreName()))
	}
	return db, nil
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(strings.TrimPrefix(name, "--"), flag.ContinueOnError)
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errs.Configurationf("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return errs.Configurationf("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return nil
}

//
// ===== modes =====
//

func runSimulate(ctx context.Context, cfg config.Config, log *zap.Logger, args []string) error {
	fs := newFlags("--simulate")
	n := fs.Int("decks", cfg.Decks, "number of decks")
	half := fs.Int("half", cfg.HalfSize, "cards of each color per deck")
	seed := fs.Int64("seed", cfg.Seed, "generation seed")
	workers := fs.Int("workers", cfg.WorkerCount(), "aggregation workers")
	noSave := fs.Bool("no-save", false, "print results without storing them")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	start := time.Now()
	decks, err := engine.GenerateDecksParallel(*n, *half, *seed, *workers)
	if err != nil {
		return err
	}
	log.Info("decks generated",
		zap.Int("decks", *n), zap.Int("half_size", *half), zap.Int64("seed", *seed),
		zap.Duration("took", time.Since(start)))

	res, err := sweep.Aggregate(ctx, decks, sweep.Options{
		Workers:  *workers,
		Progress: progressLogger(log, sweep.ScoredPairs),
	})
	if err != nil {
		if stopFlag.Load() {
			log.Warn("aggregation interrupted, nothing saved")
		}
		return err
	}
	log.Info("aggregated", zap.Int("pairs", sweep.ScoredPairs), zap.Duration("took", time.Since(start)))

	b := sweep.NewBatch(*seed, *half, res)
	if !*noSave {
		st, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer st.Close(context.Background())
		if b.ID, err = st.SaveBatch(ctx, b, decks); err != nil {
			return err
		}
		log.Info("batch saved", zap.Int64("id", b.ID), zap.String("store", cfg.StoreName()))
	}
	printBatch(&b, engine.Modes)
	return nil
}

// progressLogger logs roughly every tenth of the pair tasks.
func progressLogger(log *zap.Logger, total int) func(done, total int) {
	step := total / 10
	if step < 1 {
		step = 1
	}
	return func(done, total int) {
		if done%step == 0 || done == total {
			log.Debug("aggregation progress", zap.Int("done", done), zap.Int("total", total))
		}
	}
}

func runMerge(ctx context.Context, cfg config.Config, log *zap.Logger, args []string) error {
	fs := newFlags("--merge")
	aID := fs.Int64("a", 0, "first batch id")
	bID := fs.Int64("b", 0, "second batch id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *aID <= 0 || *bID <= 0 {
		return errs.Configurationf("merge needs -a and -b batch ids")
	}
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	a, err := st.LoadBatch(ctx, *aID)
	if err != nil {
		return err
	}
	b, err := st.LoadBatch(ctx, *bID)
	if err != nil {
		return err
	}
	m, err := sweep.Merge(a, b)
	if err != nil {
		return fmt.Errorf("merge %d + %d: %w", a.ID, b.ID, err)
	}
	if m.ID, err = st.SaveBatch(ctx, m, nil); err != nil {
		return err
	}
	log.Info("batches merged",
		zap.Int64("a", a.ID), zap.Int64("b", b.ID), zap.Int64("id", m.ID), zap.Int("decks", m.Decks))
	printBatch(&m, engine.Modes)
	return nil
}

func runShow(ctx context.Context, cfg config.Config, log *zap.Logger, args []string) error {
	fs := newFlags("--show")
	id := fs.Int64("id", 0, "batch id")
	modeFlag := fs.String("mode", "", "tricks or cards (default both)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	modes := engine.Modes
	if *modeFlag != "" {
		m, err := engine.ParseMode(*modeFlag)
		if err != nil {
			return err
		}
		modes = []engine.Mode{m}
	}
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	b, err := st.LoadBatch(ctx, *id)
	if err != nil {
		return err
	}
	printBatch(&b, modes)
	return nil
}

// runDeal prints one generated deck as real playing cards.
func runDeal(cfg config.Config, args []string) error {
	fs := newFlags("--deal")
	seed := fs.Int64("seed", cfg.Seed, "generation seed")
	index := fs.Int("index", 0, "deck index within the seed")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *index < 0 {
		return errs.Configurationf("index must be >= 0, got %d", *index)
	}
	ds := engine.DeckSeed(*seed, *index)
	deck := engine.NewDeck(engine.DefaultHalfSize, ds)
	cards, err := engine.PlayingCards(deck, ds)
	if err != nil {
		return err
	}
	section(fmt.Sprintf("seed %d · deck %d", *seed, *index))
	sub("colors")
	var sb strings.Builder
	for _, s := range deck {
		sb.WriteString(symbolTag(s))
	}
	fmt.Println("  " + sb.String())
	sub("cards")
	for row := 0; row < len(cards); row += 13 {
		end := min(row+13, len(cards))
		parts := make([]string, 0, 13)
		for _, pc := range cards[row:end] {
			if pc.Color() == engine.Red {
				parts = append(parts, bad(pc.String()))
			} else {
				parts = append(parts, pc.String())
			}
		}
		fmt.Println("  " + strings.Join(parts, " "))
	}
	return nil
}

func runMigrate(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	cfg.AutoMigrate = true
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	st.Close(context.Background())
	log.Info("migrated", zap.String("store", cfg.StoreName()))
	return nil
}

func runServer(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      Router(st, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	log.Info("listening", zap.String("addr", "http://localhost:"+cfg.Port), zap.String("store", cfg.StoreName()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
