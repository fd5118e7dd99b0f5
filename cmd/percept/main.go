// Command percept consumes JSONL telemetry events and emits a profile
// line whenever a subject's derived label changes.
package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"percept/internal/clock"
	"percept/internal/config"
	"percept/internal/event"
	"percept/internal/provenance"
	"percept/internal/store"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to percept.toml (defaults apply when absent)")
	inputPath := flag.String("input", "", "JSONL event file, stdin when empty")
	flag.Parse()

	if err := run(*configPath, *inputPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, inputPath string) error {
	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, db, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()
	if db != nil {
		if err := provenance.EnsureSchema(db); err != nil {
			return err
		}
	}

	input := os.Stdin
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	logger.Info("percept ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", cfg.Storage.Path))

	return process(input, os.Stdout, cfg, st, db, logger)
}

// #endregion main

// #region process

// process replays the incoming timeline on a fake clock seeded from the
// first event, so pause timers fire exactly where the event timestamps
// put them. Events without a timestamp are stamped on arrival.
func process(in io.Reader, out io.Writer, cfg *config.Config, st store.Store, db *sql.DB, logger *zap.Logger) error {
	cfgs := event.Configs{
		Behavior: cfg.BehaviorConfig(),
		Recall:   cfg.RecallConfig(),
		Intent:   cfg.IntentConfig(),
	}

	var clk *clock.Fake
	var d *event.Dispatcher
	enc := json.NewEncoder(out)

	onChange := func(c event.Change) {
		line := struct {
			Classifier string      `json:"classifier"`
			Subject    string      `json:"subject"`
			From       string      `json:"from,omitempty"`
			To         string      `json:"to"`
			Rule       string      `json:"rule,omitempty"`
			Profile    interface{} `json:"profile"`
		}{c.Classifier, c.SubjectID, c.FromLabel, c.ToLabel, c.Rule, c.Profile}
		if err := enc.Encode(line); err != nil {
			logger.Warn("emit change", zap.Error(err))
		}
		if db == nil {
			return
		}
		err := provenance.LogTransition(db, provenance.Entry{
			Classifier:  c.Classifier,
			SubjectID:   c.SubjectID,
			FromLabel:   c.FromLabel,
			ToLabel:     c.ToLabel,
			Rule:        c.Rule,
			ProfileJSON: c.ProfileJSON(),
			CreatedAt:   clk.Now(),
		})
		if err != nil {
			logger.Warn("log transition", zap.Error(err))
		}
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var ev event.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			logger.Warn("skip malformed event", zap.Int("line", lineNum), zap.Error(err))
			continue
		}
		if ev.At.IsZero() {
			ev.At = time.Now().UTC()
		}

		if d == nil {
			clk = clock.NewFake(ev.At)
			d = event.NewDispatcher(cfgs, clk, clk, st)
			d.OnChange(onChange)
		}
		clk.Set(ev.At)

		if err := d.Apply(ev); err != nil {
			logger.Warn("skip event", zap.Int("line", lineNum), zap.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read events: %w", err)
	}
	logger.Info("input drained", zap.Int("lines", lineNum))
	return nil
}

// #endregion process

// #region wiring

func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if lc.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// openStore opens the configured backend. The *sql.DB is non-nil only
// for sqlite, where it also carries the provenance log.
func openStore(sc config.StorageConfig) (store.Store, *sql.DB, error) {
	switch sc.Backend {
	case "sqlite":
		s, err := store.NewSQLiteStore(sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.DB(), nil
	case "badger":
		s, err := store.NewBadgerStore(store.DefaultBadgerConfig(sc.Path))
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		return store.NewMemStore(), nil, nil
	}
}

// #endregion wiring
