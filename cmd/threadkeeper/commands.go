package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kingrea/threadkeeper/internal/config"
	"github.com/kingrea/threadkeeper/internal/logbook"
	"github.com/kingrea/threadkeeper/internal/obligation"
	"github.com/kingrea/threadkeeper/internal/pool"
	"github.com/kingrea/threadkeeper/internal/scheduler"
	"github.com/kingrea/threadkeeper/internal/tui"
)

const usage = `usage: threadkeeper <command> [flags]

commands:
  init       create .threadkeeper/ and a sample obligations.yaml
  select     rank the pool and surface the top obligations
  metrics    print the pool health snapshot
  stale      list obligations older than -threshold chapters
  overused   list obligations surfaced more than -threshold times
  dashboard  open the interactive dashboard`

// commonFlags are shared by every command that builds a scheduler.
type commonFlags struct {
	project    string
	pool       string
	chapter    uint
	characters string
	tension    float64
	summary    string
	max        int
	json       bool
	save       bool
	telemetry  bool
	threshold  int
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	command, rest := args[0], args[1:]
	switch command {
	case "init":
		return runInit(rest, stdout)
	case "select", "metrics", "stale", "overused", "dashboard":
		return runScheduler(command, rest, stdout)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}
}

func newFlagSet(command string, opts *commonFlags) *flag.FlagSet {
	set := flag.NewFlagSet(command, flag.ContinueOnError)
	set.SetOutput(os.Stderr)
	set.StringVar(&opts.project, "project", "", "path to the project directory (defaults to cwd)")
	if command == "init" {
		return set
	}
	set.StringVar(&opts.pool, "pool", "", "obligation pool file (defaults to the configured pool)")
	set.UintVar(&opts.chapter, "chapter", 1, "current chapter")
	set.StringVar(&opts.characters, "characters", "", "comma separated recent characters, most recent first")
	set.Float64Var(&opts.tension, "tension", 0, "current tension level in [-1, 1]")
	set.StringVar(&opts.summary, "summary", "", "narrative summary used for context relevance")
	set.BoolVar(&opts.json, "json", false, "print JSON instead of a table")
	set.BoolVar(&opts.telemetry, "telemetry", false, "print recorded selection instruments after the command")
	switch command {
	case "select", "dashboard":
		set.IntVar(&opts.max, "max", scheduler.ConfiguredMax, "maximum obligations per selection (negative uses config)")
	}
	if command == "select" {
		set.BoolVar(&opts.save, "save", false, "write updated injection stats back to the pool file")
	}
	if command == "stale" || command == "overused" {
		set.IntVar(&opts.threshold, "threshold", -1, "override the configured threshold")
	}
	return set
}

func resolveProject(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determine working directory: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve project dir: %w", err)
	}
	return abs, nil
}

func runInit(args []string, stdout io.Writer) error {
	var opts commonFlags
	if err := newFlagSet("init", &opts).Parse(args); err != nil {
		return err
	}
	project, err := resolveProject(opts.project)
	if err != nil {
		return err
	}
	if err := config.InitDir(project); err != nil {
		return fmt.Errorf("init %s: %w", config.Dir, err)
	}
	cfg, err := config.Load(project)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	path := cfg.PoolPath()
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(stdout, "Config ready at %s; keeping existing pool %s\n", cfg.ConfigPath(), path)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat pool: %w", err)
	}
	if err := pool.Save(path, samplePool(time.Now().UTC())); err != nil {
		return fmt.Errorf("write sample pool: %w", err)
	}
	fmt.Fprintf(stdout, "Config ready at %s; wrote sample pool %s\n", cfg.ConfigPath(), path)
	return nil
}

func runScheduler(command string, args []string, stdout io.Writer) error {
	opts := commonFlags{max: scheduler.ConfiguredMax, threshold: -1}
	if err := newFlagSet(command, &opts).Parse(args); err != nil {
		return err
	}
	project, err := resolveProject(opts.project)
	if err != nil {
		return err
	}
	cfg, err := config.Load(project)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lb, err := logbook.New(cfg.LogbookPath())
	if err != nil {
		return err
	}

	schedOpts := []scheduler.Option{
		scheduler.WithSettings(cfg.Settings),
		scheduler.WithLogger(lb),
	}
	var tel *telemetry
	if opts.telemetry {
		tel, err = newTelemetry()
		if err != nil {
			return err
		}
		defer tel.shutdown()
		schedOpts = append(schedOpts, scheduler.WithRecorder(tel.recorder))
	}
	s := scheduler.New(schedOpts...)

	poolPath := cfg.PoolPath()
	if strings.TrimSpace(opts.pool) != "" {
		poolPath = opts.pool
		if !filepath.IsAbs(poolPath) {
			poolPath = filepath.Join(project, poolPath)
		}
	}
	loaded, err := pool.LoadInto(s, poolPath, time.Now().UTC())
	if err != nil {
		lb.Error("load pool %s: %v", poolPath, err)
		return err
	}
	lb.Info("pool: loaded %d obligations from %s", loaded, poolPath)
	s.UpdateContext(uint32(opts.chapter), splitList(opts.characters), opts.tension, opts.summary)

	switch command {
	case "select":
		selection := s.Select(opts.max)
		if opts.save {
			if err := pool.Save(poolPath, sortedPool(s)); err != nil {
				return err
			}
		}
		if err := printSelection(stdout, s, selection, opts.json); err != nil {
			return err
		}
	case "metrics":
		if err := printMetrics(stdout, s.Metrics(), opts.json); err != nil {
			return err
		}
	case "stale":
		threshold := thresholdOr(opts.threshold, cfg.Settings.StalenessPenaltyThreshold)
		if err := printObligations(stdout, "Stale", s.GetStaleObligations(threshold), s.Context().CurrentChapter, opts.json); err != nil {
			return err
		}
	case "overused":
		threshold := thresholdOr(opts.threshold, cfg.Settings.OverusePenaltyThreshold)
		if err := printObligations(stdout, "Overused", s.GetOverusedObligations(threshold), s.Context().CurrentChapter, opts.json); err != nil {
			return err
		}
	case "dashboard":
		if err := tui.Run(tui.New(s, tui.WithLogbook(lb), tui.WithMaxCount(opts.max))); err != nil {
			return err
		}
	}

	if tel != nil {
		return tel.report(stdout)
	}
	return nil
}

func thresholdOr(flagValue int, configured uint32) uint32 {
	if flagValue < 0 {
		return configured
	}
	return uint32(flagValue)
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sortedPool(s *scheduler.Scheduler) []obligation.Obligation {
	all := s.GetAllObligations()
	out := make([]obligation.Obligation, 0, len(all))
	for _, o := range all {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func samplePool(now time.Time) []obligation.Obligation {
	return []obligation.Obligation{
		{
			ID:                 "mentor-secret",
			Content:            "Reveal what the mentor hid in the archive",
			Category:           obligation.CategoryPlotAdvancement,
			Urgency:            obligation.UrgencyHigh,
			CreatedAt:          now,
			ChapterIntroduced:  1,
			CharactersInvolved: []string{"Ada", "Mentor"},
			TensionVector:      0.4,
			SalienceBoost:      0.2,
		},
		{
			ID:                 "harbor-promise",
			Content:            "Ada promised Bram she would return to the harbor",
			Category:           obligation.CategoryDialoguePromise,
			Urgency:            obligation.UrgencyMedium,
			CreatedAt:          now,
			ChapterIntroduced:  1,
			CharactersInvolved: []string{"Ada", "Bram"},
			TensionVector:      -0.2,
		},
		{
			ID:                "storm-omen",
			Content:           "The red sky foretells the storm",
			Category:          obligation.CategoryForeshadowing,
			Urgency:           obligation.UrgencyLow,
			CreatedAt:         now,
			ChapterIntroduced: 1,
			Dependencies:      []string{"mentor-secret"},
		},
	}
}
