package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/objones25/clusterfit/internal/config"
	"github.com/objones25/clusterfit/internal/dataset"
	"github.com/objones25/clusterfit/internal/evaluate"
	"github.com/objones25/clusterfit/internal/fitcache"
	"github.com/objones25/clusterfit/internal/scoring"
	"github.com/objones25/clusterfit/internal/searchspace"
)

func newRootCmd() *cobra.Command {
	var logLevel string
	env := &config.Env{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect clustering search spaces and fitness scorers",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load environment: %w", err)
			}
			*env = *loaded

			if env.LogLevel != "" && !cmd.Flags().Changed("log-level") {
				logLevel = env.LogLevel
			}
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newSpacesCmd(), newScorersCmd(), newEvaluateCmd(env))
	return cmd
}

func newSpacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spaces",
		Short: "Print every algorithm and its parameter domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			printSpaces(cmd.OutOrStdout())
			return nil
		},
	}
}

func newScorersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scorers",
		Short: "Print every registered scorer",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range scoring.Names() {
				kind := "supervised"
				if scoring.IsUnsupervised(name) {
					kind = "unsupervised"
				}
				fmt.Fprintf(out, "%-30s %s\n", name, kind)
			}
			return nil
		},
	}
}

func newEvaluateCmd(env *config.Env) *cobra.Command {
	cfg := evaluate.DefaultConfig()
	var samples int
	var seed int64
	var cacheSize int

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score sampled pipelines on synthetic Gaussian blobs",
		Long: `Generates three Gaussian blobs, then scores the first candidate of every
clusterer plus a number of randomly sampled pipelines.

Set REDIS_ADDR (host:port) to share scores through Redis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), cmd.OutOrStdout(), env, cfg, samples, seed, cacheSize)
		},
	}
	cmd.Flags().StringVar(&cfg.Scorer, "scorer", cfg.Scorer, "scorer name")
	cmd.Flags().IntVar(&cfg.NumWorkers, "workers", cfg.NumWorkers, "concurrent evaluations")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-candidate time limit")
	cmd.Flags().IntVar(&samples, "samples", 20, "number of random pipelines")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().IntVar(&cacheSize, "cache-size", 10000, "in-memory fitness cache size")
	return cmd
}

func runEvaluate(ctx context.Context, out io.Writer, env *config.Env, cfg evaluate.Config, samples int, seed int64, cacheSize int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cache, err := buildCache(cacheSize, env)
	if err != nil {
		return err
	}
	defer cache.Close()

	evaluator, err := evaluate.New(cfg, cache)
	if err != nil {
		return err
	}

	blobs := dataset.DefaultBlobsConfig()
	blobs.Seed = seed
	X, y, err := dataset.Blobs(blobs)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	candidates := append(evaluate.FirstCandidates(), evaluate.RandomCandidates(rng, samples)...)

	log.Info().
		Int("candidates", len(candidates)).
		Str("scorer", cfg.Scorer).
		Msg("Evaluating pipelines")

	start := time.Now()
	results, err := evaluator.EvaluateAll(ctx, candidates, X, y)
	if err != nil {
		return fmt.Errorf("evaluation aborted: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Score > results[j].Score
	})

	for _, r := range results {
		name := r.Pipeline
		if name == "" {
			name = fmt.Sprint(r.Steps)
		}
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "%12s  %s\n", "error", name)
			log.Debug().Err(r.Err).Str("pipeline", name).Msg("Candidate failed")
		case r.Cached:
			fmt.Fprintf(out, "%12.4f  %s (cached)\n", r.Score, name)
		default:
			fmt.Fprintf(out, "%12.4f  %s\n", r.Score, name)
		}
	}

	if best, ok := evaluate.Best(results); ok {
		log.Info().
			Str("pipeline", best.Pipeline).
			Float64("score", best.Score).
			Dur("elapsed", time.Since(start)).
			Msg("Best pipeline")
	}
	return nil
}

// buildCache returns an LRU cache, layered over Redis when REDIS_ADDR is set
func buildCache(size int, env *config.Env) (fitcache.Cache, error) {
	memory, err := fitcache.NewMemory(size)
	if err != nil {
		return nil, err
	}
	if env.RedisAddr == "" {
		return memory, nil
	}
	host, port, err := net.SplitHostPort(env.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_ADDR %q: %w", env.RedisAddr, err)
	}
	redisCache, err := fitcache.NewRedis(fitcache.Config{
		Host:     host,
		Port:     port,
		Password: env.RedisPassword,
	})
	if err != nil {
		return nil, err
	}
	return fitcache.NewLayered(memory, redisCache), nil
}

func printSpaces(out io.Writer) {
	for _, id := range searchspace.Names() {
		domain, _ := searchspace.Lookup(id)
		fmt.Fprintf(out, "%s [%s] (%d combinations)\n", id, searchspace.KindOf(id), domain.Size())
		for _, param := range domain.Params() {
			values := domain.Values(param)
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = fmt.Sprint(v)
			}
			fmt.Fprintf(out, "  %-14s %s\n", param, strings.Join(parts, ", "))
		}
	}
}
