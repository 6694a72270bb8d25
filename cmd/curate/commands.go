package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"art-advisor/internal/config"
	"art-advisor/internal/db"
	"art-advisor/internal/domain"
	"art-advisor/internal/llm"
	"art-advisor/internal/repository"
	"art-advisor/internal/service"
	"art-advisor/internal/source"
)

type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "curate",
		Short:        "Operate the daily art curation outside the API server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.AddCommand(
		a.runCmd(),
		a.profileCmd(),
		a.likeCmd(),
		a.tokenCmd(),
		a.migrateCmd(),
	)
	return root
}

func (a *app) runCmd() *cobra.Command {
	var (
		dryRun bool
		tags   []string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one curation pass synchronously and print its report",
		Long: `Runs the full pipeline: read the taste profile, synthesize queries,
fetch candidates, deduplicate, curate and persist today's batch.
With --dry-run nothing touches Postgres: the profile is seeded from --tags
and the selected artworks are printed instead of stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, a.cfg.RunTimeout)
			defer cancel()

			var (
				taste    repository.TasteRepository
				artworks repository.ArtworkRepository
				memArt   *repository.MemoryArtworkRepository
			)
			if dryRun {
				memTaste := repository.NewMemoryTasteRepository()
				if err := memTaste.Reinforce(ctx, tags); err != nil {
					return err
				}
				memArt = repository.NewMemoryArtworkRepository()
				taste, artworks = memTaste, memArt
			} else {
				pool, err := db.NewPool(ctx, a.cfg)
				if err != nil {
					return fmt.Errorf("db connect: %w", err)
				}
				defer pool.Close()
				taste = repository.NewPgTasteRepository(pool)
				artworks = repository.NewPgArtworkRepository(pool)
			}

			pipeline, err := a.buildPipeline(ctx, taste, artworks)
			if err != nil {
				return err
			}
			report, runErr := pipeline.Run(ctx, domain.TriggerCLI)
			if err := printJSON(cmd, report); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			if memArt != nil {
				selected, _ := memArt.ListByDate(ctx, report.Date)
				return printJSON(cmd, selected)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "use in-memory storage instead of Postgres")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "seed tags for the in-memory profile (dry-run only)")
	return cmd
}

func (a *app) buildPipeline(ctx context.Context, taste repository.TasteRepository, artworks repository.ArtworkRepository) (*service.Pipeline, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	llmClient := llm.NewHTTPClient(a.cfg.LLMBaseURL, a.cfg.LLMAPIKey, a.cfg.LLMModel, a.cfg.LLMVisionModel, a.cfg.LLMTimeout, zap.NewStdLog(a.logger.Named("llm")))
	sources, err := source.FromConfig(ctx, a.cfg, nil, a.logger)
	if err != nil {
		return nil, err
	}
	curator, err := service.NewCurator(a.cfg.CuratorMode, llmClient, service.CuratorOptions{
		MaxCandidates: a.cfg.CuratorMaxCandidates,
		MaxImages:     a.cfg.VisionMaxImages,
		TitleLanguage: a.cfg.TitleLanguage,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	return service.NewPipeline(
		taste,
		artworks,
		service.NewQuerySynthesizer(llmClient, a.cfg.ThemedQueryEnabled, a.logger),
		sources,
		curator,
		service.PipelineConfig{
			TopTags:       a.cfg.TopTags,
			SearchLimit:   a.cfg.SearchLimit,
			MaxSelections: a.cfg.MaxSelections,
			StageTimeout:  a.cfg.StageTimeout,
			Location:      loc,
		},
		a.logger,
	), nil
}

func (a *app) profileCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the taste profile ordered by weight",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, a.cfg)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()

			repo := repository.NewPgTasteRepository(pool)
			var entries []domain.TasteProfileEntry
			if top > 0 {
				entries, err = repo.TopTags(ctx, top)
			} else {
				entries, err = repo.All(ctx)
			}
			if err != nil {
				return err
			}
			cmd.Print(renderProfile(entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 0, "only the n heaviest tags")
	return cmd
}

func (a *app) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like [artwork-id]",
		Short: "Toggle the like flag of an artwork",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, a.cfg)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()

			feedback := service.NewFeedbackService(
				repository.NewPgArtworkRepository(pool),
				repository.NewPgTasteRepository(pool),
				a.logger,
			)
			liked, err := feedback.ToggleLike(ctx, args[0])
			if err != nil {
				return err
			}
			cmd.Printf("artwork %s liked=%t\n", args[0], liked)
			return nil
		},
	}
}

func (a *app) tokenCmd() *cobra.Command {
	var (
		operator string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for POST /curation/run",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewJWTService(a.cfg.AdminJWTSecret, ttl)
			if !svc.Enabled() {
				return fmt.Errorf("ADMIN_JWT_SECRET is not set")
			}
			token, expires, err := svc.IssueAdminToken(operator)
			if err != nil {
				return err
			}
			cmd.Println(token)
			cmd.PrintErrf("expires at %s\n", expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "operator name recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return db.Migrate(a.cfg.DatabaseURL, a.logger)
		},
	}
}

func renderProfile(entries []domain.TasteProfileEntry) string {
	if len(entries) == 0 {
		return "Taste profile is empty; the next run will use the default query.\n"
	}
	width := 0
	for _, e := range entries {
		if len(e.Tag) > width {
			width = len(e.Tag)
		}
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%-*s  %d\n", width, e.Tag, e.Weight)
	}
	return b.String()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
