package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/collector"
	"github.com/lmoreira/jobmatch/internal/embedding"
	"github.com/lmoreira/jobmatch/internal/embedding/gemini"
	"github.com/lmoreira/jobmatch/internal/embedding/vectorcache"
	"github.com/lmoreira/jobmatch/internal/extract"
	"github.com/lmoreira/jobmatch/internal/filtering"
	"github.com/lmoreira/jobmatch/internal/job"
	"github.com/lmoreira/jobmatch/internal/logger"
	"github.com/lmoreira/jobmatch/internal/normalize"
	"github.com/lmoreira/jobmatch/internal/provider"
	"github.com/lmoreira/jobmatch/internal/provider/adzuna"
	"github.com/lmoreira/jobmatch/internal/provider/greenhouse"
	"github.com/lmoreira/jobmatch/internal/ranking"
	"github.com/lmoreira/jobmatch/internal/secrets"
)

const (
	strategyAuto     = "auto"
	strategyLexical  = "lexical"
	strategySemantic = "semantic"
	strategySkills   = "skills"

	defaultTop      = 10
	defaultCacheDir = ".jobmatch-cache"

	profilePreviewLen = 120

	PromptShowDetails    = "Show details"
	PromptReportBySource = "Report by source"
	PromptDumpToFile     = "Dump results to file"
	PromptExit           = "Exit"
)

var errExit = errors.New("exit requested")

var resultPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowDetails, PromptReportBySource, PromptDumpToFile, PromptExit},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Collect job postings and rank them against a candidate profile",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("profile", "p", "", "path to the candidate profile (.txt or .pdf)")
	rankCmd.Flags().String("jobs", "", "rank a local JSON file of collected postings instead of fetching")
	rankCmd.Flags().IntP("top", "k", 0, "how many results to show")
	rankCmd.Flags().StringP("strategy", "s", "", "ranking strategy: auto, lexical, semantic or skills")
	rankCmd.Flags().StringSlice("skills", nil, "comma-separated skills for the skills strategy")
	rankCmd.Flags().BoolP("auto-approve", "y", false, "print the results and exit without the interactive menu")

	viper.BindPFlag("profile", rankCmd.Flags().Lookup("profile"))
	viper.BindPFlag("ranking.top", rankCmd.Flags().Lookup("top"))
	viper.BindPFlag("ranking.strategy", rankCmd.Flags().Lookup("strategy"))
	viper.BindPFlag("ranking.skills", rankCmd.Flags().Lookup("skills"))
}

// rank is the main command for the cli.
func rank(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobmatch", zap.String("version", version))

	profile, err := loadProfile(config, logger)
	if err != nil {
		logger.Fatal("loading the candidate profile", zap.Error(err))
	}

	records, err := loadOrCollect(ctx, cmd, config, logger)
	if err != nil {
		logger.Fatal("collecting job postings", zap.Error(err))
	}

	if len(records) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs collected"))
		return
	}

	jobs := normalize.New(logger).Normalize(records)
	logger.Info("normalized postings",
		zap.Int("collected", len(records)),
		zap.Int("normalized", len(jobs)),
	)

	steps := filtering.DefaultSteps()
	jobs, err = filtering.Run(ctx, filterConfig(config), filtering.Deps{Logger: logger}, steps, jobs)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	if len(jobs) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs left after filters"))
		return
	}

	pairs, err := rankJobs(ctx, config, logger, profile, jobs)
	if err != nil {
		if errors.Is(err, embedding.ErrModelUnavailable) {
			logger.Fatal("embedding model unavailable",
				zap.Error(err),
				zap.String("hint", "set GEMINI_API_KEY or GEMINI_API_KEY_FILE, or switch ranking.strategy to lexical"),
			)
		}
		logger.Fatal("ranking failed", zap.Error(err))
	}

	pairs = applyPreferences(config, pairs)
	if len(pairs) > config.Ranking.Top {
		pairs = pairs[:config.Ranking.Top]
	}

	if len(pairs) == 0 {
		logger.Info("exiting", zap.String("reason", "nothing matched the profile"))
		return
	}

	printResults(pairs)

	if cmd.Flag("auto-approve").Value.String() == "true" {
		return
	}

	for {
		_, action, err := resultPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, pairs); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, pairs []ranking.Pair) error {
	switch action {
	case PromptShowDetails:
		for _, p := range pairs {
			pretty, _ := json.MarshalIndent(p.Job, "", "  ")
			fmt.Printf("score %.4f\n%s\n", p.Score, pretty)
		}
		return nil
	case PromptReportBySource:
		pretty, _ := json.MarshalIndent(reportBySource(pairs), "", "  ")
		logger.Info(string(pretty), zap.Int("results count", len(pairs)))
		return nil
	case PromptDumpToFile:
		filename, err := dumpResults(pairs)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping results to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// reportBySource groups the ranked results by the provider they came from.
func reportBySource(pairs []ranking.Pair) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, p := range pairs {
		source := p.Job.Source
		if source == "" {
			source = "unknown"
		}
		report[source] = append(report[source], map[string]string{
			"id":      p.Job.ID,
			"title":   p.Job.Title,
			"company": p.Job.Company,
			"score":   fmt.Sprintf("%.4f", p.Score),
		})
	}
	return report
}

func loadProfile(config *Config, log *zap.Logger) (*job.Profile, error) {
	path := strings.TrimSpace(viper.GetString("profile"))
	if path == "" {
		path = strings.TrimSpace(config.Profile)
	}
	if path == "" {
		return nil, errors.New("profile path is required (set --profile or the 'profile' config key)")
	}

	text, err := extract.Text(path)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("profile %q contains no text", path)
	}

	profile, err := job.NewProfile(text, config.Ranking.Skills)
	if err != nil {
		return nil, err
	}

	log.Debug("loaded profile",
		zap.String("path", path),
		zap.Strings("skills", profile.Skills),
		zap.String("preview", logger.TruncateForLog(text, profilePreviewLen)),
	)

	return profile, nil
}

// loadOrCollect reads postings from the --jobs file when given, otherwise
// it fetches from the configured providers.
func loadOrCollect(ctx context.Context, cmd *cobra.Command, config *Config, log *zap.Logger) ([]provider.Record, error) {
	if path := strings.TrimSpace(cmd.Flag("jobs").Value.String()); path != "" {
		log.Info("ranking a local postings file", zap.String("path", path))
		return loadRecords(path)
	}

	providers, err := buildProviders(config, log)
	if err != nil {
		return nil, err
	}

	return collector.New(log, providers...).Collect(ctx, config.Search.Query, config.Search.Location, config.Search.Pages)
}

func loadRecords(path string) ([]provider.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading postings file: %w", err)
	}

	var records []provider.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing postings file: %w", err)
	}

	return records, nil
}

func buildProviders(config *Config, log *zap.Logger) ([]provider.Provider, error) {
	var providers []provider.Provider

	if az := config.Providers.Adzuna; az != nil {
		appKey, err := secrets.Load(secrets.Source{
			Name:  "adzuna app key",
			Value: az.AppKey,
			File:  az.AppKeyFile,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, adzuna.New(log, az.AppID, appKey, az.Country))
	}

	if gh := config.Providers.Greenhouse; gh != nil && len(gh.Boards) > 0 {
		providers = append(providers, greenhouse.New(log, gh.Boards))
	}

	if len(providers) == 0 {
		return nil, errors.New("no providers configured (set providers.adzuna or providers.greenhouse)")
	}

	return providers, nil
}

func filterConfig(config *Config) *filtering.Config {
	return &filtering.Config{
		RemoteOnly:     config.Filters.RemoteOnly,
		MaxAgeDays:     config.Filters.MaxAgeDays,
		ExcludeSources: config.Filters.ExcludeSources,
		Disabled:       config.Filters.Disabled,
	}
}

func rankJobs(ctx context.Context, config *Config, log *zap.Logger, profile *job.Profile, jobs []*job.Job) ([]ranking.Pair, error) {
	lexical := ranking.NewLexical(nil)

	strategy := strings.ToLower(strings.TrimSpace(config.Ranking.Strategy))
	switch strategy {
	case strategyLexical:
		return lexical.Rank(profile.Summary, jobs, len(jobs)), nil
	case strategySkills:
		if len(profile.Skills) == 0 {
			return nil, errors.New("the skills strategy needs at least one skill (set --skills or the 'ranking.skills' config key)")
		}
		return ranking.NewSkills(profile.Skills, nil).Rank(jobs, len(jobs)), nil
	}

	semantic := newSemantic(config.Ranking, log)

	switch strategy {
	case strategySemantic:
		return semantic.Rank(ctx, profile.Summary, jobs, len(jobs), config.Ranking.Model)
	case strategyAuto, "":
		return ranking.NewCombined(lexical, semantic, log).Rank(ctx, profile.Summary, jobs, len(jobs), config.Ranking.Model), nil
	default:
		return nil, fmt.Errorf("unknown ranking strategy: %q", strategy)
	}
}

func newSemantic(cfg *RankingConfig, log *zap.Logger) *ranking.Semantic {
	cacheDir := strings.TrimSpace(cfg.CacheDir)
	if cacheDir == "" {
		cacheDir = defaultCacheDir
	}

	semLogger := logger.WithCommonFields(log, "gemini", cfg.Model)
	cache := vectorcache.New(cacheDir, semLogger)

	registry := embedding.NewRegistry(func(ctx context.Context, model string) (embedding.Encoder, error) {
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.APIKey,
			File:  cfg.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", embedding.ErrModelUnavailable, err)
		}
		return gemini.NewEncoder(ctx, apiKey, model, cfg.Dimensions)
	})

	return ranking.NewSemantic(registry, cache, semLogger)
}

func applyPreferences(config *Config, pairs []ranking.Pair) []ranking.Pair {
	if config.Preferences == nil {
		return pairs
	}

	prefs := ranking.DefaultPreferences()
	prefs.Prefer = config.Preferences.Prefer
	prefs.Ban = config.Preferences.Ban
	prefs.BoostRemote = config.Preferences.BoostRemote

	pairs = ranking.ApplyPreferences(pairs, prefs)
	ranking.Sort(pairs)
	return pairs
}

func printResults(pairs []ranking.Pair) {
	for i, p := range pairs {
		line := fmt.Sprintf("%2d. %.4f  %s", i+1, p.Score, p.Job.Title)
		if p.Job.Company != "" {
			line += " / " + p.Job.Company
		}
		if p.Job.Location != "" {
			line += " / " + p.Job.Location
		}
		if p.Job.URL != "" {
			line += "\n        " + p.Job.URL
		}
		fmt.Println(line)
	}
}

func dumpResults(pairs []ranking.Pair) (string, error) {
	type result struct {
		Score float64  `json:"score"`
		Job   *job.Job `json:"job"`
	}

	results := make([]result, 0, len(pairs))
	for _, p := range pairs {
		results = append(results, result{Score: p.Score, Job: p.Job})
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", app+"-results-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", err
	}

	return f.Name(), nil
}
