package cmd

import (
	"errors"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobmatch"
)

type Config struct {
	Profile     string             `mapstructure:"profile"`
	Search      *SearchConfig      `mapstructure:"search"`
	Providers   *ProvidersConfig   `mapstructure:"providers"`
	Filters     *FiltersConfig     `mapstructure:"filters"`
	Ranking     *RankingConfig     `mapstructure:"ranking"`
	Preferences *PreferencesConfig `mapstructure:"preferences"`
}

type SearchConfig struct {
	Query    string `mapstructure:"query"`
	Location string `mapstructure:"location"`
	Pages    int    `mapstructure:"pages"`
}

type ProvidersConfig struct {
	Adzuna     *AdzunaConfig     `mapstructure:"adzuna"`
	Greenhouse *GreenhouseConfig `mapstructure:"greenhouse"`
}

type AdzunaConfig struct {
	AppID      string `mapstructure:"app-id"`
	AppKey     string `mapstructure:"app-key"`
	AppKeyFile string `mapstructure:"app-key-file"`
	Country    string `mapstructure:"country"`
}

type GreenhouseConfig struct {
	Boards []string `mapstructure:"boards"`
}

type FiltersConfig struct {
	RemoteOnly     bool     `mapstructure:"remote-only"`
	MaxAgeDays     int      `mapstructure:"max-age-days"`
	ExcludeSources []string `mapstructure:"exclude-sources"`
	Disabled       []string `mapstructure:"disabled"`
}

type RankingConfig struct {
	Strategy   string   `mapstructure:"strategy"`
	Top        int      `mapstructure:"top"`
	Skills     []string `mapstructure:"skills"`
	Model      string   `mapstructure:"model"`
	Dimensions int      `mapstructure:"dimensions"`
	CacheDir   string   `mapstructure:"cache-dir"`
	APIKey     string   `mapstructure:"api-key"`
	APIKeyFile string   `mapstructure:"api-key-file"`
}

type PreferencesConfig struct {
	Prefer      []string `mapstructure:"prefer"`
	Ban         []string `mapstructure:"ban"`
	BoostRemote float64  `mapstructure:"boost-remote"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobmatch is a cli for collecting job postings and ranking them against a candidate profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"providers.adzuna.app-id":  "ADZUNA_APP_ID",
		"providers.adzuna.app-key": "ADZUNA_APP_KEY",
		"ranking.api-key":          "GEMINI_API_KEY",
		"ranking.api-key-file":     "GEMINI_API_KEY_FILE",
		"boards":                   "GH_BOARDS",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Every command can run from flags and environment alone, so a
		// missing default config file is fine. An explicit one is not.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Search.Pages < 1 {
		config.Search.Pages = 1
	}
	if config.Providers == nil {
		config.Providers = &ProvidersConfig{}
	}
	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}
	if config.Ranking == nil {
		config.Ranking = &RankingConfig{}
	}
	if config.Ranking.Strategy == "" {
		config.Ranking.Strategy = strategyAuto
	}
	if config.Ranking.Top < 1 {
		config.Ranking.Top = defaultTop
	}

	// GH_BOARDS is a comma-separated list when it comes from the environment.
	if config.Providers.Greenhouse == nil {
		if boards := splitList(viper.GetString("boards")); len(boards) > 0 {
			config.Providers.Greenhouse = &GreenhouseConfig{Boards: boards}
		}
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
