package cmd

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/embedding"
	"github.com/lmoreira/jobmatch/internal/job"
	"github.com/lmoreira/jobmatch/internal/logger"
	"github.com/lmoreira/jobmatch/internal/normalize"
	"github.com/lmoreira/jobmatch/internal/provider"
)

const defaultListen = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ranking pipeline over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", defaultListen, "address to listen on")
}

type rankRequest struct {
	ProfileText string            `json:"profile_text" binding:"required"`
	Jobs        []provider.Record `json:"jobs" binding:"required"`
	Strategy    string            `json:"strategy"`
	Skills      []string          `json:"skills"`
	Top         int               `json:"top"`
}

type rankResult struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Company  string  `json:"company,omitempty"`
	Location string  `json:"location,omitempty"`
	URL      string  `json:"url,omitempty"`
	Score    float64 `json:"score"`
}

func serve(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/api/rank", rankHandler(config, logger))

	listen := cmd.Flag("listen").Value.String()
	logger.Info("listening", zap.String("address", listen))

	if err := router.Run(listen); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func rankHandler(config *Config, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req rankRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		jobs := normalize.New(log).Normalize(req.Jobs)
		if len(jobs) == 0 {
			c.JSON(http.StatusOK, gin.H{"results": []rankResult{}, "count": 0})
			return
		}

		reqConfig := *config
		reqConfig.Ranking = requestRanking(config, &req)

		profile, err := job.NewProfile(req.ProfileText, requestSkills(config, &req))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		pairs, err := rankJobs(c.Request.Context(), &reqConfig, log, profile, jobs)
		if err != nil {
			if errors.Is(err, embedding.ErrModelUnavailable) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "embedding model unavailable"})
				return
			}
			log.Error("ranking failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ranking failed"})
			return
		}

		pairs = applyPreferences(&reqConfig, pairs)
		if len(pairs) > reqConfig.Ranking.Top {
			pairs = pairs[:reqConfig.Ranking.Top]
		}

		results := make([]rankResult, 0, len(pairs))
		for _, p := range pairs {
			results = append(results, rankResult{
				ID:       p.Job.ID,
				Title:    p.Job.Title,
				Company:  p.Job.Company,
				Location: p.Job.Location,
				URL:      p.Job.URL,
				Score:    p.Score,
			})
		}

		c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
	}
}

// requestRanking overlays the per-request strategy and result count on the
// configured ranking settings.
func requestRanking(config *Config, req *rankRequest) *RankingConfig {
	cfg := *config.Ranking
	if s := strings.TrimSpace(req.Strategy); s != "" {
		cfg.Strategy = s
	}
	if req.Top > 0 {
		cfg.Top = req.Top
	}
	return &cfg
}

func requestSkills(config *Config, req *rankRequest) []string {
	if len(req.Skills) > 0 {
		return req.Skills
	}
	return config.Ranking.Skills
}
