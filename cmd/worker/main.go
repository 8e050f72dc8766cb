package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/plaza-social/plaza/app_setting"
	"github.com/plaza-social/plaza/utils"
	"github.com/plaza-social/plaza/utils/dotenv"
	Logger "github.com/plaza-social/plaza/utils/log"
	"github.com/plaza-social/plaza/worker"
)

var (
	AppSettingPath *string
	// Configuration to customize binary startup.
	AppSetting app_setting.WorkerAppSetting
)

// init() will always be called on before the execution of main function.
func init() {
	AppSettingPath = flag.String("app_setting_path", "cmd/worker/setting.yaml", "path to worker app setting")
	flag.Parse()
	Logger.InitLogger()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
}

func main() {
	AppSetting = app_setting.ParseWorkerAppSetting(*AppSettingPath)

	db, err := utils.GetDBConnection()
	if err != nil {
		panic(err)
	}

	redis, err := utils.GetRedisStore()
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Initialize all engine modules here.
	modules := []worker.Module{
		// Reaper sweeps stories past their 24h expiry.
		worker.NewStoryReaper(worker.StoryReaperConfig{
			Name:     "story_reaper",
			Interval: time.Duration(AppSetting.STORY_REAPER_INTERVAL_SECOND) * time.Second,
		}, db),
		// Scorer recomputes the trending leaderboard from recent
		// engagement and swaps it into redis.
		worker.NewTrendingScorer(worker.TrendingScorerConfig{
			Name:     "trending_scorer",
			Interval: time.Duration(AppSetting.TRENDING_INTERVAL_SECOND) * time.Second,
			Window:   time.Duration(AppSetting.TRENDING_WINDOW_HOUR) * time.Hour,
			HalfLife: time.Duration(AppSetting.TRENDING_HALF_LIFE_HOUR) * time.Hour,
		}, db, redis),
	}

	engine := worker.NewEngine(modules, ctx, cancel)

	// blocking call.
	engine.Run()

	log.Println("engine stopped execution.")
}
