package app_setting

import (
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"
)

// This is the settings file for the background worker.
type WorkerAppSetting struct {
	// Sweep expired stories every other interval, in seconds.
	STORY_REAPER_INTERVAL_SECOND int64 `yaml:"STORY_REAPER_INTERVAL_SECOND"`
	// Recompute the trending leaderboard every other interval, in seconds.
	TRENDING_INTERVAL_SECOND int64 `yaml:"TRENDING_INTERVAL_SECOND"`
	// Only posts created within this window are considered for trending,
	// in hours.
	TRENDING_WINDOW_HOUR int64 `yaml:"TRENDING_WINDOW_HOUR"`
	// Engagement decay half-life used by the trending scorer, in hours.
	// 0 falls back to the ranker default.
	TRENDING_HALF_LIFE_HOUR int64 `yaml:"TRENDING_HALF_LIFE_HOUR"`
}

func ParseWorkerAppSetting(path string) WorkerAppSetting {
	c := WorkerAppSetting{}
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		log.Fatal("yamlFile. get err: ", err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		log.Fatal("Unmarshal: ", err)
	}
	return c
}
