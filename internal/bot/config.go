// Package bot implements a sequential load-generation client for the blog
// API. A run walks three stages (users, posts, likes), each composed from a
// payload source and an instance creator so tests can substitute either side.
package bot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ConfigData describes one bot run.
type ConfigData struct {
	APIURL          string `json:"api_url"`
	NumberOfUsers   int    `json:"number_of_users"`
	MaxPostsPerUser int    `json:"max_posts_per_user"`
	MaxLikesPerUser int    `json:"max_likes_per_user"`
}

// Validate reports the first configuration problem found.
func (c ConfigData) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url must not be empty")
	}
	if c.NumberOfUsers < 0 {
		return errors.New("number_of_users must be >= 0")
	}
	if c.MaxPostsPerUser < 0 {
		return errors.New("max_posts_per_user must be >= 0")
	}
	if c.MaxLikesPerUser < 0 {
		return errors.New("max_likes_per_user must be >= 0")
	}
	return nil
}

// ConfigReader yields a run configuration from some backing source.
type ConfigReader interface {
	ReadConfig() (ConfigData, error)
}

// JSONConfigReader loads ConfigData from a JSON file on disk.
type JSONConfigReader struct {
	Path string
}

// ReadConfig parses and validates the JSON config file.
func (r JSONConfigReader) ReadConfig() (ConfigData, error) {
	raw, err := os.ReadFile(r.Path)
	if err != nil {
		return ConfigData{}, fmt.Errorf("read bot config: %w", err)
	}
	var cfg ConfigData
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return ConfigData{}, fmt.Errorf("parse bot config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return ConfigData{}, err
	}
	return cfg, nil
}
