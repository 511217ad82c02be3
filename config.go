package forkify

import "time"

// APIConfig describes how to reach the recipe API.
type APIConfig struct {
	BaseURL        string        `env:"FORKIFY_API_URL,default=https://forkify-api.herokuapp.com/api/v2/recipes/"`
	Key            string        `env:"FORKIFY_API_KEY"`
	Timeout        time.Duration `env:"FORKIFY_TIMEOUT,default=10s"`
	ResultsPerPage int           `env:"RESULTS_PER_PAGE,default=10"`
}

// StoreConfig selects and configures the bookmarks backend.
type StoreConfig struct {
	Backend    string `env:"BOOKMARKS_BACKEND,default=file"`
	FileDir    string `env:"BOOKMARKS_DIR,default=artifacts"`
	S3Bucket   string `env:"BOOKMARKS_S3_BUCKET"`
	S3Prefix   string `env:"BOOKMARKS_S3_PREFIX,default=forkify/"`
	RedisURL   string `env:"BOOKMARKS_REDIS_URL,default=redis://localhost:6379/0"`
	SQLitePath string `env:"BOOKMARKS_SQLITE_PATH,default=artifacts/forkify.db"`
}
