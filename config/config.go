package config

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

const (
	defaultListenAddr  = ":8005"
	defaultUploadDir   = "uploads"
	defaultCacheSize   = 256
	defaultChartWidth  = 1024
	defaultChartHeight = 768
)

type Config struct {
	DbDsn            string
	TgToken          string
	ListenAddr       string
	UploadDir        string
	PublicURL        string
	SessionCacheSize int
	ChartWidth       int
	ChartHeight      int
}

var (
	config *Config
	once   sync.Once
)

// GetConfig возвращает singleton экземпляр конфигурации
func GetConfig() *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil {
			log.Printf("no .env file loaded: %v", err)
		}
		config = FromEnv()
	})
	return config
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		DbDsn:            os.Getenv("DB_DSN"),
		TgToken:          os.Getenv("TG_TOKEN"),
		ListenAddr:       getString("LISTEN_ADDR", defaultListenAddr),
		UploadDir:        getString("UPLOAD_DIR", defaultUploadDir),
		PublicURL:        os.Getenv("PUBLIC_URL"),
		SessionCacheSize: getInt("SESSION_CACHE_SIZE", defaultCacheSize),
		ChartWidth:       getInt("CHART_WIDTH", defaultChartWidth),
		ChartHeight:      getInt("CHART_HEIGHT", defaultChartHeight),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}
