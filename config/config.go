package config

import (
	"flag"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr  string
	DBUrl string
	Debug bool
}

// ParseFlags builds the configuration from command line flags, with
// defaults taken from the environment (a .env file is honored when
// present).
func ParseFlags() (cfg Config, err error) {
	godotenv.Load()

	var host string
	flag.StringVar(&host, "host", envOr("CARBON_HOST", "0.0.0.0"), "listen host name")
	var port uint
	flag.UintVar(&port, "port", envUintOr("CARBON_PORT", 8080), "listen port number")
	flag.StringVar(&cfg.DBUrl, "db-url", envOr("CARBON_DB_URL", "carbon_tracker.sqlite"), "path to SQLite3 DB file")
	flag.BoolVar(&cfg.Debug, "debug", envOr("CARBON_DEBUG", "") != "", "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	return
}

func (cfg Config) Url() string {
	url := cfg.Addr
	url = strings.Replace(url, "0.0.0.0", "localhost", 1)
	return "http://" + url
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envUintOr(key string, fallback uint) uint {
	value, err := strconv.ParseUint(os.Getenv(key), 10, 16)
	if err != nil {
		return fallback
	}
	return uint(value)
}
