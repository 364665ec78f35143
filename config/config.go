// Package config loads client settings from the environment and an optional
// .env file.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/infigaming-com/go-stomp/errors"
	"github.com/infigaming-com/go-stomp/stomp"
)

const (
	EnvURL              = "STOMP_URL"
	EnvAcceptVersion    = "STOMP_ACCEPT_VERSION"
	EnvAutoReconnect    = "STOMP_AUTO_RECONNECT"
	EnvPingInterval     = "STOMP_PING_INTERVAL"
	EnvConnectTimeout   = "STOMP_CONNECT_TIMEOUT"
	EnvLogin            = "STOMP_LOGIN"
	EnvPasscode         = "STOMP_PASSCODE"
	EnvJWTSecret        = "STOMP_JWT_SECRET"
	EnvJWTSubject       = "STOMP_JWT_SUBJECT"
	EnvDestinations     = "STOMP_DESTINATIONS"
	EnvReachabilityAddr = "STOMP_REACHABILITY_ADDR"
	EnvOTLPEndpoint     = "OTLP_ENDPOINT"
)

var errInvalidArgument = errors.NewError(errors.CodeInvalidArgument, "config: invalid argument", nil)

type Config struct {
	URL              string
	AcceptVersion    string
	AutoReconnect    bool
	PingInterval     time.Duration
	ConnectTimeout   time.Duration
	Login            string
	Passcode         string
	JWTSecret        string
	JWTSubject       string
	Destinations     []string
	ReachabilityAddr string
	OTLPEndpoint     string
}

// Load reads envFiles (".env" when none are given) into the process
// environment without overriding variables that are already set, then builds
// a Config. Missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.NewError(errors.CodeInvalidArgument, "config: failed to read env file", err)
	}

	cfg := &Config{
		URL:              os.Getenv(EnvURL),
		AcceptVersion:    getString(EnvAcceptVersion, stomp.DefaultAcceptVersion),
		Login:            os.Getenv(EnvLogin),
		Passcode:         os.Getenv(EnvPasscode),
		JWTSecret:        os.Getenv(EnvJWTSecret),
		JWTSubject:       getString(EnvJWTSubject, "stomp-client"),
		Destinations:     getList(EnvDestinations),
		ReachabilityAddr: os.Getenv(EnvReachabilityAddr),
		OTLPEndpoint:     os.Getenv(EnvOTLPEndpoint),
	}

	var err error
	if cfg.AutoReconnect, err = getBool(EnvAutoReconnect, true); err != nil {
		return nil, err
	}
	if cfg.PingInterval, err = getDuration(EnvPingInterval, stomp.DefaultPingInterval); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout, err = getDuration(EnvConnectTimeout, stomp.DefaultConnectTimeout); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, errors.NewError(errors.CodeInvalidArgument, "config: "+EnvURL+" is required", nil)
	}
	return cfg, nil
}

// ConnectHeaders returns the login and passcode headers that are set.
func (c *Config) ConnectHeaders() map[string]string {
	headers := make(map[string]string)
	if c.Login != "" {
		headers["login"] = c.Login
	}
	if c.Passcode != "" {
		headers["passcode"] = c.Passcode
	}
	return headers
}

func (c *Config) ConnectOptions() stomp.ConnectOptions {
	return stomp.ConnectOptions{
		Timeout:       c.ConnectTimeout,
		AcceptVersion: c.AcceptVersion,
		AutoReconnect: c.AutoReconnect,
	}
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, invalid(key, err)
	}
	return b, nil
}

// getDuration accepts Go durations ("15s") or a plain number of seconds.
func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, invalid(key, err)
	}
	return d, nil
}

func getList(key string) []string {
	parts := lo.Map(strings.Split(os.Getenv(key), ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(parts))
}

func invalid(key string, cause error) error {
	return errors.NewError(errors.CodeInvalidArgument, "config: invalid "+key, cause)
}
