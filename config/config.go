// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the rewardledger configuration file: one
// "key = value" pair per line, "#" comments and blank lines ignored.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

// configFileName is the name of the config file inside the data directory.
const configFileName = "config"

// Config holds the settings of a rewardledger deployment.
type Config struct {
	DataDir    string // bbolt database and config live here
	ListenAddr string // metrics endpoint
	Network    string // mainnet, testnet or regtest
	LogLevel   string
	LogFile    string // empty logs to stderr

	DailyEmission  string // decimal token amount
	StartTimestamp int64  // unix seconds of day 0
	CategoryShares string // "category:share,..." with decimal shares

	Governance  string
	Distributor string
	Treasury    string
	WorkerPool  string
}

// DefaultDataDir returns ~/.rewardledger, or .rewardledger in the working
// directory when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rewardledger"
	}
	return filepath.Join(home, ".rewardledger")
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), configFileName)
}

// DefaultConfig returns a configuration with every field set to its default.
func DefaultConfig() Config {
	return Config{
		DataDir:        DefaultDataDir(),
		ListenAddr:     ":9102",
		Network:        "mainnet",
		LogLevel:       "info",
		DailyEmission:  "1000000",
		CategoryShares: "assets:0.6,worker-pool:0.3,treasury:0.1",
	}
}

// Emission returns DailyEmission in fixed point.
func (c Config) Emission() (*big.Int, error) {
	v, err := fixedpoint.Parse(c.DailyEmission)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEmission, err)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative", ErrInvalidEmission)
	}
	return v, nil
}

// Shares parses CategoryShares into fixed-point fractions.
func (c Config) Shares() (map[string]*big.Int, error) {
	out := make(map[string]*big.Int)
	if strings.TrimSpace(c.CategoryShares) == "" {
		return out, nil
	}
	for _, part := range strings.Split(c.CategoryShares, ",") {
		cat, share, ok := strings.Cut(strings.TrimSpace(part), ":")
		cat = strings.TrimSpace(cat)
		if !ok || cat == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidShares, part)
		}
		if _, dup := out[cat]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidShares, cat)
		}
		v, err := fixedpoint.Parse(strings.TrimSpace(share))
		if err != nil || v.Sign() < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidShares, part)
		}
		out[cat] = v
	}
	return out, nil
}

// FormatShares renders shares in the CategoryShares format, sorted by
// category.
func FormatShares(shares map[string]*big.Int) string {
	cats := make([]string, 0, len(shares))
	for cat := range shares {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	parts := make([]string, len(cats))
	for i, cat := range cats {
		parts[i] = cat + ":" + fixedpoint.Format(shares[cat])
	}
	return strings.Join(parts, ",")
}

// LoadConfig reads the config file at path. Keys missing from the file keep
// their defaults and unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on its first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "listen":
		c.ListenAddr = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "dailyemission":
		c.DailyEmission = value
	case "starttimestamp":
		ts, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("starttimestamp: %w", err)
		}
		c.StartTimestamp = ts
	case "shares":
		c.CategoryShares = value
	case "governance":
		c.Governance = value
	case "distributor":
		c.Distributor = value
	case "treasury":
		c.Treasury = value
	case "workerpool":
		c.WorkerPool = value
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# rewardledger configuration\n\n")
	for _, kv := range [][2]string{
		{"datadir", cfg.DataDir},
		{"listen", cfg.ListenAddr},
		{"network", cfg.Network},
		{"loglevel", cfg.LogLevel},
		{"logfile", cfg.LogFile},
		{"dailyemission", cfg.DailyEmission},
		{"starttimestamp", strconv.FormatInt(cfg.StartTimestamp, 10)},
		{"shares", cfg.CategoryShares},
		{"governance", cfg.Governance},
		{"distributor", cfg.Distributor},
		{"treasury", cfg.Treasury},
		{"workerpool", cfg.WorkerPool},
	} {
		fmt.Fprintf(&b, "%s = %s\n", kv[0], kv[1])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
