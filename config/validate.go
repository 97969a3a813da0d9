// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"math/big"
	"net"
	"strings"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != address.Mainnet && cfg.Network != address.Testnet && cfg.Network != address.Regtest {
		return ErrInvalidNetwork
	}

	if err := validateAddr(cfg.ListenAddr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidListenAddr, err)
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if _, err := cfg.Emission(); err != nil {
		return err
	}

	shares, err := cfg.Shares()
	if err != nil {
		return err
	}
	sum := new(big.Int)
	for _, s := range shares {
		sum.Add(sum, s)
	}
	if sum.Cmp(fixedpoint.Unit()) > 0 {
		return fmt.Errorf("%w: shares sum to %s", ErrInvalidShares, fixedpoint.Format(sum))
	}

	for name, addr := range map[string]string{
		"governance":  cfg.Governance,
		"distributor": cfg.Distributor,
		"treasury":    cfg.Treasury,
		"workerpool":  cfg.WorkerPool,
	} {
		if addr == "" {
			continue
		}
		if _, err := address.ParseNetwork(addr, cfg.Network); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidAddress, name, err)
		}
	}

	return nil
}

// validateAddr checks that addr is a valid host:port address.
func validateAddr(addr string) error {
	_, _, err := net.SplitHostPort(addr)
	return err
}
