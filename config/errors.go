// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"

	"github.com/bitfsorg/rewardledger-go/errkind"
)

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errkind.New(errkind.ErrValidation, "config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidListenAddr indicates the listen address is malformed.
	ErrInvalidListenAddr = errkind.New(errkind.ErrValidation, "config: invalid listen address")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errkind.New(errkind.ErrValidation, "config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errkind.New(errkind.ErrValidation, "config: data directory must not be empty")

	// ErrInvalidEmission indicates the daily emission is not a non-negative decimal.
	ErrInvalidEmission = errkind.New(errkind.ErrValidation, "config: invalid daily emission")

	// ErrInvalidShares indicates malformed category shares or shares summing past one.
	ErrInvalidShares = errkind.New(errkind.ErrValidation, "config: invalid category shares")

	// ErrInvalidAddress indicates a configured address does not parse.
	ErrInvalidAddress = errkind.New(errkind.ErrValidation, "config: invalid address")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")
)
