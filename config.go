// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"time"

	"github.com/cwnourse/pdfread/logger"
	"github.com/go-playground/validator/v10"
)

type ParsingMode string

const (
	Strict     ParsingMode = "strict"
	BestEffort ParsingMode = "best-effort"
)

type Config struct {
	MaxConcurrentDocs int           `validate:"min=1,max=10"`
	WorkerTimeout     time.Duration `validate:"required"`
	ParsingMode       ParsingMode   `validate:"oneof=strict best-effort"`
	MaxRetries        int           `validate:"min=0,max=3"`
	DebugOn           bool
	Logger            logger.LogFunc
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxConcurrentDocs: 5,
		WorkerTimeout:     5 * time.Second,
		ParsingMode:       BestEffort,
		MaxRetries:        3,
		DebugOn:           false,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating config object")
	validate := validator.New()
	return validate.Struct(cfg)
}
