package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hoopsight/points-api/internal/logic"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// Pinger reports a backing service's health for the readiness endpoint.
type Pinger func(ctx context.Context) error

type Config struct {
	Analysis logic.AnalysisService
	// Reports is optional; nil disables the history endpoints.
	Reports      logic.ReportStore
	RedisPing    Pinger
	PostgresPing Pinger
	Logger       *zap.Logger
}

type Handler struct {
	analysis     logic.AnalysisService
	reports      logic.ReportStore
	redisPing    Pinger
	postgresPing Pinger
	logger       *zap.SugaredLogger
	validator    *validator.Validate
}

func New(cfg Config) *Handler {
	return &Handler{
		analysis:     cfg.Analysis,
		reports:      cfg.Reports,
		redisPing:    cfg.RedisPing,
		postgresPing: cfg.PostgresPing,
		logger:       cfg.Logger.Sugar(),
		validator:    validator.New(),
	}
}
