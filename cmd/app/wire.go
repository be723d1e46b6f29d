//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/ootd-recommender/internal/bootstrap"
	"github.com/yanqian/ootd-recommender/internal/domain/outfit"
	"github.com/yanqian/ootd-recommender/internal/infra/config"
	httpiface "github.com/yanqian/ootd-recommender/internal/interface/http"
	"github.com/yanqian/ootd-recommender/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideOutfitConfig,
		provideLLMConfig,
		provideChatClient,
		provideTokenCounter,
		provideEngines,
		providePostgresPool,
		provideProfileRepository,
		provideWardrobeRepository,
		provideWeatherStore,
		outfit.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
