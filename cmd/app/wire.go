//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/tenkiguide/backend/internal/bootstrap"
	"github.com/tenkiguide/backend/internal/domain/chat"
	"github.com/tenkiguide/backend/internal/domain/location"
	"github.com/tenkiguide/backend/internal/domain/speech"
	"github.com/tenkiguide/backend/internal/infra/audio/ffmpeg"
	"github.com/tenkiguide/backend/internal/infra/config"
	"github.com/tenkiguide/backend/internal/infra/geo/arcgis"
	"github.com/tenkiguide/backend/internal/infra/geo/ipapi"
	"github.com/tenkiguide/backend/internal/infra/llm/gemini"
	"github.com/tenkiguide/backend/internal/infra/speech/googlecloud"
	"github.com/tenkiguide/backend/internal/infra/weather/openmeteo"
	httpiface "github.com/tenkiguide/backend/internal/interface/http"
	"github.com/tenkiguide/backend/pkg/logger"
)

func initializeApp(ctx context.Context) (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideLocationConfig,
		provideGeminiClient,
		provideGeocoder,
		provideIPLocator,
		provideGeocodeCache,
		provideWeatherClient,
		provideSTTClient,
		provideTTSClient,
		provideTranscoder,
		location.NewResolver,
		chat.NewService,
		speech.NewService,
		wire.Bind(new(location.Classifier), new(*gemini.Client)),
		wire.Bind(new(chat.ReplyGenerator), new(*gemini.Client)),
		wire.Bind(new(location.Geocoder), new(*arcgis.Client)),
		wire.Bind(new(location.IPLocator), new(*ipapi.Client)),
		wire.Bind(new(chat.WeatherClient), new(*openmeteo.Client)),
		wire.Bind(new(chat.LocationResolver), new(*location.Resolver)),
		wire.Bind(new(httpiface.LocationNamer), new(*location.Resolver)),
		wire.Bind(new(speech.Transcoder), new(*ffmpeg.Transcoder)),
		wire.Bind(new(speech.Recognizer), new(*googlecloud.STTClient)),
		wire.Bind(new(speech.Synthesizer), new(*googlecloud.TTSClient)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
