package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/config"
	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/display"
	"github.com/christopherlanz-debug/dsV2/internal/events"
	"github.com/christopherlanz-debug/dsV2/internal/playback"
	"github.com/christopherlanz-debug/dsV2/internal/playlist"
	"github.com/christopherlanz-debug/dsV2/internal/redis"
	"github.com/christopherlanz-debug/dsV2/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}
	store := db.NewStore(nil)

	redis.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)

	var displayPub playback.Display
	var mqttPub *display.Publisher
	if cfg.MQTTBrokerURL != "" {
		mqttPub, err = display.NewPublisher(cfg.MQTTBrokerURL, "dsv2-server")
		if err != nil {
			log.Error().Err(err).Msg("mqtt connect failed, display commands will be dropped")
			displayPub = display.Nop{}
		} else {
			displayPub = mqttPub
			defer mqttPub.Close()
		}
	} else {
		displayPub = display.Nop{}
	}

	var storageSystem storage.Storage
	if cfg.UseSpaces {
		storageSystem, err = storage.NewSpacesStorage(
			cfg.SpacesEndpoint, cfg.SpacesRegion, cfg.SpacesBucket,
			cfg.SpacesCDNURL, cfg.SpacesAccessKey, cfg.SpacesSecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("spaces storage init failed")
		}
	} else {
		storageSystem = storage.NewLocalStorage(cfg.UploadDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	playlists := playlist.NewService(store)
	bus := events.NewBus()

	manager := playback.NewManager(
		playback.StoreLibrary{Store: store, Playlists: playlists},
		displayPub,
		bus,
		playback.SystemClock{},
		cfg.ResolveInterval,
		log.Logger,
	)
	go func() {
		if err := manager.Run(ctx); err != nil {
			log.Error().Err(err).Msg("playback manager stopped")
		}
	}()

	// bring up a playback loop for every known screen
	screens, err := store.ListScreens()
	if err != nil {
		log.Fatal().Err(err).Msg("could not list screens")
	}
	for _, s := range screens {
		manager.StartScreen(s.ID)
	}

	// sibling processes publish refresh commands over redis
	go redis.SubscribeRefresh(ctx, func(screenID int) {
		if screenID == 0 {
			manager.ScheduleChanged()
			return
		}
		manager.Refresh(screenID)
	})

	if mqttPub != nil {
		go mqttPub.ForwardStates(ctx, bus)
	}

	r := gin.Default()
	RegisterRoutes(r, cfg, store, storageSystem, playlists, manager)

	log.Info().Str("address", cfg.ServerAddress).Msg("listening")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
