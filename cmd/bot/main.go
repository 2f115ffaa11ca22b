package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"StonkBot/internal/calendar"
	"StonkBot/internal/chart"
	"StonkBot/internal/chat"
	"StonkBot/internal/collector"
	"StonkBot/internal/command"
	"StonkBot/internal/config"
	"StonkBot/internal/logging"
	"StonkBot/internal/model"
	"StonkBot/internal/notifier"
	"StonkBot/internal/recorder"
	"StonkBot/internal/scheduler"
	"StonkBot/internal/search"
	"StonkBot/internal/server"
)

// newsInterval spaces the links posted by the news commands.
const newsInterval = time.Second

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	closer := logging.Setup(logging.Options{
		Debug:      cfg.Debug,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer closer.Close()
	log.Info().Msg("StonkBot starting...")

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("StonkBot stopped with error")
		closer.Close()
		os.Exit(1)
	}
	log.Info().Msg("StonkBot stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Schedule.Timezone, err)
	}
	window, err := scheduleWindow(cfg, loc)
	if err != nil {
		return err
	}

	// Market data
	client := collector.NewHTTPClient(cfg.Providers.Timeout, cfg.Proxy)
	yahoo := collector.NewYahooFetcher(cfg.Providers.YahooBaseURL, client)
	crypto := collector.NewCryptoCompareFetcher(cfg.Providers.CryptoCompareBaseURL, cfg.Providers.CryptoCompareAPIKey, client)
	fx := collector.NewFrankfurterFetcher(cfg.Providers.FXBaseURL, client)

	var series collector.SeriesFetcher = collector.NewRouter(yahoo, crypto)
	if cfg.Cache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unreachable, caching disabled")
		} else {
			series = collector.NewCachingFetcher(rdb, cfg.Cache.TTL, series, "series")
		}
	}
	log.Info().Str("source", series.Name()).Msg("market data ready")

	// Recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	tickers, err := command.LoadTickers(cfg.TickersFile)
	if err != nil {
		return err
	}

	d := command.NewDispatcher(command.Services{
		Series:       series,
		Quotes:       yahoo,
		Prices:       crypto,
		Rates:        fx,
		Stats:        collector.NewCollector(yahoo),
		News:         search.NewGoogleNews(cfg.Providers.NewsBaseURL, client),
		Renderer:     chart.NewRenderer(loc),
		Tickers:      tickers,
		Recorder:     rec,
		Timeout:      cfg.CommandTimeout,
		NewsInterval: newsInterval,
	})

	bot := chat.NewBot(ctx, nil, d, cfg.Discord.MainChannelID, cfg.Discord.AlternateChannelID)

	posters := []scheduler.Poster{bot}
	var tg *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		// Long polls hold the request for 30s, so the mirror gets its own client.
		tgClient := collector.NewHTTPClient(time.Minute, cfg.Proxy)
		tg, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, "", tgClient)
		if err != nil {
			log.Warn().Err(err).Msg("telegram mirror disabled")
			tg = nil
		} else {
			posters = append(posters, tg)
		}
	}

	catchUp := scheduler.CatchUpFor(cfg.CatchUp(), rec)
	if cfg.CatchUp() && !catchUp {
		log.Warn().Msg("no announcement state store, catch-up disabled")
	}
	announcer := scheduler.NewAnnouncer(window, calendar.NewUSHolidays(loc), rec, catchUp, posters...)
	rotator := scheduler.NewRotator(bot)
	sched := scheduler.NewScheduler(ctx, announcer, rotator)
	if err := sched.RegisterAll(cfg.Schedule.AnnounceCron, cfg.Schedule.PresenceCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}

	var ready atomic.Bool
	bot.OnReady = func() {
		rotator.Tick()
		sched.Start()
		ready.Store(true)
		log.Info().Msg("StonkBot is running. Press Ctrl+C to stop.")
	}

	session, err := chat.Open(cfg.Discord.APIKey, bot)
	if err != nil {
		return fmt.Errorf("connect to discord: %w", err)
	}
	defer session.Close()

	if tg != nil {
		go tg.StartPolling(ctx, d.TextReply)
		log.Info().Msg("telegram polling started")
	}

	serverErr := make(chan error, 1)
	if cfg.HTTP.Addr != "" {
		go func() { serverErr <- server.Run(ctx, cfg.HTTP.Addr, ready.Load) }()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, stopping...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("health server: %w", err)
		}
	}

	sched.Stop()
	return nil
}

func scheduleWindow(cfg *config.Config, loc *time.Location) (model.ScheduleWindow, error) {
	w := model.DefaultSchedule(loc)
	open, err := config.ParseClock(cfg.Schedule.Open)
	if err != nil {
		return w, fmt.Errorf("schedule open: %w", err)
	}
	closing, err := config.ParseClock(cfg.Schedule.Close)
	if err != nil {
		return w, fmt.Errorf("schedule close: %w", err)
	}
	if closing <= open {
		return w, fmt.Errorf("schedule close %s is not after open %s", cfg.Schedule.Close, cfg.Schedule.Open)
	}
	w.Open, w.Close = open, closing
	return w, nil
}
