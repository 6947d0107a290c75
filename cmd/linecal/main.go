package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linecal/internal/config"
	"linecal/internal/export"
	"linecal/internal/log"
	"linecal/internal/model"
	"linecal/internal/notify"
	"linecal/internal/repository"
	"linecal/internal/scheduler"
	"linecal/internal/session"
	"linecal/internal/storage"
	"linecal/internal/view"
	"linecal/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Error("config load failed", err)
		os.Exit(1)
	}

	store, err := storage.OpenSQLite(cfg.DBPath, 0)
	if err != nil {
		log.Error("open storage failed", err)
		os.Exit(1)
	}
	defer store.Close()

	sess, err := session.Start(store, model.Profile{
		UserID:      cfg.Profile.UserID,
		DisplayName: cfg.Profile.DisplayName,
	})
	if err != nil {
		log.Error("session start failed", err)
		os.Exit(1)
	}

	schedules, err := repository.NewScheduleRepository(store, sess.UserID())
	if err != nil {
		log.Error("load schedules failed", err)
		os.Exit(1)
	}
	categories, err := repository.NewCategoryRepository(store, sess.UserID())
	if err != nil {
		log.Error("load categories failed", err)
		os.Exit(1)
	}
	var storedPrefs json.RawMessage
	firstRun := store.Get(repository.PrefsKey(sess.UserID()), &storedPrefs) == storage.ErrNotFound

	prefs, err := repository.NewPrefsRepository(store, sess.UserID())
	if err != nil {
		log.Error("load preferences failed", err)
		os.Exit(1)
	}
	if firstRun {
		if err := prefs.SetWeekStartsOn(cfg.WeekStartsOn()); err != nil {
			log.Error("seed week start failed", err)
		}
	}

	notifier := buildNotifier(cfg)
	notifier.RequestPermission()

	reminders := scheduler.New(notifier)
	defer reminders.CancelAll()

	server := web.NewServer(cfg, web.Deps{
		Session:    sess,
		Schedules:  schedules,
		Categories: categories,
		Prefs:      prefs,
		View:       view.New(prefs),
		Reminders:  reminders,
		Exporter:   export.New(sess.UserID(), schedules, categories),
	})
	server.ReconcileReminders()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error("load timezone failed, using local", err, "name", cfg.Timezone)
		loc = time.Local
	}

	cron := scheduler.NewCronRunner(loc)
	interval := time.Duration(cfg.ReconcileMinutes) * time.Minute
	if _, err := cron.ScheduleInterval(interval, func() {
		server.ReconcileReminders()
	}); err != nil {
		log.Error("schedule reconcile failed", err)
		os.Exit(1)
	}
	if cfg.SummaryTime != "" {
		if _, err := cron.ScheduleDaily(cfg.SummaryTime, func() {
			text := server.DailySummary(time.Now().In(loc))
			notifier.Show("今日の予定", text, notify.Metadata{})
		}); err != nil {
			log.Error("schedule daily summary failed", err)
			os.Exit(1)
		}
	}
	cron.Start()
	defer cron.Stop()

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.Handler(),
	}
	go func() {
		log.Info("http server started", "listen", "http://"+cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", err)
	}
	log.Info("shutdown complete")
}

// buildNotifier prefers the push channel; without credentials reminders
// fall back to the console.
func buildNotifier(cfg *config.Config) notify.Notifier {
	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		log.Error("push notifier init failed, using console", err)
		return notify.NewConsole()
	}
	if tg.Permission() != notify.PermissionGranted {
		return notify.NewConsole()
	}
	return tg
}
