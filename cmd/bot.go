package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"repairbot/archive"
	"repairbot/config"
	"repairbot/database"
	"repairbot/gateway"
	"repairbot/handler"
	"repairbot/metrics"
	"repairbot/render"
	"repairbot/session"
)

func runBot(cmd *cobra.Command, args []string) error {
	conf, logger, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	// Connect database
	db, err := sqlx.Connect("postgres", conf.DB.ConnectionString())
	if err != nil {
		return errors.Wrap(err, "cannot connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db.DB, logger); err != nil {
		return err
	}

	sink, err := openArchive(conf, logger)
	if err != nil {
		return err
	}

	renderer, err := render.NewPDF(conf.Render.FontPath, logger)
	if err != nil {
		return err
	}

	tg, err := gateway.NewTelegram(conf.Telegram.Token, &http.Client{Timeout: conf.Telegram.Timeout})
	if err != nil {
		return err
	}
	logger.Infof("authorized on account @%s", tg.Bot.Self.UserName)

	if conf.Metrics.Listen != "" {
		srv := serveMetrics(conf.Metrics.Listen, logger)
		defer srv.Close()
	}

	// The poll must end well before the HTTP client gives up on it.
	updates, err := tg.Updates(int(conf.Telegram.Timeout.Seconds() / 2))
	if err != nil {
		return errors.Wrap(err, "cannot start polling")
	}

	h := handler.NewHandler(
		database.NewInstance(db, conf.DB.Timeout),
		tg,
		renderer,
		sink,
		session.NewStore(),
		logger,
		conf,
	)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		sink.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			tg.Bot.StopReceivingUpdates()
			return nil
		case u, ok := <-updates:
			if !ok {
				return errors.New("updates channel closed")
			}

			ev, ok := gateway.EventFromUpdate(u)
			if !ok {
				continue
			}

			wg.Add(1)
			go func(ev gateway.Event) {
				defer wg.Done()
				h.Dispatch(context.Background(), ev)
			}(ev)
		}
	}
}

// openArchive checks the remote folders and creates the local ones. The bot
// does not start without both.
func openArchive(conf *config.Config, logger logrus.FieldLogger) (*archive.Archive, error) {
	disk := archive.NewDisk(
		conf.Disk.Endpoint,
		conf.Disk.Token,
		conf.Disk.Folder,
		&http.Client{Timeout: conf.Disk.Timeout},
	)

	ctx, cancel := context.WithTimeout(context.Background(), conf.Disk.Timeout)
	defer cancel()

	if err := disk.Ensure(ctx, archive.Dirs...); err != nil {
		return nil, errors.Wrap(err, "cannot prepare archive")
	}

	sink := archive.New(conf.Storage.Dir, disk, conf.Disk.Timeout, logger)
	if err := sink.Prepare(); err != nil {
		return nil, err
	}

	return sink, nil
}

func serveMetrics(addr string, logger logrus.FieldLogger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()

	return srv
}
