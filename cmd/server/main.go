package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/finragas/decisions-dashboard/pkg/chat"
	"github.com/finragas/decisions-dashboard/pkg/config"
	"github.com/finragas/decisions-dashboard/pkg/server"
	"github.com/finragas/decisions-dashboard/pkg/session"
	"github.com/finragas/decisions-dashboard/pkg/tablestore"
	"github.com/finragas/decisions-dashboard/pkg/workflow"
)

var configPath = flag.String("config", getEnv("DASHBOARD_CONFIG", ""), "Path to the YAML config file (optional; env vars also work)")

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}

// newResponder picks the chat backend: the workflow webhook when configured,
// otherwise a direct model call.
func newResponder(cfg *config.Config) (chat.Responder, error) {
	if cfg.Workflow.URL != "" {
		client := workflow.NewClient(cfg.Workflow.URL, cfg.Workflow.Token, workflow.Options{
			Timeout:           cfg.Workflow.Timeout.Std(),
			RetryCount:        cfg.Workflow.RetryCount,
			RequestsPerSecond: cfg.Workflow.RequestsPerSecond,
		})
		return chat.ResponderFunc(client.Send), nil
	}

	return chat.NewOpenAIResponder(cfg.Workflow.OpenAIAPIKey, cfg.Workflow.OpenAIModel)
}

// newRecordSource picks the table store backend: the hosted REST API or a
// direct Postgres connection.
func newRecordSource(cfg *config.Config) (tablestore.RecordSource, error) {
	if cfg.Store.URL != "" {
		return tablestore.NewClient(cfg.Store.URL, cfg.Store.APIKey, cfg.Store.Table), nil
	}
	return tablestore.OpenPostgres(cfg.Store.DSN, cfg.Store.Table)
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}

	log := newLogger(cfg.Log.Level)

	responder, err := newResponder(cfg)
	if err != nil {
		log.Fatalf("failed to create chat backend: %v", err)
	}

	records, err := newRecordSource(cfg)
	if err != nil {
		log.Fatalf("failed to create record source: %v", err)
	}

	sessions := session.NewManager(session.Config{
		MaxMessages:   cfg.Sessions.MaxMessages,
		MaxCharacters: cfg.Sessions.MaxCharacters,
		IdleTTL:       cfg.Sessions.IdleTTL.Std(),
	})

	chatSvc := chat.NewService(responder, sessions, log)
	srv := server.New(chatSvc, records, log)

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("dashboard server listening")
		if err := srv.Listen(cfg.Server.Addr); err != nil {
			log.WithField("error", err).Error("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		log.WithField("error", err).Error("shutdown error")
	}
}
