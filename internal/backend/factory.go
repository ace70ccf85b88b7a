package backend

import (
	"context"
	"fmt"
	"log/slog"

	"scadenze/internal/amqp"
	"scadenze/internal/memory"
	"scadenze/internal/notify"
	"scadenze/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// The AMQP email pipeline is optional; without it the app logs
	// deliveries instead.
	var notifier notify.Sender = notify.LogSender{}
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, emails will only be logged", "error", err)
			amqpClient = nil
		} else {
			notifier = notify.NewQueueSender(amqpClient)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	cleanup := func() error {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				f.logger.Warn("AMQP close failed", "error", err)
			}
		}
		return repo.Close()
	}

	return &Result{
		Store:    repo,
		Notifier: notifier,
		Cleanup:  cleanup,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(Config) (*Result, error) {
	f.logger.Info("Initialized memory backend")

	return &Result{
		Store:    memory.New(),
		Notifier: notify.LogSender{},
		Cleanup:  nil,
	}, nil
}
