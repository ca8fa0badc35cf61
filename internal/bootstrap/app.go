package bootstrap

import (
	"context"
	"fmt"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docuquery/internal/ai"
	"docuquery/internal/config"
	"docuquery/internal/model"
	minioClient "docuquery/internal/platform/minio"
	mysqlClient "docuquery/internal/platform/mysql"
	rabbitmqClient "docuquery/internal/platform/rabbitmq"
	redisClient "docuquery/internal/platform/redis"
	"docuquery/internal/repository"
	"docuquery/internal/storage"
	"docuquery/internal/worker"
)

// App holds every external client, built once and passed down explicitly.
type App struct {
	Config       *config.Config
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	Minio        *miniogo.Client
	Blobs        *storage.BlobStore
	LLM          *ai.Client
	UploadEvents *rabbitmqClient.EventPublisher
	EventWorker  *worker.UploadEventWorker

	StartedAt time.Time
}

// closeStack unwinds partially-built dependencies when a later constructor
// fails, newest first.
type closeStack struct {
	fns []func()
}

func (s *closeStack) push(fn func()) {
	s.fns = append(s.fns, fn)
}

func (s *closeStack) unwind() {
	for i := len(s.fns) - 1; i >= 0; i-- {
		s.fns[i]()
	}
	s.fns = nil
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	opened := &closeStack{}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	opened.push(func() {
		if sqlDB, err := mysqlDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Upload{}, &model.Question{}, &model.UploadEvent{}); err != nil {
		opened.unwind()
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		opened.unwind()
		return nil, err
	}
	opened.push(func() { _ = redisCli.Close() })

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		opened.unwind()
		return nil, err
	}
	opened.push(func() { _ = mqConn.Close() })

	// The minio client holds no connection of its own, nothing to unwind.
	minioCli, err := minioClient.New(ctx, cfg.MinIO)
	if err != nil {
		opened.unwind()
		return nil, err
	}

	eventRepo := repository.NewUploadEventRepository(mysqlDB)
	eventWorker := worker.NewUploadEventWorker(mqConn, eventRepo, cfg.RabbitMQ.UploadEventQueue)
	if err := eventWorker.Start(ctx); err != nil {
		opened.unwind()
		return nil, fmt.Errorf("start upload event worker failed: %w", err)
	}

	return &App{
		Config:       cfg,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		Minio:        minioCli,
		Blobs:        storage.NewBlobStore(minioCli, cfg.MinIO.Bucket),
		LLM:          ai.NewClient(),
		UploadEvents: rabbitmqClient.NewEventPublisher(mqConn, cfg.RabbitMQ.UploadEventQueue),
		EventWorker:  eventWorker,
		StartedAt:    time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
