package service

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sol-audit-service/internal/domain"
	"sol-audit-service/internal/queue"
	"sol-audit-service/internal/repository"
)

type serviceTestEnv struct {
	db       *gorm.DB
	users    repository.UserRepository
	requests repository.AuditRequestRepository
	queue    *queue.RedisAuditQueue
}

func newServiceEnvForTest(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.AuditRequest{}); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &serviceTestEnv{
		db:       db,
		users:    repository.NewUserRepository(db),
		requests: repository.NewAuditRequestRepository(db),
		queue:    queue.NewRedisAuditQueue(client, "audit_queue"),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createUserWithCredits(t *testing.T, db *gorm.DB, telegramID int64, credits int) *domain.User {
	t.Helper()
	user := &domain.User{TelegramID: telegramID, AvailableCredits: credits}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
