package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/studio-churn/internal/migrations"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// Membership возвращает абонемент со стандартными полями
func (f *TestDataFactory) Membership(uniqueID, location string, order, end time.Time, status models.MembershipStatus) models.Membership {
	return models.Membership{
		UniqueID:       uniqueID,
		MemberID:       "M-" + uniqueID,
		FirstName:      "Anna",
		LastName:       "Ivanova",
		Email:          uniqueID + "@example.com",
		MembershipName: "Unlimited Monthly",
		Location:       location,
		OrderDate:      order,
		StartDate:      order,
		EndDate:        end,
		Status:         status,
		SessionsLeft:   4,
		Paid:           "3500",
	}
}

// CreateMemberships сохраняет абонементы через репозиторий
func (f *TestDataFactory) CreateMemberships(t *testing.T, records ...models.Membership) {
	n, err := f.storage.UpsertMemberships(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, len(records), n)
}

// CreateUser создает тестового сотрудника
func (f *TestDataFactory) CreateUser(t *testing.T, username, email, passwordHash, role string) string {
	uid, err := f.storage.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	})
	require.NoError(t, err)
	return uid
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyMembershipCount проверяет количество абонементов в БД
func (v *TestVerification) VerifyMembershipCount(t *testing.T, expected int) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM memberships").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, expected, count)
}

// VerifyTicketCount проверяет количество тикетов в БД
func (v *TestVerification) VerifyTicketCount(t *testing.T, expected int) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM tickets").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, expected, count)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// setupTestDatabase поднимает контейнер PostgreSQL и накатывает миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable", "TimeZone=UTC")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")
	require.NoError(t, migrations.Run(storage.DB), "Failed to run migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}
