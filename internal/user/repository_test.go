package user_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasiliy-maslov/user-directory/internal/config"
	"github.com/vasiliy-maslov/user-directory/internal/db"
	"github.com/vasiliy-maslov/user-directory/internal/user"
)

var (
	testDB    *pgxpool.Pool
	testMongo *mongo.Database
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestMain подключается к тестовым хранилищам, только если заданы
// DB_HOST_TEST (postgres) и/или MONGO_URI_TEST (mongo).
// Без них интеграционные тесты репозитория пропускаются.
func TestMain(m *testing.M) {
	var pg *db.Postgres
	if os.Getenv("DB_HOST_TEST") != "" {
		pg = setupPostgres()
		testDB = pg.Pool
	}

	var mg *db.Mongo
	if os.Getenv("MONGO_URI_TEST") != "" {
		mg = setupMongo()
		testMongo = mg.DB
	}

	exitCode := m.Run()

	if pg != nil {
		pg.Close()
	}
	if mg != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		mg.Close(closeCtx)
		cancel()
	}
	os.Exit(exitCode)
}

func setupPostgres() *db.Postgres {
	pgCfg := config.PostgresConfig{
		Host:            os.Getenv("DB_HOST_TEST"),
		Port:            getenv("DB_PORT_TEST", "5432"),
		User:            getenv("DB_USER_TEST", "postgres"),
		Password:        getenv("DB_PASSWORD_TEST", "postgres"),
		DBName:          getenv("DB_NAME_TEST", "users_test"),
		SSLMode:         getenv("DB_SSLMODE_TEST", "disable"),
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MigrationsPath:  "../../migrations",
	}

	if err := db.ApplyMigrations(pgCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate test database")
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pg, err := db.NewPostgres(connectCtx, pgCfg)
	if err != nil {
		log.Fatal().Err(err).Str("db_host", pgCfg.Host).Msg("Failed to connect to test database")
	}
	return pg
}

func setupMongo() *db.Mongo {
	mongoCfg := config.MongoConfig{
		URI:      os.Getenv("MONGO_URI_TEST"),
		Database: getenv("MONGO_DATABASE_TEST", "users_test"),
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mg, err := db.NewMongo(connectCtx, mongoCfg)
	if err != nil {
		log.Fatal().Err(err).Str("db", mongoCfg.Database).Msg("Failed to connect to test mongo")
	}
	if err := user.EnsureMongoIndexes(connectCtx, mg.DB); err != nil {
		log.Fatal().Err(err).Msg("Failed to create test mongo indexes")
	}
	return mg
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("DB_HOST_TEST is not set")
	}
}

func truncateUsersTable(tb testing.TB, pool *pgxpool.Pool) {
	tb.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE users RESTART IDENTITY CASCADE")
	require.NoError(tb, err, "failed to truncate users table")
}

func newTestUser(i int) *user.User {
	return &user.User{
		UserID:      fmt.Sprintf("user_pg_%02d", i),
		FirstName:   "Test",
		LastName:    "User",
		Email:       fmt.Sprintf("pg%02d@example.com", i),
		Password:    "hashed_password",
		PhoneNumber: "+10000000000",
		UserName:    fmt.Sprintf("pg%02d", i),
	}
}

func TestUserRepository_Create(t *testing.T) {
	requireDB(t)
	repo := user.NewRepository(testDB)
	t.Cleanup(func() { truncateUsersTable(t, testDB) })

	u := newTestUser(1)
	require.NoError(t, repo.Create(context.Background(), u))
	require.False(t, u.CreatedAt.IsZero())

	found, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	require.Equal(t, u.UserID, found.UserID)
	require.Equal(t, u.Password, found.Password)
	require.Nil(t, found.ImagePublicID)
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	requireDB(t)
	repo := user.NewRepository(testDB)
	t.Cleanup(func() { truncateUsersTable(t, testDB) })

	require.NoError(t, repo.Create(context.Background(), newTestUser(1)))

	sameEmail := newTestUser(2)
	sameEmail.Email = newTestUser(1).Email
	require.ErrorIs(t, repo.Create(context.Background(), sameEmail), user.ErrUserExists)

	sameName := newTestUser(3)
	sameName.UserName = newTestUser(1).UserName
	require.ErrorIs(t, repo.Create(context.Background(), sameName), user.ErrUserExists)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	requireDB(t)
	repo := user.NewRepository(testDB)

	_, err := repo.GetByID(context.Background(), "user_missing")
	require.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_UpdateImage(t *testing.T) {
	requireDB(t)
	repo := user.NewRepository(testDB)
	t.Cleanup(func() { truncateUsersTable(t, testDB) })

	u := newTestUser(1)
	require.NoError(t, repo.Create(context.Background(), u))
	require.NoError(t, repo.UpdateImage(context.Background(), u.UserID, "avatars/1"))

	found, err := repo.GetByID(context.Background(), u.UserID)
	require.NoError(t, err)
	require.NotNil(t, found.ImagePublicID)
	require.Equal(t, "avatars/1", *found.ImagePublicID)

	require.ErrorIs(t, repo.UpdateImage(context.Background(), "user_missing", "x"), user.ErrUserNotFound)
}

func TestUserRepository_ListExcluding(t *testing.T) {
	requireDB(t)
	repo := user.NewRepository(testDB)
	t.Cleanup(func() { truncateUsersTable(t, testDB) })

	for i := 0; i < 12; i++ {
		require.NoError(t, repo.Create(context.Background(), newTestUser(i)))
	}

	page, err := repo.ListExcluding(context.Background(), "user_pg_00", 0, user.DashboardPageSize)
	require.NoError(t, err)
	require.Len(t, page, 10)
	require.Equal(t, "user_pg_01", page[0].UserID)
	for _, s := range page {
		require.NotEqual(t, "user_pg_00", s.UserID)
	}

	page, err = repo.ListExcluding(context.Background(), "user_pg_00", 10, user.DashboardPageSize)
	require.NoError(t, err)
	require.Len(t, page, 1)

	page, err = repo.ListExcluding(context.Background(), "user_pg_00", 50, user.DashboardPageSize)
	require.NoError(t, err)
	require.Empty(t, page)
}
