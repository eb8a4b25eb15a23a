package integration

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	_ "github.com/lib/pq"
	_ "github.com/marcboeker/go-duckdb"
)

func setupPQ(t *testing.T) *sql.DB {
	t.Helper()

	var db *sql.DB
	setupPostgres(t, func(dsn string) error {
		var err error
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()
		return db.PingContext(ctx)
	})
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func setupPGX(t *testing.T) *pgxpool.Pool {
	t.Helper()

	var db *pgxpool.Pool
	setupPostgres(t, func(dsn string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()
		var err error
		db, err = pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		return db.Ping(ctx)
	})
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// In-memory database, no container required.
func setupDuck(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Could not open duckdb: %s", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func setupPostgres(t *testing.T, connect func(string) error) {
	t.Helper()

	if testing.Short() {
		t.Skip("requires Docker")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not construct pool: %s", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Fatalf("Could not connect to Docker: %s", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=test",
			"POSTGRES_USER=test",
			"POSTGRES_DB=test",
			"TZ=UTC",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}
	resource.Expire(120) //nolint:errcheck

	dsn := fmt.Sprintf("postgres://test:test@%s/test?sslmode=disable", resource.GetHostPort("5432/tcp"))

	pool.MaxWait = 120 * time.Second
	if err = pool.Retry(func() error {
		return connect(dsn)
	}); err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Fatalf("Could not purge resource: %s", err)
		}
	})
}

// Statements creating and seeding cities, authors and posts. Valid for both
// Postgres and DuckDB.
var fixtures = []string{
	`create table cities (
		"id"   integer primary key,
		"name" text
	)`,
	`create table authors (
		"id"      integer primary key,
		"name"    text,
		"country" text,
		"city_id" integer
	)`,
	`create table posts (
		"id"           integer primary key,
		"title"        text,
		"body"         text,
		"status"       text,
		"views"        integer,
		"published_on" date,
		"created_at"   timestamp,
		"author_id"    integer,
		"parent_id"    integer
	)`,
	`insert into cities ("id", "name") values
		(1, 'Paris'),
		(2, 'Lyon'),
		(3, 'Berlin')`,
	`insert into authors ("id", "name", "country", "city_id") values
		(1, 'Alice', 'France',  1),
		(2, 'Bob',   'Germany', 3),
		(3, 'Chloe', 'France',  2)`,
	`insert into posts ("id", "title", "body", "status", "views", "published_on", "created_at", "author_id", "parent_id") values
		(1, 'Learning Go',    'intro',           'draft',     10,  '2024-01-05', '2024-01-05 10:00:00', 1, null),
		(2, 'Go concurrency', 'channels',        'published', 250, '2024-01-20', '2024-01-20 23:30:00', 2, 1),
		(3, 'Rust notes',     'ownership',       'published', 40,  '2024-02-01', '2024-02-01 00:00:00', 3, 1),
		(4, 'Postgres tips',  'indexes go fast', 'archived',  5,   '2024-02-15', '2024-02-15 12:00:00', 1, 2)`,
}

type execer interface {
	Exec(string, ...interface{}) (sql.Result, error)
}

func createFixtures(t *testing.T, db execer) {
	t.Helper()

	for _, stmt := range fixtures {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
}

func scanIDs(t *testing.T, rows *sql.Rows) []int {
	t.Helper()
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	return ids
}
