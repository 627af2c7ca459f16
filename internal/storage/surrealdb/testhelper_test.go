package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	surreal "github.com/surrealdb/surrealdb.go"

	"github.com/abriltello/portafolioAI/internal/common"
	tcommon "github.com/abriltello/portafolioAI/tests/common"
)

// testManager starts the shared SurrealDB container and returns a Manager
// bound to a unique database so tests are isolated from each other.
func testManager(t *testing.T) *Manager {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)
	ctx := context.Background()

	db, err := surreal.New(sc.Address())
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": "root",
		"pass": "root",
	}); err != nil {
		t.Fatalf("sign in to SurrealDB: %v", err)
	}

	// SurrealDB rejects "/" in database names, which subtests produce
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbName := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)
	if err := db.Use(ctx, "portafolio_test", dbName); err != nil {
		t.Fatalf("select namespace/database: %v", err)
	}

	m, err := newManager(ctx, db, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("init manager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}
