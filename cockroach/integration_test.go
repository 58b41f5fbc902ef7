package cockroach

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/Roberadesissai/workout-tracker-sub000/cockroach/migrator"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
)

var (
	testDB        *pgxpool.Pool
	testCockroach *Cockroach
)

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	var skipIntegration bool
	flag.BoolVar(&skipIntegration, "skip-integration", false, "Skip integration tests docker setup")
	flag.Parse()

	if skipIntegration || testing.Short() {
		return m.Run()
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		fmt.Printf("could not create docker pool: %v\n", err)
		return 1
	}

	var cleanup func() error
	testDB, cleanup, err = setupTestDB(pool)
	if err != nil {
		fmt.Printf("could not setup test db: %v\n", err)
		return 1
	}
	testCockroach = New(testDB)

	if err := migrator.Migrate(context.Background(), testDB, MigrationsFS); err != nil {
		fmt.Printf("could not migrate schema: %v\n", err)
		return 1
	}

	defer func() {
		if err := cleanup(); err != nil {
			fmt.Printf("could not cleanup cockroach container: %v\n", err)
		}
	}()

	return m.Run()
}

func setupTestDB(pool *dockertest.Pool) (*pgxpool.Pool, func() error, error) {
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "cockroachdb/cockroach",
		Tag:        "latest",
		Cmd:        []string{"start-single-node", "--insecure"},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create cockroach resource: %w", err)
	}

	var db *pgxpool.Pool
	err = pool.Retry(func() (err error) {
		hostPort := resource.GetHostPort("26257/tcp")
		db, err = pgxpool.New(context.Background(), "postgresql://root@"+hostPort+"/defaultdb?sslmode=disable")
		if err != nil {
			return fmt.Errorf("could not open db: %w", err)
		}

		// do not close db

		if err = db.Ping(context.Background()); err != nil {
			return fmt.Errorf("could not ping db: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return db, func() error {
		return pool.Purge(resource)
	}, nil
}

func skipIfNoDB(t *testing.T) {
	t.Helper()

	if testCockroach == nil {
		t.Skip("integration tests skipped")
	}
}

func createTestProfile(t *testing.T, username string) types.Profile {
	t.Helper()

	p, err := testCockroach.CreateProfile(context.Background(), types.CreateProfile{Username: username})
	if err != nil {
		t.Fatalf("create profile %q: %v", username, err)
	}
	return p
}

func sendTestMessage(t *testing.T, senderID, recipientID, content string) types.Message {
	t.Helper()

	in := types.SendMessage{RecipientID: recipientID, Content: content}
	in.SetLoggedInUserID(senderID)

	msg, err := testCockroach.CreateMessage(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	return msg
}

func TestIntegration_FollowLifecycle(t *testing.T) {
	skipIfNoDB(t)
	ctx := context.Background()

	follower := createTestProfile(t, "fl-follower")
	followee := createTestProfile(t, "fl-followee")

	if _, err := testCockroach.CreateFollow(ctx, follower.ID, followee.ID, types.FollowStatusPending); err != nil {
		t.Fatalf("create follow: %v", err)
	}

	f, err := testCockroach.FollowBetween(ctx, follower.ID, followee.ID)
	if err != nil {
		t.Fatalf("follow between: %v", err)
	}
	if f.Status != types.FollowStatusPending {
		t.Fatalf("want pending; got %s", f.Status)
	}

	if err := testCockroach.AcceptFollow(ctx, follower.ID, followee.ID); err != nil {
		t.Fatalf("accept follow: %v", err)
	}

	f, err = testCockroach.FollowBetween(ctx, follower.ID, followee.ID)
	if err != nil {
		t.Fatalf("follow between after accept: %v", err)
	}
	if f.Status != types.FollowStatusAccepted {
		t.Fatalf("want accepted; got %s", f.Status)
	}

	if err := testCockroach.DeleteFollow(ctx, follower.ID, followee.ID); err != nil {
		t.Fatalf("delete follow: %v", err)
	}

	_, err = testCockroach.FollowBetween(ctx, follower.ID, followee.ID)
	if !errors.Is(err, ErrFollowNotFound) {
		t.Fatalf("want follow gone; got %v", err)
	}
}

func TestIntegration_ThreadReadReceipts(t *testing.T) {
	skipIfNoDB(t)
	ctx := context.Background()

	sender := createTestProfile(t, "rr-sender")
	recipient := createTestProfile(t, "rr-recipient")

	sendTestMessage(t, sender.ID, recipient.ID, "first")
	sendTestMessage(t, sender.ID, recipient.ID, "second")

	msgs, read, err := testCockroach.ThreadWithReadReceipts(ctx, recipient.ID, sender.ID)
	if err != nil {
		t.Fatalf("thread with read receipts: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("want 2 messages; got %d", len(msgs))
	}
	if len(read) != 2 {
		t.Fatalf("want 2 read receipts; got %d", len(read))
	}
	for _, m := range msgs {
		if !m.IsRead || m.ReadAt == nil {
			t.Errorf("want message %s read with timestamp; got read=%v readAt=%v", m.ID, m.IsRead, m.ReadAt)
		}
	}

	// Already-read rows produce no further receipts.
	_, read, err = testCockroach.ThreadWithReadReceipts(ctx, recipient.ID, sender.ID)
	if err != nil {
		t.Fatalf("thread second pass: %v", err)
	}
	if len(read) != 0 {
		t.Fatalf("want no new receipts; got %d", len(read))
	}
}

func TestIntegration_BlockCascade(t *testing.T) {
	skipIfNoDB(t)
	ctx := context.Background()

	blocker := createTestProfile(t, "bc-blocker")
	blocked := createTestProfile(t, "bc-blocked")

	sendTestMessage(t, blocker.ID, blocked.ID, "hey")
	sendTestMessage(t, blocked.ID, blocker.ID, "hey back")

	if _, err := testCockroach.CreateFollow(ctx, blocked.ID, blocker.ID, types.FollowStatusAccepted); err != nil {
		t.Fatalf("create follow: %v", err)
	}

	cleanup, err := testCockroach.CreateBlock(ctx, blocker.ID, blocked.ID)
	if err != nil {
		t.Fatalf("create block: %v", err)
	}

	if len(cleanup.DeletedMessages) != 2 {
		t.Fatalf("want both messages deleted; got %d", len(cleanup.DeletedMessages))
	}

	msgs, err := testCockroach.MessagesForViewer(ctx, blocker.ID)
	if err != nil {
		t.Fatalf("messages for viewer: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("want no messages left; got %d", len(msgs))
	}

	_, err = testCockroach.FollowBetween(ctx, blocked.ID, blocker.ID)
	if !errors.Is(err, ErrFollowNotFound) {
		t.Fatalf("want follow removed by block; got %v", err)
	}

	blockedEither, err := testCockroach.BlockedEitherWay(ctx, blocked.ID, blocker.ID)
	if err != nil {
		t.Fatalf("blocked either way: %v", err)
	}
	if !blockedEither {
		t.Fatal("want pair reported blocked")
	}

	if err := testCockroach.DeleteBlock(ctx, blocker.ID, blocked.ID); err != nil {
		t.Fatalf("delete block: %v", err)
	}

	blockedEither, err = testCockroach.BlockedEitherWay(ctx, blocked.ID, blocker.ID)
	if err != nil {
		t.Fatalf("blocked either way after unblock: %v", err)
	}
	if blockedEither {
		t.Fatal("want pair unblocked")
	}
}
