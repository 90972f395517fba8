package quota

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker hands out per-owner mutual exclusion.
type Locker interface {
	Lock(ctx context.Context, ownerID string) (unlock func() error, err error)
}

// NoopLocker never blocks.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string) (func() error, error) {
	return func() error { return nil }, nil
}

const lockRetryDelay = 50 * time.Millisecond

func ownerLockName(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:12])
}

// FileLocker takes an flock on dir/<hash(owner)>.lock. It serializes
// processes sharing a filesystem.
type FileLocker struct {
	dir string
}

// NewFileLocker creates dir if needed.
func NewFileLocker(dir string) (*FileLocker, error) {
	if dir == "" {
		return nil, errors.New("lock dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir lock dir: %w", err)
	}
	return &FileLocker{dir: dir}, nil
}

func (l *FileLocker) Lock(ctx context.Context, ownerID string) (func() error, error) {
	fl := flock.New(filepath.Join(l.dir, ownerLockName(ownerID)+".lock"))
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire owner lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire owner lock: %w", ctx.Err())
	}
	return fl.Unlock, nil
}

// unlockScript deletes the key only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker uses SET NX PX with a random token, so a lock left by a
// crashed holder expires after ttl.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewRedisLocker returns a locker on client. ttl must cover the longest
// write, including a PDF optimizer run.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisLocker{client: client, ttl: ttl, prefix: "mediadocs:quota-lock:"}
}

func (l *RedisLocker) Lock(ctx context.Context, ownerID string) (func() error, error) {
	key := l.prefix + ownerLockName(ownerID)
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetryDelay)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire owner lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire owner lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}

	return func() error {
		// release even if the request context is already gone
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := unlockScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release owner lock: %w", err)
		}
		return nil
	}, nil
}
