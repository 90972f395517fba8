package quota

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediadocs/internal/apperror"
)

const mib = 1024 * 1024

type fakeStore struct {
	used     int64
	limit    int64
	hasLimit bool
	err      error
}

func (f *fakeStore) SumSizeByOwner(context.Context, string) (int64, error) {
	return f.used, f.err
}

func (f *fakeStore) LimitForOwner(context.Context, string) (int64, bool, error) {
	return f.limit, f.hasLimit, nil
}

func TestAssertWithinQuota(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		store     *fakeStore
		candidate int64
		wantErr   error
	}{
		{name: "2MB over a 10MiB limit with 9MB used", store: &fakeStore{used: 9 * mib}, candidate: 2 * mib, wantErr: apperror.ErrStorageLimitExceeded},
		{name: "half MB fits", store: &fakeStore{used: 9 * mib}, candidate: mib / 2},
		{name: "exactly at limit fits", store: &fakeStore{used: 9 * mib}, candidate: mib},
		{name: "owner override applies", store: &fakeStore{used: 9 * mib, limit: 20 * mib, hasLimit: true}, candidate: 2 * mib},
		{name: "owner override can be lower", store: &fakeStore{used: 0, limit: mib, hasLimit: true}, candidate: 2 * mib, wantErr: apperror.ErrStorageLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccountant(tt.store, 10485760, nil)
			err := a.AssertWithinQuota(ctx, "owner-1", tt.candidate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAssertWithinQuota_ErrorCarriesMB(t *testing.T) {
	a := NewAccountant(&fakeStore{used: 9 * mib}, 10*mib, nil)
	err := a.AssertWithinQuota(context.Background(), "o", 2*mib)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, 10.0, appErr.Details["limit_mb"])
	assert.Contains(t, appErr.Message, "10 MB")
}

func TestAssertWithinQuota_StoreError(t *testing.T) {
	a := NewAccountant(&fakeStore{err: errors.New("db down")}, 10*mib, nil)
	err := a.AssertWithinQuota(context.Background(), "o", 1)
	assert.EqualError(t, err, "sum owner usage: db down")
}

func TestUsage(t *testing.T) {
	a := NewAccountant(&fakeStore{used: 5 * mib / 2}, 10*mib, nil)
	u, err := a.Usage(context.Background(), "o")
	require.NoError(t, err)

	assert.Equal(t, int64(5*mib/2), u.Used)
	assert.Equal(t, int64(10*mib), u.Limit)
	assert.Equal(t, int64(15*mib/2), u.Available)
	assert.Equal(t, 25.0, u.Percent)
	assert.Equal(t, "2.5 MiB", u.UsedHuman)
	assert.Equal(t, "10 MiB", u.LimitHuman)

	over, err := NewAccountant(&fakeStore{used: 12 * mib}, 10*mib, nil).Usage(context.Background(), "o")
	require.NoError(t, err)
	assert.Equal(t, int64(0), over.Available)
}

func TestFileLocker_Serializes(t *testing.T) {
	l, err := NewFileLocker(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "owner-1")
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, "owner-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := l.Lock(ctx, "owner-2")
	require.NoError(t, err, "other owners are not blocked")
	require.NoError(t, other())

	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		u, err := l.Lock(ctx, "owner-1")
		if err == nil {
			acquired.Store(true)
			_ = u()
		}
	}()
	time.Sleep(100 * time.Millisecond)
	assert.False(t, acquired.Load())
	require.NoError(t, unlock())
	<-done
	assert.True(t, acquired.Load())
}

func TestRedisLocker(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	l := NewRedisLocker(client, 2*time.Second)
	owner := "test-" + time.Now().Format(time.RFC3339Nano)

	unlock, err := l.Lock(ctx, owner)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, owner)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock())
	again, err := l.Lock(ctx, owner)
	require.NoError(t, err)
	require.NoError(t, again())
}
