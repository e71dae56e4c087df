package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const leaseKeyPrefix = "lots:lease:"

// releaseLeaseScript borra la clave solo si sigue perteneciendo a este dueño.
var releaseLeaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// LeaseLocker lease distribuido: una sola instancia ejecuta la tarea mientras lo tenga.
type LeaseLocker struct {
	client redis.UniversalClient
	owner  string
}

func NewLeaseLocker(client redis.UniversalClient) *LeaseLocker {
	return &LeaseLocker{client: client, owner: uuid.New().String()}
}

// TryLock toma el lease name por ttl. Devuelve false si otra instancia lo tiene.
// release es no-op cuando no se obtuvo el lease.
func (l *LeaseLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, ok bool, err error) {
	key := leaseKeyPrefix + name
	ok, err = l.client.SetNX(ctx, key, l.owner, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("lease %s: %w", name, err)
	}
	if !ok {
		return func(context.Context) error { return nil }, false, nil
	}
	return func(ctx context.Context) error {
		if err := releaseLeaseScript.Run(ctx, l.client, []string{key}, l.owner).Err(); err != nil {
			return fmt.Errorf("release lease %s: %w", name, err)
		}
		return nil
	}, true, nil
}
