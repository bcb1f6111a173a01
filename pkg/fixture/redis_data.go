package fixture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisGetter é o subconjunto do cliente Redis usado pelo loader.
type RedisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisProvider devolve um cliente para o endereço informado.
type RedisProvider func(addr, password string, db int) RedisGetter

var (
	redisMu      sync.Mutex
	redisClients = make(map[string]*redis.Client)
)

// defaultRedis reaproveita clientes por endereço (evita recriar o pool a cada request).
func defaultRedis(addr, password string, db int) RedisGetter {
	key := fmt.Sprintf("%s|%s|%d", addr, password, db)

	redisMu.Lock()
	defer redisMu.Unlock()
	if client, ok := redisClients[key]; ok {
		return client
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	redisClients[key] = client
	return client
}

// readRedis lê uma chave string: redis://:senha@host:6379/chave?db=0
func readRedis(ctx context.Context, provider RedisProvider, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL Redis inválida: %w", err)
	}
	password, _ := u.User.Password()
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return nil, fmt.Errorf("URL Redis sem chave: %s", uri)
	}
	db := 0
	if raw := u.Query().Get("db"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &db); err != nil {
			return nil, fmt.Errorf("db Redis inválido '%s': %w", raw, err)
		}
	}

	val, err := provider(u.Host, password, db).Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: redis %s", ErrNotFound, key)
	} else if err != nil {
		return nil, fmt.Errorf("erro no Redis GET: %w", err)
	}
	return []byte(val), nil
}
