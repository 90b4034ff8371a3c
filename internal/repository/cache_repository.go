package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"filetree-server/config"
	"filetree-server/internal/model"
	"filetree-server/internal/util"

	"github.com/redis/go-redis/v9"
)

type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb, ttl}
}

func (r *CacheRepository) SetNode(ctx context.Context, node *model.Node) error {
	data, err := json.Marshal(node)
	if err != nil {
		return util.LogError("ошибка сериализации узла", err)
	}

	cmd := r.client.Client.Set(ctx, r.key(node.UUID), data, r.ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *CacheRepository) GetNode(ctx context.Context, uuid string) (*model.Node, error) {
	val, err := r.client.Client.Get(ctx, r.key(uuid)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // нет в кэше
	} else if err != nil {
		return nil, util.LogError("ошибка получения узла из Redis", err)
	}

	var node model.Node
	if err := json.Unmarshal([]byte(val), &node); err != nil {
		return nil, util.LogError("ошибка десериализации узла из кэша", err)
	}
	return &node, nil
}

func (r *CacheRepository) DeleteNode(ctx context.Context, uuid string) error {
	if err := r.client.Client.Del(ctx, r.key(uuid)).Err(); err != nil {
		return util.LogError("ошибка удаления узла из Redis", err)
	}
	return nil
}

// DeleteNodes : пакетная инвалидация после переноса/удаления поддерева
func (r *CacheRepository) DeleteNodes(ctx context.Context, uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}

	pipe := r.client.Client.Pipeline()
	for _, uuid := range uuids {
		pipe.Del(ctx, r.key(uuid))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return util.LogError("ошибка пакетной инвалидации кэша", err)
	}
	return nil
}

func (r *CacheRepository) key(uuid string) string {
	return fmt.Sprintf("node:%s", uuid)
}
