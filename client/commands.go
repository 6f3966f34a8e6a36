package client

import (
	"context"

	"github.com/relaypipe/redisasync/reply"
)

// The wrappers below are thin, mechanical convenience methods over Command:
// they format well-known Redis commands and return the bare reply.Message.
// They add no design of their own beyond formatArgv/Send.

func (c *Client) Get(ctx context.Context, key string) (reply.Message, error) {
	return c.Command(ctx, "GET", key)
}

func (c *Client) Set(ctx context.Context, key string, value interface{}) (reply.Message, error) {
	return c.Command(ctx, "SET", key, value)
}

func (c *Client) SetEx(ctx context.Context, key string, seconds int64, value interface{}) (reply.Message, error) {
	return c.Command(ctx, "SET", key, value, "EX", seconds)
}

func (c *Client) Del(ctx context.Context, keys ...string) (reply.Message, error) {
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return c.Command(ctx, "DEL", args...)
}

func (c *Client) Exists(ctx context.Context, keys ...string) (reply.Message, error) {
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return c.Command(ctx, "EXISTS", args...)
}

func (c *Client) Expire(ctx context.Context, key string, seconds int64) (reply.Message, error) {
	return c.Command(ctx, "EXPIRE", key, seconds)
}

func (c *Client) TTL(ctx context.Context, key string) (reply.Message, error) {
	return c.Command(ctx, "TTL", key)
}

func (c *Client) Incr(ctx context.Context, key string) (reply.Message, error) {
	return c.Command(ctx, "INCR", key)
}

func (c *Client) IncrBy(ctx context.Context, key string, delta int64) (reply.Message, error) {
	return c.Command(ctx, "INCRBY", key, delta)
}

func (c *Client) HGet(ctx context.Context, key, field string) (reply.Message, error) {
	return c.Command(ctx, "HGET", key, field)
}

func (c *Client) HSet(ctx context.Context, key, field string, value interface{}) (reply.Message, error) {
	return c.Command(ctx, "HSET", key, field, value)
}

func (c *Client) HDel(ctx context.Context, key string, fields ...string) (reply.Message, error) {
	args := make([]interface{}, 0, len(fields)+1)
	args = append(args, key)
	for _, f := range fields {
		args = append(args, f)
	}
	return c.Command(ctx, "HDEL", args...)
}

func (c *Client) HGetAll(ctx context.Context, key string) (reply.Message, error) {
	return c.Command(ctx, "HGETALL", key)
}

func (c *Client) LPush(ctx context.Context, key string, values ...interface{}) (reply.Message, error) {
	args := make([]interface{}, 0, len(values)+1)
	args = append(args, key)
	args = append(args, values...)
	return c.Command(ctx, "LPUSH", args...)
}

func (c *Client) RPush(ctx context.Context, key string, values ...interface{}) (reply.Message, error) {
	args := make([]interface{}, 0, len(values)+1)
	args = append(args, key)
	args = append(args, values...)
	return c.Command(ctx, "RPUSH", args...)
}

func (c *Client) LPop(ctx context.Context, key string) (reply.Message, error) {
	return c.Command(ctx, "LPOP", key)
}

func (c *Client) RPop(ctx context.Context, key string) (reply.Message, error) {
	return c.Command(ctx, "RPOP", key)
}

func (c *Client) LRange(ctx context.Context, key string, start, stop int64) (reply.Message, error) {
	return c.Command(ctx, "LRANGE", key, start, stop)
}

func (c *Client) SAdd(ctx context.Context, key string, members ...interface{}) (reply.Message, error) {
	args := make([]interface{}, 0, len(members)+1)
	args = append(args, key)
	args = append(args, members...)
	return c.Command(ctx, "SADD", args...)
}

func (c *Client) SRem(ctx context.Context, key string, members ...interface{}) (reply.Message, error) {
	args := make([]interface{}, 0, len(members)+1)
	args = append(args, key)
	args = append(args, members...)
	return c.Command(ctx, "SREM", args...)
}

func (c *Client) SMembers(ctx context.Context, key string) (reply.Message, error) {
	return c.Command(ctx, "SMEMBERS", key)
}

func (c *Client) ZAdd(ctx context.Context, key string, score float64, member interface{}) (reply.Message, error) {
	return c.Command(ctx, "ZADD", key, score, member)
}

func (c *Client) ZScore(ctx context.Context, key string, member interface{}) (reply.Message, error) {
	return c.Command(ctx, "ZSCORE", key, member)
}

func (c *Client) ZRange(ctx context.Context, key string, start, stop int64) (reply.Message, error) {
	return c.Command(ctx, "ZRANGE", key, start, stop)
}

func (c *Client) Publish(ctx context.Context, channel string, message interface{}) (reply.Message, error) {
	return c.Command(ctx, "PUBLISH", channel, message)
}

func (c *Client) Ping(ctx context.Context) (reply.Message, error) {
	return c.Command(ctx, "PING")
}
