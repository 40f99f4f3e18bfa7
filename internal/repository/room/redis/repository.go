package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc     *redis.Client
	logger *slog.Logger
	// appendScript appends a member to a zset with the next rank score,
	// keeping insertion order. No-op if the member is already present.
	appendScript string
	// moveScript removes a member from one zset and appends it to another
	// with the next rank score, atomically.
	moveScript string
	// swapScript swaps a member with its rank neighbor in a zset.
	swapScript string
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
		appendScript: rc.ScriptLoad(context.Background(), `
			if redis.call('ZSCORE', KEYS[1], ARGV[1]) then
				return 0
			end
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return 1
		`).Val(),
		moveScript: rc.ScriptLoad(context.Background(), `
			if redis.call('ZREM', KEYS[1], ARGV[1]) == 0 then
				return 0
			end
			local maxScore = redis.call('ZREVRANGE', KEYS[2], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[2], nextScore, ARGV[1])
			return 1
		`).Val(),
		swapScript: rc.ScriptLoad(context.Background(), `
			local rank = redis.call('ZRANK', KEYS[1], ARGV[1])
			if not rank then
				return -2
			end
			local other = rank + tonumber(ARGV[2])
			if other < 0 then
				return -1
			end
			local neighbor = redis.call('ZRANGE', KEYS[1], other, other, 'WITHSCORES')
			if #neighbor == 0 then
				return -1
			end
			local score = redis.call('ZSCORE', KEYS[1], ARGV[1])
			redis.call('ZADD', KEYS[1], score, neighbor[1])
			redis.call('ZADD', KEYS[1], neighbor[2], ARGV[1])
			return 1
		`).Val(),
	}
}
