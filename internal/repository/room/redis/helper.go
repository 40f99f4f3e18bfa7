package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

func strconvUnix(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

func (r repo) appendToList(ctx context.Context, c redis.Scripter, key, member string) *redis.Cmd {
	return c.EvalSha(ctx, r.appendScript, []string{key}, member)
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}
