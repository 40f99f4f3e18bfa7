package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/watchroom/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	cassandraHosts = configVar[string]{
		envKey:       "CASSANDRA_HOSTS",
		flagKey:      "cassandra-hosts",
		defaultValue: "localhost",
	}
	cassandraKeyspace = configVar[string]{
		envKey:       "CASSANDRA_KEYSPACE",
		flagKey:      "cassandra-keyspace",
		defaultValue: "watchroom",
	}
	cassandraConsistency = configVar[string]{
		envKey:       "CASSANDRA_CONSISTENCY",
		flagKey:      "cassandra-consistency",
		defaultValue: "LOCAL_QUORUM",
	}
	messageBufferCapacity = configVar[int]{
		envKey:       "MESSAGE_BUFFER_CAPACITY",
		flagKey:      "message-buffer-capacity",
		defaultValue: 25,
	}
	messageFlushInterval = configVar[time.Duration]{
		envKey:       "MESSAGE_FLUSH_INTERVAL",
		flagKey:      "message-flush-interval",
		defaultValue: 2 * time.Minute,
	}
	roomReapInterval = configVar[time.Duration]{
		envKey:       "ROOM_REAP_INTERVAL",
		flagKey:      "room-reap-interval",
		defaultValue: time.Minute,
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.String(cassandraHosts.flagKey, cassandraHosts.defaultValue, "Comma-separated Cassandra hosts")
	pflag.String(cassandraKeyspace.flagKey, cassandraKeyspace.defaultValue, "Cassandra keyspace")
	pflag.String(cassandraConsistency.flagKey, cassandraConsistency.defaultValue, "Cassandra consistency level")
	pflag.Int(messageBufferCapacity.flagKey, messageBufferCapacity.defaultValue, "Chat messages buffered per room before a flush")
	pflag.Duration(messageFlushInterval.flagKey, messageFlushInterval.defaultValue, "Interval between periodic chat buffer flushes")
	pflag.Duration(roomReapInterval.flagKey, roomReapInterval.defaultValue, "Interval between expired room sweeps")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)
	viper.BindEnv(cassandraHosts.flagKey, cassandraHosts.envKey)
	viper.BindEnv(cassandraKeyspace.flagKey, cassandraKeyspace.envKey)
	viper.BindEnv(cassandraConsistency.flagKey, cassandraConsistency.envKey)
	viper.BindEnv(messageBufferCapacity.flagKey, messageBufferCapacity.envKey)
	viper.BindEnv(messageFlushInterval.flagKey, messageFlushInterval.envKey)
	viper.BindEnv(roomReapInterval.flagKey, roomReapInterval.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)
	viper.SetDefault(cassandraHosts.flagKey, cassandraHosts.defaultValue)
	viper.SetDefault(cassandraKeyspace.flagKey, cassandraKeyspace.defaultValue)
	viper.SetDefault(cassandraConsistency.flagKey, cassandraConsistency.defaultValue)
	viper.SetDefault(messageBufferCapacity.flagKey, messageBufferCapacity.defaultValue)
	viper.SetDefault(messageFlushInterval.flagKey, messageFlushInterval.defaultValue)
	viper.SetDefault(roomReapInterval.flagKey, roomReapInterval.defaultValue)

	return &app.AppConfig{
		Host:                  viper.GetString(host.flagKey),
		Port:                  viper.GetInt(port.flagKey),
		LogLevel:              viper.GetString(logLevel.flagKey),
		RedisHost:             viper.GetString(redisHost.flagKey),
		RedisPort:             viper.GetInt(redisPort.flagKey),
		RedisPassword:         viper.GetString(redisPassword.flagKey),
		CassandraHosts:        strings.Split(viper.GetString(cassandraHosts.flagKey), ","),
		CassandraKeyspace:     viper.GetString(cassandraKeyspace.flagKey),
		CassandraConsistency:  viper.GetString(cassandraConsistency.flagKey),
		MessageBufferCapacity: viper.GetInt(messageBufferCapacity.flagKey),
		MessageFlushInterval:  viper.GetDuration(messageFlushInterval.flagKey),
		RoomReapInterval:      viper.GetDuration(roomReapInterval.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
