package config

import "github.com/spf13/viper"

// setDefaults registers every known key with its default. AutomaticEnv
// only resolves keys viper has seen, so each section lists all of its
// fields here even when the default is the zero value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("standalone", true)

	// [server]
	v.SetDefault("server.ip", "127.0.0.1")
	v.SetDefault("server.http_port", 5005)
	v.SetDefault("server.ws_port", 6006)
	v.SetDefault("server.rpc_timeout", "30s")

	// [grpc]
	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.address", "127.0.0.1:50051")
	v.SetDefault("grpc.max_recv_msg_size", 4*1024*1024)
	v.SetDefault("grpc.max_send_msg_size", 4*1024*1024)

	// [pool]
	v.SetDefault("pool.policy", "hardened")

	// [database]
	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "data")
	v.SetDefault("database.compression", "lz4")
	v.SetDefault("database.cache_size", 0)

	// [history] disabled unless a driver is named
	v.SetDefault("history.driver", "")
	v.SetDefault("history.path", "history.db")
	v.SetDefault("history.dsn", "")
	v.SetDefault("history.host", "localhost")
	v.SetDefault("history.port", 5432)
	v.SetDefault("history.database", "ammd")
	v.SetDefault("history.username", "ammd")
	v.SetDefault("history.password", "")
	v.SetDefault("history.sslmode", "prefer")
}
