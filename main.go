package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/nattawatj/go-storefront/app/cmd"
	"github.com/nattawatj/go-storefront/app/configs"
	"github.com/nattawatj/go-storefront/app/routes"
	"github.com/nattawatj/go-storefront/app/utils/logger"
	"github.com/nattawatj/go-storefront/app/utils/sessions"
	"go.uber.org/zap"
)

func main() {
	env := configs.LoadEnv()

	if err := logger.Init(env.AppEnv); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if len(os.Args) > 1 {
		cmd.RunCli(env)
		return
	}

	db, err := configs.OpenConnection(env)
	if err != nil {
		zap.L().Fatal("database connection failed", zap.Error(err))
	}
	zap.L().Info("database connected")

	sessions.Init(configs.DecodeKey(env.AppAuthKey), configs.DecodeKey(env.AppEncKey))

	rdb := configs.OpenRedis(env)
	if rdb != nil {
		zap.L().Info("redis connected", zap.String("addr", env.RedisAddr))
	}

	router, sweeper := routes.NewRouter(db, rdb, env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)

	server := http.Server{
		Addr:         env.Port,
		Handler:      routes.Protect(router, env),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	zap.L().Info("server starting", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}
