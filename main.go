package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"google.golang.org/grpc"

	"github.com/lioia/personalized-pagerank/pkg/cache"
	"github.com/lioia/personalized-pagerank/pkg/graph"
	"github.com/lioia/personalized-pagerank/pkg/node"
	"github.com/lioia/personalized-pagerank/pkg/utils"
)

func main() {
	// Read environment variables and solver configuration
	env, err := utils.ReadEnvVars()
	utils.FailOnError("Failed to read environment variables", err)
	utils.InitLog(env.NodeLog, env.ServerLog)
	graph.SetLogger(utils.Logger())
	config, err := utils.LoadConfiguration(env.Config)
	utils.FailOnError("Failed to load configuration", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Result cache (disabled without REDIS_ADDR)
	results := cache.NewNullCache()
	if env.RedisAddr != "" {
		results, err = cache.NewRedisCache(ctx, env.RedisAddr, env.RedisPass, 0)
		utils.FailOnError("Could not connect to Redis", err)
		utils.NodeLog("node", "Caching results in Redis at %s", env.RedisAddr)
	}
	defer results.Close()

	service := node.NewService(config, results, env.CacheTTL, utils.Logger())
	service.ResourceDir = env.ResourceDir

	// gRPC API
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", env.Host, env.ApiPort))
	utils.FailOnError("Failed to listen for API server", err)
	server := grpc.NewServer()
	node.RegisterAPIServer(server, &node.ApiServerImpl{Service: service})
	go func() {
		utils.Logger().Info("Starting API server", "addr", lis.Addr().String())
		err := server.Serve(lis)
		utils.FailOnError("Failed to serve", err)
	}()
	defer server.GracefulStop()

	// HTTP API
	e := node.NewHTTPServer(service)
	go func() {
		addr := fmt.Sprintf("%s:%d", env.Host, env.HttpPort)
		utils.Logger().Info("Starting HTTP server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.FailOnError("Failed to serve HTTP", err)
		}
	}()
	defer e.Close()

	if env.RabbitHost == "" {
		<-ctx.Done()
		utils.Logger().Info("Shutting down")
		return
	}

	// Connect to RabbitMQ
	queueConn, err := amqp.Dial(env.RabbitURL())
	utils.FailOnError("Could not connect to RabbitMQ", err)
	defer queueConn.Close()
	ch, err := queueConn.Channel()
	utils.FailOnError("Failed to open a channel to RabbitMQ", err)
	defer ch.Close()

	n := node.Node{
		Service:    service,
		Queue:      node.Queue{Conn: queueConn, Channel: ch},
		Connection: lis.Addr().String(),
	}
	// Queue declaration
	work, err := utils.DeclareQueue(env.WorkQueue, ch)
	utils.FailOnError("Failed to declare '%s' queue", err, env.WorkQueue)
	n.Queue.Work = &work
	result, err := utils.DeclareQueue(env.ResultQueue, ch)
	utils.FailOnError("Failed to declare '%s' queue", err, env.ResultQueue)
	n.Queue.Result = &result

	if err := n.Work(ctx); err != nil && !errors.Is(err, context.Canceled) {
		utils.WarnLog("worker", "Worker stopped: %v", err)
	}
	utils.Logger().Info("Shutting down")
}
