package main

import (
	"context"
	"flag"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	"github.com/plaza-social/plaza/notifier"
	"github.com/plaza-social/plaza/server"
	"github.com/plaza-social/plaza/server/handlers"
	"github.com/plaza-social/plaza/server/hub"
	"github.com/plaza-social/plaza/server/middlewares"
	"github.com/plaza-social/plaza/utils"
	"github.com/plaza-social/plaza/utils/dotenv"
	. "github.com/plaza-social/plaza/utils/flag"
	. "github.com/plaza-social/plaza/utils/log"
	"github.com/plaza-social/plaza/worker"
)

func init() {
	flag.Parse()
	InitLogger()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	Log.Info("api server initialized")
}

func cleanup() {
	utils.CloseProfiler()
	utils.CloseTracer()
	Log.Info("api server shutdown")
}

func NewDogStatsdClient() *statsd.Client {
	client, err := statsd.New("127.0.0.1:8125")
	if err != nil {
		panic(err)
	}
	return client
}

func main() {
	defer cleanup()

	db, err := utils.GetDBConnection()
	if err != nil {
		panic(err)
	}
	utils.DatabaseSetupAndMigration(db)

	redis, err := utils.GetRedisStore()
	if err != nil {
		panic(err)
	}
	middlewares.Setup(redis)

	eventbus := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            100,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)

	realtimeHub := hub.NewHub(handlers.RoomAuthorizer(db))

	// The notifier consumes domain events off the bus and fans them out
	// to notification rows and live connections.
	ctx, cancel := context.WithCancel(context.Background())
	engine := worker.NewEngine([]worker.Module{
		notifier.NewEventProcessor(db, realtimeHub, eventbus, NewDogStatsdClient()),
	}, ctx, cancel)
	go engine.Run()
	defer engine.Shutdown()

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(ServiceName))

	handler := handlers.New(db, redis, realtimeHub, eventbus)
	server.RegisterRoutes(router, handler)

	Log.Info("api server starts up")
	router.Run(":8080")
}
