package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/db"
	wardGrpc "liyu1981.xyz/ward-alert-service/pkg/grpc"
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	wardHttp "liyu1981.xyz/ward-alert-service/pkg/http"
	"liyu1981.xyz/ward-alert-service/pkg/push"
	"liyu1981.xyz/ward-alert-service/pkg/realtime"
	"liyu1981.xyz/ward-alert-service/pkg/session"
	"liyu1981.xyz/ward-alert-service/pkg/store"
)

func mustDuration(key string, fallback time.Duration) time.Duration {
	d, err := common.EnvDuration(key, fallback)
	if err != nil {
		log.Fatalf("Invalid %s, should be a duration such as 10s or 15m: %v", key, err)
	}
	return d
}

func openPrimary(ctx context.Context) store.Backend {
	dbType := os.Getenv(common.EnvKeyWardDBType)
	switch dbType {
	case "file":
		return store.NewSQLBackend(db.GetInstance(db.UseSqliteDialector()))
	case "memory":
		return store.NewSQLBackend(db.GetInstance(db.UseMemorySqliteDialector()))
	case "mysql":
		return store.NewSQLBackend(db.GetInstance(db.UseMySQLDialector()))
	case "mongo":
		backend, err := store.ConnectMongo(ctx,
			os.Getenv(common.EnvKeyWardMongoURI),
			common.EnvOr(common.EnvKeyWardMongoDatabase, "ward"))
		if err != nil {
			log.Fatalf("failed to connect mongo: %v", err)
		}
		return backend
	case "local":
		return nil
	}
	log.Fatal("Unknown WARD_DB_TYPE: " + dbType)
	return nil
}

// allBeds feeds the demo generator with every bed of every ward.
func allBeds(h *hospital.Hospital) realtime.BedSource {
	return func(ctx context.Context) ([]string, error) {
		wards, err := h.Roster.ListWards(ctx)
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, w := range wards {
			beds, err := h.Roster.ListBeds(ctx, w.ID)
			if err != nil {
				return nil, err
			}
			for _, b := range beds {
				ids = append(ids, b.ID)
			}
		}
		return ids, nil
	}
}

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	ctx := context.Background()
	logger := common.GetLogger()

	primary := openPrimary(ctx)
	localKV, err := store.OpenSQLiteKV(db.UseLocalSqliteDialector())
	if err != nil {
		log.Fatalf("failed to open local fallback store: %v", err)
	}
	gateway := store.NewGateway(primary, store.NewKVBackend(localKV),
		mustDuration(common.EnvKeyWardRequestTimeout, store.DefaultTimeout))

	grpcHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyWardGrpcHostPort))
	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyWardHttpHostPort))

	helpRate := float64(hospital.DefaultHelpRate)
	helpBurst := int64(hospital.DefaultHelpBurst)
	if v := os.Getenv(common.EnvKeyWardHelpRate); v != "" {
		if helpRate, err = strconv.ParseFloat(v, 64); err != nil {
			log.Fatal("Invalid WARD_HELP_RATE, should be a float64 value (requests per second)")
		}
	}
	if v := os.Getenv(common.EnvKeyWardHelpBurst); v != "" {
		if helpBurst, err = strconv.ParseInt(v, 10, 64); err != nil {
			log.Fatal("Invalid WARD_HELP_BURST, should be an int value")
		}
	}

	jwtSecret := os.Getenv(common.EnvKeyWardJWTSecret)
	if jwtSecret == "" {
		log.Fatal("WARD_JWT_SECRET is not set in .env")
	}
	sessions := session.NewManager(jwtSecret, mustDuration(common.EnvKeyWardSessionTTL, session.DefaultTTL))

	// push: FCM relay for phones, MQTT for nurse stations
	var relay *push.Relay
	var notifiers push.Fanout
	if key := os.Getenv(common.EnvKeyWardFCMServerKey); key != "" {
		relay = push.NewRelay(os.Getenv(common.EnvKeyWardFCMURL), key)
		notifiers = append(notifiers, relay)
	}
	if broker := os.Getenv(common.EnvKeyWardMQTTBroker); broker != "" {
		client, err := push.ConnectMQTT(broker, "ward-alert-service-"+uuid.NewString()[:8])
		if err != nil {
			logger.Warn("MQTT broker unavailable, nurse stations will not be notified", zap.Error(err))
		} else {
			notifiers = append(notifiers, push.NewStationPublisher(client))
		}
	}

	h := &hospital.Hospital{
		Store:     gateway,
		TokenTTL:  mustDuration(common.EnvKeyWardTokenTTL, 0),
		PublicURL: common.EnvOr(common.EnvKeyWardPublicURL, "http://localhost:1080"),
	}
	if len(notifiers) > 0 {
		h.Notifier = notifiers
	}
	h.WithDefaultServices()

	var redisClient *redis.Client
	if addr := os.Getenv(common.EnvKeyWardRedisAddr); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr})
	}
	channelOpts := realtime.Options{
		Redis:        redisClient,
		Source:       h.Alert,
		PollInterval: mustDuration(common.EnvKeyWardPollInterval, realtime.DefaultPollInterval),
	}
	if common.EnvBool(common.EnvKeyWardDemoAlerts) {
		channelOpts = realtime.Options{DemoBeds: allBeds(h)}
	}
	channel, strategy, err := realtime.Select(ctx, channelOpts)
	if err != nil {
		log.Fatalf("failed to select realtime channel: %v", err)
	}
	if bus, ok := channel.(*realtime.RedisChannel); ok {
		h.Bus = bus
	}

	limiterStore := hospital.NewRateLimiterStore(rate.Limit(helpRate), int(helpBurst))
	logger.Info("Ward core created with:",
		zap.String("realtime", string(strategy)),
		zap.Bool("primary_store", primary != nil),
		zap.Int("notifiers", len(notifiers)),
		zap.String("default_limiter",
			fmt.Sprintf("{\"help_rate\": %v, \"help_burst\": %v}", helpRate, helpBurst)))

	if grpcHostPort != "" {
		go func() {
			s := wardGrpc.NewServer(&wardGrpc.WardServer{
				Hospital:         h,
				Sessions:         sessions,
				Realtime:         channel,
				RateLimiterStore: limiterStore,
			})

			listener, err := net.Listen("tcp", grpcHostPort)
			if err != nil {
				log.Fatalf("failed to listen: %v", err)
			}

			logger.Info("start gRPC server on " + grpcHostPort)
			if err := s.Serve(listener); err != nil {
				log.Fatalf("grpc server failed to serve: %v", err)
			}
		}()
	}

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	rs := &wardHttp.RestfulServer{
		Server:           gin.Default(),
		Hospital:         h,
		Sessions:         sessions,
		Realtime:         channel,
		RateLimiterStore: limiterStore,
		Superadmin: wardHttp.Credentials{
			Username: os.Getenv(common.EnvKeyWardSuperadminUser),
			Password: os.Getenv(common.EnvKeyWardSuperadminPass),
		},
	}
	if relay != nil {
		rs.Relay = relay
	}
	rs.Setup()

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
