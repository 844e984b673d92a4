package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"

	"tixbay/internal/models"
	"tixbay/internal/mq"
	"tixbay/internal/realtime"
	"tixbay/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client
	RedisClient    *redis.Client

	Feed *realtime.Feed

	AuthService      *services.AuthService
	CatalogService   *services.CatalogService
	PurchaseService  *services.PurchaseService
	OrganizerService *services.OrganizerService
	SearchMirror     *services.SearchMirror
	SearchRepo       models.SearchRepo
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cld *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	amqpChannel *amqp.Channel,
	supaUrl, supaKey string,
) *Container {
	// Initialize repositories
	supa := models.SupabaseNewRepo(supabaseClient, supaUrl, supaKey)
	mongoRepo := models.MongodbNewRepo(mongoDBClient)

	feed := realtime.NewFeed(redisClient, logger)
	notifier := mq.NewProducer(amqpChannel)

	authService := services.NewAuthService(supa, logger)
	catalogService := services.NewCatalogService(supa, mongoRepo, logger)
	purchaseService := services.NewPurchaseService(supa, supa, feed, notifier, logger)
	organizerService := services.NewOrganizerService(supa, feed, cld, logger)
	searchMirror := services.NewSearchMirror(feed, mongoRepo, logger)

	return &Container{
		Logger:           logger,
		Cloudinary:       cld,
		SupabaseClient:   supabaseClient,
		MongoDBClient:    mongoDBClient,
		RedisClient:      redisClient,
		Feed:             feed,
		AuthService:      authService,
		CatalogService:   catalogService,
		PurchaseService:  purchaseService,
		OrganizerService: organizerService,
		SearchMirror:     searchMirror,
		SearchRepo:       mongoRepo,
	}
}
