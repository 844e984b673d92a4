package connect

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client
	RedisClient    *redis.Client
	AMQPConn       *amqp.Connection
	Cld            *cloudinary.Cloudinary
)

// supabase init
func InitSupabase() (*supabase.Client, string, string, error) {
	url := os.Getenv("SUPABASE_URL")
	key := os.Getenv("SUPABASE_URL_ANON_KEY")
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, "", "", err
	}
	SupabaseClient = client
	return client, url, key, nil
}

func Disconnect() {
	SupabaseClient = nil
}

// mongo init

func MongoDBConnect() (*mongo.Client, error) {
	uri := os.Getenv("MONGODB_URI")
	password := os.Getenv("MONGODB_PASSWORD")
	fullUri := strings.Replace(uri, "<password>", password, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	clientOptions := options.Client().ApplyURI(fullUri)

	var err error
	MongoDBClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	if err := MongoDBClient.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	fmt.Println("✅ MongoDB connected successfully")
	return MongoDBClient, nil
}

func MongoDBDisconnect() error {
	if MongoDBClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := MongoDBClient.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %v", err)
	}
	MongoDBClient = nil
	return nil
}

// redis init

func RedisConnect(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %v", err)
	}

	RedisClient = rdb
	fmt.Println("✅ Redis connected successfully")
	return rdb, nil
}

func RedisDisconnect() error {
	if RedisClient == nil {
		return nil
	}
	err := RedisClient.Close()
	RedisClient = nil
	return err
}

// rabbitmq init

func RabbitMQConnect(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	AMQPConn = conn
	fmt.Println("✅ RabbitMQ connected successfully")
	return conn, nil
}

func RabbitMQDisconnect() error {
	if AMQPConn == nil {
		return nil
	}
	err := AMQPConn.Close()
	AMQPConn = nil
	return err
}

func CloudinaryCredentials() (*cloudinary.Cloudinary, error) {
	cloudinaryName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	cld, err := cloudinary.NewFromParams(
		cloudinaryName,
		apiKey,
		apiSecret,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %v", err)
	}

	fmt.Println("✅ Cloudinary connected successfully")
	return cld, nil
}
