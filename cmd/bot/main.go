package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/concentration-bot/internal/clients/dnd5e"
	"github.com/KirkDiggler/concentration-bot/internal/config"
	"github.com/KirkDiggler/concentration-bot/internal/dice"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	"github.com/KirkDiggler/concentration-bot/internal/handlers/discord"
	"github.com/KirkDiggler/concentration-bot/internal/i18n"
	"github.com/KirkDiggler/concentration-bot/internal/services"
	"github.com/KirkDiggler/concentration-bot/internal/uuid"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Application ID: %s", cfg.Discord.AppID)
	if cfg.Discord.GuildID != "" {
		log.Printf("Guild ID: %s", cfg.Discord.GuildID)
	}

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	dndClient, err := dnd5e.New(&dnd5e.Config{
		HttpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create D&D 5e client: %v", err)
	}

	localizer, err := i18n.NewDefaultLocalizer(cfg.World.Locale)
	if err != nil {
		log.Fatalf("Failed to load locale %s: %v", cfg.World.Locale, err)
	}

	providerConfig := &services.ProviderConfig{
		World:     cfg.World,
		Wait:      cfg.Wait,
		DNDClient: dndClient,
		Localizer: localizer,
		Roller:    dice.NewRandomRoller(),
		UUIDs:     uuid.NewGoogleUUIDGenerator(),
		Publisher: discord.NewPublisher(&discord.PublisherConfig{
			Session:   dg,
			ChannelID: cfg.Discord.ChannelID,
			Localizer: localizer,
		}),
	}

	redisClient := connectRedis(cfg.Redis.URL)
	if redisClient != nil {
		providerConfig.RedisClient = redisClient
		log.Println("Using Redis for persistence")
	}

	serviceProvider, err := services.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create services: %v", err)
	}

	ctx := context.Background()
	for _, id := range cfg.World.GameMasterIDs {
		if err := serviceProvider.DocumentService.UpsertUser(ctx, &entities.User{ID: id, IsGM: true}); err != nil {
			log.Fatalf("Failed to register game master %s: %v", id, err)
		}
	}

	handler := discord.NewHandler(&discord.HandlerConfig{
		ServiceProvider: serviceProvider,
	})

	dg.AddHandler(discord.RecoverMiddleware("interaction", handler.HandleInteraction))

	err = dg.Open()
	if err != nil {
		log.Printf("Failed to open Discord connection: %v", err)
		return
	}
	defer func() {
		clientErr := dg.Close()
		if clientErr != nil {
			log.Printf("Failed to close Discord connection: %v", clientErr)
		}
	}()

	if err := serviceProvider.DocumentService.Ready(ctx); err != nil {
		log.Printf("Ready hooks failed: %v", err)
		return
	}

	// Use empty string for global commands, or set a specific guild ID for testing
	if err := handler.RegisterCommands(dg, cfg.Discord.GuildID); err != nil {
		log.Printf("Failed to register commands: %v", err)
		return
	}

	if cfg.Discord.GuildID != "" {
		log.Printf("Registered commands for guild: %s", cfg.Discord.GuildID)
	} else {
		log.Println("Registered global commands (may take up to 1 hour to propagate)")
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	fmt.Println("Shutting down...")

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		} else {
			log.Println("Closed Redis connection")
		}
	}
}

// connectRedis returns a connected client, or nil to keep everything in memory
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("No REDIS_URL found, using in-memory repositories")
		return nil
	}

	log.Printf("Connecting to Redis at: %s", redisURL)
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Failed to parse Redis URL: %v", err)
		log.Println("Falling back to in-memory repositories")
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		log.Println("Falling back to in-memory repositories")
		_ = client.Close()
		return nil
	}

	log.Println("Successfully connected to Redis")
	return client
}
