package contacts

import (
	"context"
	"fmt"

	httpadapter "contacts-api/internal/contacts/adapter/http"
	mongodbpersistence "contacts-api/internal/contacts/adapter/persistence/mongodb"
	"contacts-api/internal/contacts/adapter/persistence/redisstore"
	"contacts-api/internal/contacts/config"
	"contacts-api/internal/contacts/domain/model"
	"contacts-api/internal/contacts/domain/repository"
	"contacts-api/internal/contacts/usecase"
	"contacts-api/internal/shared/eventbus"
	"contacts-api/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// ContactsModule wires the contacts service from storage to HTTP routes
type ContactsModule struct {
	Config         *config.Config
	ContactUsecase usecase.ContactUsecaseInterface
	WatchHub       *usecase.WatchHub
	EventBus       *eventbus.EventBus
	Dispatcher     *eventbus.Dispatcher
	EventStore     repository.EventStore
	Logger         logger.Logger

	contactHandler *httpadapter.ContactHandler
	watchHandler   *httpadapter.WatchHandler
	docsHandler    *httpadapter.DocsHandler
}

// NewContactsModule builds the module on top of an open database.
// redisClient may be nil when the change-feed store is disabled.
func NewContactsModule(ctx context.Context, cfg *config.Config, db *mongo.Database, redisClient *redis.Client, log logger.Logger) (*ContactsModule, error) {
	if cfg == nil {
		return nil, fmt.Errorf("contacts module requires a configuration")
	}
	if db == nil {
		return nil, fmt.Errorf("contacts module requires a database")
	}
	if log == nil {
		log = logger.NewLogger()
	}
	log = log.WithComponent("contacts")
	log.Info("Initializing Contacts Module...")

	contactsCollection := db.Collection(cfg.ContactsCollection)
	if err := mongodbpersistence.EnsureContactIndexes(ctx, contactsCollection); err != nil {
		return nil, fmt.Errorf("failed to ensure contact indexes: %w", err)
	}

	repo := mongodbpersistence.NewMongoContactRepository(mongodbpersistence.NewMongoCollectionAdapter(contactsCollection))
	sequence := mongodbpersistence.NewMongoSequenceGenerator(mongodbpersistence.NewMongoCollectionAdapter(db.Collection(cfg.CountersCollection)))

	bus := eventbus.NewEventBus(log)
	hub := usecase.NewWatchHub(log)

	var events repository.EventStore
	if redisClient != nil {
		events = redisstore.NewEventStore(redisClient, cfg.Redis.Stream, cfg.Redis.StreamMaxLength, log)
		log.Infof("Change feed persisted to Redis stream %s", cfg.Redis.Stream)
	}
	usecase.RegisterChangeFeed(bus, hub, events, log)
	dispatcher := eventbus.NewDispatcher(bus, eventbus.DefaultQueueSize, log)

	contactUC, err := usecase.NewContactUsecase(usecase.Dependencies{
		Repository:  repo,
		Sequence:    sequence,
		CounterName: cfg.ContactsCollection,
		Publisher:   dispatcher,
		Events:      events,
		Logger:      log,
	})
	if err != nil {
		dispatcher.Close()
		return nil, err
	}

	module := &ContactsModule{
		Config:         cfg,
		ContactUsecase: contactUC,
		WatchHub:       hub,
		EventBus:       bus,
		Dispatcher:     dispatcher,
		EventStore:     events,
		Logger:         log,
		contactHandler: httpadapter.NewContactHandler(contactUC, log),
		watchHandler:   httpadapter.NewWatchHandler(hub, log),
	}
	if cfg.DocsEnabled {
		module.docsHandler = httpadapter.NewDocsHandler()
	}

	log.Info("Contacts Module initialized successfully")
	return module, nil
}

// RegisterRoutes mounts every contacts route on router
func (m *ContactsModule) RegisterRoutes(router fiber.Router) {
	// static /contacts segments go first so /contacts/:id does not shadow them
	m.watchHandler.RegisterRoutes(router)
	m.contactHandler.RegisterRoutes(router)
	if m.docsHandler != nil {
		m.docsHandler.RegisterRoutes(router)
	}
}

// Stop flushes queued events and detaches change-feed subscribers
func (m *ContactsModule) Stop() {
	m.Dispatcher.Close()
	for _, eventType := range model.ContactEventTypeNames() {
		m.EventBus.Unsubscribe(eventType)
	}
	m.Logger.Info("Contacts Module stopped")
}
