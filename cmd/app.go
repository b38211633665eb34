package main

import (
	"context"
	"fmt"
	"log"

	"estatehub/internal/caching"
	"estatehub/internal/config"
	"estatehub/internal/jobs"
	"estatehub/internal/repositories"
	"estatehub/internal/services"
	"estatehub/pkg/database"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// app holds the shared infrastructure and the services built on it.
type app struct {
	cfg     *config.Config
	pool    *pgxpool.Pool
	redis   *redis.Client
	queue   *asynq.Client
	cache   caching.CacheService
	storage services.StorageService

	identity    services.IdentityService
	properties  services.PropertyService
	delegation  services.DelegationService
	territories services.TerritoryService
	kyc         services.KYCService
	onboarding  services.OnboardingService
	leases      services.LeaseService
	payments    services.PaymentService
	maintenance services.MaintenanceService
	messaging   services.MessagingService
	shortlists  services.ShortlistService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	cacheSvc := caching.NewRedisCacheService(redisClient)
	if err := cacheSvc.Ping(ctx); err != nil {
		log.Printf("WARN: redis unavailable at startup: %v", err)
	}

	storage, err := services.NewStorageService(cfg.Storage)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	for _, bucket := range []string{cfg.Storage.AvatarBucket, cfg.Storage.KYCBucket, cfg.Storage.CredentialBucket} {
		if err := storage.EnsureBucketExists(ctx, bucket); err != nil {
			log.Printf("WARN: failed to ensure bucket %s: %v", bucket, err)
		}
	}
	// avatars are served by their stable URL; KYC and credential buckets stay private
	if err := storage.AllowPublicRead(ctx, cfg.Storage.AvatarBucket); err != nil {
		log.Printf("WARN: failed to open bucket %s for reads: %v", cfg.Storage.AvatarBucket, err)
	}

	redisOpt, err := jobs.RedisConnOpt(cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("invalid redis address: %w", err)
	}
	queue := asynq.NewClient(redisOpt)
	notifier := jobs.NewTaskNotifier(queue)

	propertyRepo := repositories.NewPropertyRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	userRoleRepo := repositories.NewUserRoleRepo(pool)
	agentRepo := repositories.NewAgentAssignmentRepo(pool)
	managerRepo := repositories.NewManagerAssignmentRepo(pool)
	territoryRepo := repositories.NewTerritoryRepo(pool)
	specializationRepo := repositories.NewSpecializationRepo(pool)
	kycRepo := repositories.NewKYCRepo(pool)
	credentialRepo := repositories.NewCredentialRepo(pool)
	leaseRepo := repositories.NewLeaseRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	maintenanceRepo := repositories.NewMaintenanceRepo(pool)
	messageRepo := repositories.NewMessageRepo(pool)

	access := services.NewAccessService(propertyRepo)
	properties := services.NewPropertyService(propertyRepo, leaseRepo, access, cacheSvc)

	a := &app{
		cfg:     cfg,
		pool:    pool,
		redis:   redisClient,
		queue:   queue,
		cache:   cacheSvc,
		storage: storage,

		identity:    services.NewIdentityService(profileRepo, userRoleRepo, access, storage, cacheSvc, cfg.Storage.AvatarBucket),
		properties:  properties,
		delegation:  services.NewDelegationService(agentRepo, managerRepo, userRoleRepo, access),
		territories: services.NewTerritoryService(territoryRepo, specializationRepo, access),
		kyc:         services.NewKYCService(kycRepo, access, storage, notifier, cfg.Storage.KYCBucket),
		onboarding: services.NewOnboardingService(kycRepo, credentialRepo, leaseRepo, userRoleRepo, access, storage, cacheSvc, notifier,
			services.CredentialOptions{
				SigningKey:       []byte(cfg.Credential.SigningKey),
				TTL:              cfg.Credential.TTL.Duration,
				IssueLimit:       cfg.Credential.IssueLimit,
				IssueLimitWindow: cfg.Credential.IssueLimitWindow.Duration,
				Bucket:           cfg.Storage.CredentialBucket,
				CleanupMaxAge:    cfg.Credential.ImageCleanupMaxAge.Duration,
			}),
		leases:      services.NewLeaseService(leaseRepo, propertyRepo, profileRepo, access, cacheSvc),
		payments:    services.NewPaymentService(paymentRepo, leaseRepo, access),
		maintenance: services.NewMaintenanceService(maintenanceRepo, leaseRepo, userRoleRepo, access),
		messaging:   services.NewMessagingService(messageRepo, profileRepo, leaseRepo, propertyRepo, managerRepo, maintenanceRepo, notifier),
		shortlists:  services.NewShortlistService(caching.NewRedisShortlistStore(redisClient), properties),
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.queue.Close(); err != nil {
		log.Printf("WARN: failed to close task queue client: %v", err)
	}
	if err := a.redis.Close(); err != nil {
		log.Printf("WARN: failed to close redis client: %v", err)
	}
	a.pool.Close()
}
