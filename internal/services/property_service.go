package services

import (
	"context"
	"log"
	"strings"
	"time"

	"estatehub/internal/caching"
	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/google/uuid"
)

const propertyCacheTTL = 15 * time.Minute

type PropertyService interface {
	Create(ctx context.Context, session models.Session, input models.PropertyInput) (*models.Property, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Search(ctx context.Context, filter models.PropertyFilter) ([]*models.Property, error)
	// Update applies the editable fields. The owner is never changed.
	Update(ctx context.Context, session models.Session, id uuid.UUID, input models.PropertyInput) (*models.Property, error)
	UpdateStatus(ctx context.Context, session models.Session, id uuid.UUID, status models.PropertyStatus) (*models.Property, error)
	Delete(ctx context.Context, session models.Session, id uuid.UUID) error
	CurrentTenants(ctx context.Context, session models.Session, id uuid.UUID) ([]*models.Profile, error)
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	leaseRepo    repositories.LeaseRepository
	access       AccessService
	cacheService caching.CacheService
}

func NewPropertyService(propertyRepo repositories.PropertyRepository, leaseRepo repositories.LeaseRepository, access AccessService, cacheService caching.CacheService) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		leaseRepo:    leaseRepo,
		access:       access,
		cacheService: cacheService,
	}
}

func validatePropertyInput(input *models.PropertyInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Address = strings.TrimSpace(input.Address)
	input.City = strings.TrimSpace(input.City)
	input.Country = strings.TrimSpace(input.Country)
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))

	if err := common.ValidateRequiredString(input.Title, "title"); err != nil {
		return err
	}
	if len(input.Title) > 200 {
		return common.NewValidationError("title", "title cannot exceed 200 characters")
	}
	if err := common.ValidateRequiredString(input.Address, "address"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(input.City, "city"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(input.Country, "country"); err != nil {
		return err
	}
	if err := common.SanitizeHTMLField(input.Description, "description", 5000); err != nil {
		return err
	}
	if input.Price.IsNegative() {
		return common.NewValidationError("price", "price cannot be negative")
	}
	if input.Size.IsNegative() {
		return common.NewValidationError("size", "size cannot be negative")
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	if len(input.Currency) != 3 {
		return common.NewValidationError("currency", "currency must be a 3-letter ISO code")
	}
	if !input.PropertyType.IsValid() {
		return common.NewValidationError("property_type", "unknown property type")
	}
	if !input.Purpose.IsValid() {
		return common.NewValidationError("purpose", "purpose must be sale or rent")
	}
	if input.Bedrooms < 0 || input.Bathrooms < 0 {
		return common.NewValidationError("rooms", "room counts cannot be negative")
	}
	input.Amenities = models.NormalizeAmenities(input.Amenities)
	return nil
}

func applyPropertyInput(p *models.Property, input models.PropertyInput) {
	p.Title = input.Title
	p.Description = input.Description
	p.Address = input.Address
	p.City = input.City
	p.Country = input.Country
	p.Price = input.Price
	p.Currency = input.Currency
	p.PropertyType = input.PropertyType
	p.Purpose = input.Purpose
	p.Bedrooms = input.Bedrooms
	p.Bathrooms = input.Bathrooms
	p.Size = input.Size
	p.Amenities = input.Amenities
}

func (s *propertyService) Create(ctx context.Context, session models.Session, input models.PropertyInput) (*models.Property, error) {
	if err := s.access.Authorize(ctx, session, ActionPropertyCreate, nil); err != nil {
		return nil, err
	}
	if err := validatePropertyInput(&input); err != nil {
		return nil, err
	}

	property := &models.Property{
		ID:      uuid.New(),
		OwnerID: session.UserID(),
		Status:  models.PropertyStatusAvailable,
	}
	applyPropertyInput(property, input)
	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, common.FromDBError(err, "property")
	}
	return property, nil
}

func (s *propertyService) Get(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	// Cache errors never fail the read.
	if cached, err := s.cacheService.GetProperty(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for property %s: %v", id, err)
	}

	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.FromDBError(err, "property")
	}

	if cacheErr := s.cacheService.SetProperty(ctx, property, propertyCacheTTL); cacheErr != nil {
		log.Printf("Failed to cache property %s: %v", id, cacheErr)
	}
	return property, nil
}

func (s *propertyService) Search(ctx context.Context, filter models.PropertyFilter) ([]*models.Property, error) {
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset
	filter.City = strings.TrimSpace(filter.City)

	if filter.PropertyType != "" && !filter.PropertyType.IsValid() {
		return nil, common.NewValidationError("property_type", "unknown property type")
	}
	if filter.Purpose != "" && !filter.Purpose.IsValid() {
		return nil, common.NewValidationError("purpose", "purpose must be sale or rent")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, common.NewValidationError("status", "unknown property status")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, common.NewValidationError("min_price", "min_price cannot exceed max_price")
	}

	properties, err := s.propertyRepo.Search(ctx, filter)
	if err != nil {
		return nil, common.FromDBError(err, "property")
	}
	return properties, nil
}

func (s *propertyService) Update(ctx context.Context, session models.Session, id uuid.UUID, input models.PropertyInput) (*models.Property, error) {
	if err := s.access.Authorize(ctx, session, ActionPropertyUpdate, &id); err != nil {
		return nil, err
	}
	if err := validatePropertyInput(&input); err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.FromDBError(err, "property")
	}
	applyPropertyInput(property, input)
	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, common.FromDBError(err, "property")
	}

	s.invalidate(ctx, id)
	return property, nil
}

func (s *propertyService) UpdateStatus(ctx context.Context, session models.Session, id uuid.UUID, status models.PropertyStatus) (*models.Property, error) {
	if !status.IsValid() {
		return nil, common.NewValidationError("status", "unknown property status")
	}
	if err := s.access.Authorize(ctx, session, ActionPropertyUpdate, &id); err != nil {
		return nil, err
	}
	if err := s.propertyRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, common.FromDBError(err, "property")
	}
	s.invalidate(ctx, id)

	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.FromDBError(err, "property")
	}
	return property, nil
}

func (s *propertyService) Delete(ctx context.Context, session models.Session, id uuid.UUID) error {
	if err := s.access.Authorize(ctx, session, ActionPropertyDelete, &id); err != nil {
		return err
	}
	if err := s.propertyRepo.Delete(ctx, id); err != nil {
		return common.FromDBError(err, "property")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *propertyService) CurrentTenants(ctx context.Context, session models.Session, id uuid.UUID) ([]*models.Profile, error) {
	if err := s.access.Authorize(ctx, session, ActionPropertyTenants, &id); err != nil {
		return nil, err
	}
	tenants, err := s.leaseRepo.ListActiveTenants(ctx, id)
	if err != nil {
		return nil, common.FromDBError(err, "lease")
	}
	return tenants, nil
}

func (s *propertyService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cacheService.DeleteProperty(ctx, id); err != nil {
		log.Printf("Failed to invalidate cache for property %s: %v", id, err)
	}
}
