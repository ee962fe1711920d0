package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"salonspa-backend/models"
	"salonspa-backend/utils"
)

// CustomerResolver finds the customer record a booking belongs to.
type CustomerResolver interface {
	ResolveOrCreate(ctx context.Context, storeID uint, name, phone, email string) (*models.Customer, error)
	TouchLastVisit(ctx context.Context, id uint, at time.Time) (*models.Customer, error)
}

// CustomerService resolves customers by store and phone number.
type CustomerService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCustomerService(db *gorm.DB, log *zap.Logger) *CustomerService {
	return &CustomerService{db: db, log: log.Named("customer.service")}
}

// ResolveOrCreate returns the store's customer with this phone, creating it
// from the guest contact fields when none exists.
func (s *CustomerService) ResolveOrCreate(ctx context.Context, storeID uint, name, phone, email string) (*models.Customer, error) {
	phone = utils.NormalizePhone(phone)
	name = strings.TrimSpace(name)
	if storeID == 0 {
		return nil, invalidArgument("storeId is required")
	}
	if phone == "" {
		return nil, invalidArgument("customer phone is required")
	}
	if !utils.ValidatePhone(phone) {
		return nil, invalidArgument("invalid phone number format %q", phone)
	}

	customer, err := s.findByPhone(ctx, storeID, phone)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = phone
	}
	customer = &models.Customer{
		StoreID:  storeID,
		Name:     name,
		Phone:    phone,
		Email:    strings.TrimSpace(email),
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create customer: %w", err)
		}
		// Lost a race with another request for the same phone.
		customer, err = s.findByPhone(ctx, storeID, phone)
		if err != nil {
			return nil, translateDBError(err, "customer "+phone)
		}
		return customer, nil
	}

	s.log.Info("customer created from booking contact",
		zap.Uint("customer_id", customer.ID),
		zap.Uint("store_id", storeID),
	)
	return customer, nil
}

// TouchLastVisit stamps the customer's last visit.
func (s *CustomerService) TouchLastVisit(ctx context.Context, id uint, at time.Time) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, translateDBError(err, fmt.Sprintf("customer %d", id))
	}
	at = at.UTC()
	if err := s.db.WithContext(ctx).Model(&customer).Update("last_visit_date", at).Error; err != nil {
		return nil, fmt.Errorf("update last visit of customer %d: %w", id, err)
	}
	customer.LastVisitDate = &at
	return &customer, nil
}

func (s *CustomerService) findByPhone(ctx context.Context, storeID uint, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND phone = ?", storeID, phone).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
