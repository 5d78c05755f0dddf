package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/pkg/db"
	"github.com/axcshop/axcshop-backend/pkg/db/models"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/types"
)

// UpsertInput carries the shopper identity captured at checkout. Phone is the
// stable key; the other fields refresh the stored profile on every order.
type UpsertInput struct {
	Phone   string
	Name    string
	Email   *string
	Address types.Address
}

// Repository persists customers keyed on phone number.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, input UpsertInput) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert finds the customer by phone and refreshes name, email and default
// address, creating the row when the phone is unseen. A concurrent insert on
// the same phone is resolved by re-reading the winning row.
func (r *repository) Upsert(ctx context.Context, input UpsertInput) (*models.Customer, error) {
	if input.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}

	existing, err := r.FindByPhone(ctx, input.Phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return r.refresh(ctx, existing, input)
	}

	created := &models.Customer{
		ID:             uuid.New(),
		Phone:          input.Phone,
		Name:           input.Name,
		Email:          input.Email,
		DefaultAddress: input.Address,
	}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		if db.IsUniqueViolation(err, "ux_customers_phone") {
			winner, ferr := r.FindByPhone(ctx, input.Phone)
			if ferr != nil {
				return nil, ferr
			}
			if winner != nil {
				return r.refresh(ctx, winner, input)
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating customer")
	}
	return created, nil
}

func (r *repository) refresh(ctx context.Context, customer *models.Customer, input UpsertInput) (*models.Customer, error) {
	customer.Name = input.Name
	if input.Email != nil {
		customer.Email = input.Email
	}
	if !input.Address.IsZero() {
		customer.DefaultAddress = input.Address
	}
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating customer")
	}
	return customer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading customer")
	}
	return &customer, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&customer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading customer")
	}
	return &customer, nil
}
