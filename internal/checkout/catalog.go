package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
)

// ItemInput is one cart line as submitted by the client. Only the references
// and the quantity are trusted; prices always come from the catalog rows.
type ItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Qty       int
}

// CatalogReader resolves cart lines into priced order items.
type CatalogReader interface {
	WithTx(tx *gorm.DB) CatalogReader
	Price(ctx context.Context, items []ItemInput) ([]models.OrderItem, error)
}

type catalogReader struct {
	db *gorm.DB
}

func NewCatalogReader(conn *gorm.DB) CatalogReader {
	return &catalogReader{db: conn}
}

func (c *catalogReader) WithTx(tx *gorm.DB) CatalogReader {
	if tx == nil {
		return c
	}
	return &catalogReader{db: tx}
}

// Price loads each referenced product (and variant where given) and builds the
// order items with catalog prices. A product that carries variants cannot be
// ordered at product level.
func (c *catalogReader) Price(ctx context.Context, items []ItemInput) ([]models.OrderItem, error) {
	priced := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}

		var product models.Product
		err := c.db.WithContext(ctx).Where("id = ?", item.ProductID).First(&product).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", item.ProductID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}

		if item.VariantID != nil {
			var variant models.ProductVariant
			err := c.db.WithContext(ctx).
				Where("id = ? AND product_id = ?", *item.VariantID, item.ProductID).
				First(&variant).Error
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %s not found", *item.VariantID))
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant")
			}
			priced = append(priced, models.OrderItem{
				ProductID:      product.ID,
				VariantID:      item.VariantID,
				Name:           fmt.Sprintf("%s (%s)", product.Title, variant.Name),
				SKU:            variant.SKU,
				UnitPriceMinor: variant.PriceMinor,
				UnitMRPMinor:   variant.MRPMinor,
				Qty:            item.Qty,
			})
			continue
		}

		if product.HasVariants {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s requires a variant", product.SKU))
		}
		priced = append(priced, models.OrderItem{
			ProductID:      product.ID,
			Name:           product.Title,
			SKU:            product.SKU,
			UnitPriceMinor: product.PriceMinor,
			UnitMRPMinor:   product.MRPMinor,
			Qty:            item.Qty,
		})
	}
	return priced, nil
}
