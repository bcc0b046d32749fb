package mapping

import (
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
)

const uncategorized = "Uncategorized"

func categoriesMapper() Mapper {
	return &entityMapper{
		entity: "categories",
		table:  "categories",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}
			return Emit(&models.Category{
				ID:        mc.IDs.Translate(doc.ID),
				StoreID:   storeID,
				Name:      doc.String(uncategorized, "name", "categoryName"),
				CreatedAt: createdAt(doc),
			})
		},
		afterWrite: func(row models.Row, _ source.Document, mc *MigrationContext) {
			c := row.(*models.Category)
			mc.Index.AddCategory(c.StoreID, c.Name, c.ID)
		},
	}
}

func suppliersMapper() Mapper {
	return &entityMapper{
		entity: "suppliers",
		table:  "suppliers",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}
			return Emit(&models.Supplier{
				ID:            mc.IDs.Translate(doc.ID),
				StoreID:       storeID,
				Name:          doc.String("", "name", "supplierName"),
				ContactPerson: doc.OptString("contactPerson", "contact_person", "contact"),
				Phone:         doc.OptString("phone", "telp"),
				Email:         doc.OptString("email"),
				Address:       doc.OptString("address", "alamat"),
				CreatedAt:     createdAt(doc),
			})
		},
	}
}

func customersMapper() Mapper {
	return &entityMapper{
		entity: "customers",
		table:  "customers",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}
			return Emit(&models.Customer{
				ID:            mc.IDs.Translate(doc.ID),
				StoreID:       storeID,
				Name:          doc.String("", "name", "customerName"),
				Phone:         doc.OptString("phone", "telp"),
				Email:         doc.OptString("email"),
				Address:       doc.OptString("address", "alamat"),
				LoyaltyPoints: doc.Int(0, "loyaltyPoints", "points"),
				TotalSpent:    doc.Float(0, "totalSpent", "total_spent"),
				CreatedAt:     createdAt(doc),
			})
		},
	}
}

func productsMapper() Mapper {
	return &entityMapper{
		entity: "products",
		table:  "products",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}
			return Emit(&models.Product{
				ID:         mc.IDs.Translate(doc.ID),
				StoreID:    storeID,
				CategoryID: resolveCategory(doc, storeID, mc),
				Name:       doc.String("", "name", "productName"),
				Barcode:    doc.OptString("barcode", "code", "sku"),
				SellPrice:  doc.Float(0, "sellPrice", "price"),
				BuyPrice:   doc.Float(0, "buyPrice", "costPrice"),
				Stock:      doc.Float(0, "stock", "qty"),
				MinStock:   doc.Float(0, "minStock", "min_stock"),
				Unit:       doc.String("pcs", "unit"),
				IsActive:   doc.Bool(true, "isActive", "active"),
				CreatedAt:  createdAt(doc),
				UpdatedAt:  ts(doc, "updatedAt", "updated_at"),
			})
		},
	}
}

// resolveCategory prefers the category name, looked up within the product's
// store, then an explicit category id. Older documents store the id under the
// name field, so that value is also tried as an id. A category that is not
// known to the target leaves the product uncategorized.
func resolveCategory(doc source.Document, storeID string, mc *MigrationContext) *string {
	name := doc.String("", "category", "categoryName")
	if name != "" {
		if id, ok := mc.Index.CategoryByName(storeID, name); ok {
			return &id
		}
	}

	for _, ref := range []string{doc.String("", "categoryId", "category_id"), name} {
		if id := mc.IDs.Translate(ref); id != "" && mc.Index.HasCategory(id) {
			return &id
		}
	}
	return nil
}

func promotionsMapper() Mapper {
	return &entityMapper{
		entity: "promotions",
		table:  "promotions",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}
			return Emit(&models.Promotion{
				ID:        mc.IDs.Translate(doc.ID),
				StoreID:   storeID,
				ProductID: mc.RefID(doc, "productId", "product_id"),
				Name:      doc.String("", "name", "title"),
				Type:      doc.String("percentage", "type", "discountType"),
				Value:     doc.Float(0, "value", "discountValue"),
				StartDate: ts(doc, "startDate", "start_date"),
				EndDate:   ts(doc, "endDate", "end_date"),
				IsActive:  doc.Bool(true, "isActive", "active"),
				CreatedAt: createdAt(doc),
			})
		},
	}
}
