package mapping

import (
	"strings"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
)

func stockMovementsMapper() Mapper {
	return &entityMapper{
		entity: "stock_movements",
		table:  "stock_movements",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}
			// Transactions keep their source id, so the reference does too.
			return Emit(&models.StockMovement{
				ID:          mc.IDs.Translate(doc.ID),
				StoreID:     storeID,
				ProductID:   mc.RefID(doc, "productId", "product_id"),
				Type:        strings.ToLower(doc.String("adjustment", "type")),
				Quantity:    doc.Float(0, "quantity", "qty"),
				ReferenceID: doc.OptString("referenceId", "transactionId", "reference_id"),
				Note:        doc.OptString("note", "notes", "reason"),
				CreatedBy:   mc.Actor(doc, []string{"userEmail", "createdByEmail"}, []string{"userId", "createdBy"}),
				CreatedAt:   createdAt(doc),
			})
		},
	}
}

func shiftMovementsMapper() Mapper {
	return &entityMapper{
		entity: "shift_movements",
		table:  "shift_movements",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			shiftID := mc.RefID(doc, "shiftId", "shift_id")
			if shiftID == nil {
				return Skip("no shift reference")
			}
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}
			return Emit(&models.ShiftMovement{
				ID:        mc.IDs.Translate(doc.ID),
				StoreID:   storeID,
				ShiftID:   *shiftID,
				Type:      strings.ToLower(doc.String("in", "type")),
				Amount:    doc.Float(0, "amount"),
				Note:      doc.OptString("note", "reason", "description"),
				CreatedBy: mc.Actor(doc, cashierEmailFields, cashierUIDFields),
				CreatedAt: createdAt(doc),
			})
		},
	}
}

func pointHistoryMapper() Mapper {
	return &entityMapper{
		entity: "point_history",
		table:  "point_history",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			customerID := mc.RefID(doc, "customerId", "customer_id")
			if customerID == nil {
				return Skip("no customer reference")
			}
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}
			return Emit(&models.PointHistory{
				ID:            mc.IDs.Translate(doc.ID),
				StoreID:       storeID,
				CustomerID:    *customerID,
				TransactionID: doc.OptString("transactionId", "transaction_id"),
				Points:        doc.Int(0, "points", "amount"),
				Type:          strings.ToLower(doc.String("earn", "type")),
				Description:   doc.OptString("description", "note"),
				CreatedAt:     createdAt(doc),
			})
		},
	}
}

func auditLogsMapper() Mapper {
	return &entityMapper{
		entity: "audit_logs",
		table:  "audit_logs",
		scope:  ScopeRehome,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeRehome)
			if !ok {
				return Skip("%s", reason)
			}
			return Emit(&models.AuditLog{
				ID:        mc.IDs.Translate(doc.ID),
				StoreID:   storeID,
				UserID:    mc.Actor(doc, []string{"userEmail", "email"}, []string{"userId", "uid"}),
				Action:    doc.String("unknown", "action", "event"),
				Details:   models.NewJSON(doc.Raw("details", "metadata")),
				CreatedAt: createdAt(doc),
			})
		},
	}
}
