package mapping

import (
	"strings"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
)

var (
	cashierEmailFields = []string{"cashierEmail", "userEmail", "email"}
	cashierUIDFields   = []string{"cashierId", "userId"}
)

func shiftsMapper() Mapper {
	return &entityMapper{
		entity: "shifts",
		table:  "shifts",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}

			endTime := ts(doc, "endTime", "end_time", "closedAt")
			status := "open"
			if endTime != nil {
				status = "closed"
			}

			return Emit(&models.Shift{
				ID:        mc.IDs.Translate(doc.ID),
				StoreID:   storeID,
				CashierID: mc.Actor(doc, cashierEmailFields, cashierUIDFields),
				StartTime: ts(doc, "startTime", "start_time", "openedAt"),
				EndTime:   endTime,
				StartCash: doc.Float(0, "startCash", "initialCash"),
				EndCash:   doc.OptFloat("endCash", "finalCash"),
				Status:    strings.ToLower(doc.String(status, "status")),
				CreatedAt: createdAt(doc),
			})
		},
	}
}

// transactionsMapper keeps the source id as the primary key. Receipts printed
// before the migration carry that id, and detail records reference it raw.
func transactionsMapper() Mapper {
	return &entityMapper{
		entity: "transactions",
		table:  "transactions",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}

			total := doc.Float(0, "total", "totalAmount")
			return Emit(&models.Transaction{
				ID:            doc.ID,
				StoreID:       storeID,
				CustomerID:    mc.RefID(doc, "customerId", "customer_id", "customer.id"),
				ShiftID:       mc.RefID(doc, "shiftId", "shift_id"),
				CashierID:     mc.Actor(doc, cashierEmailFields, cashierUIDFields),
				Items:         models.NewJSON(doc.Raw("items", "cart")),
				Subtotal:      doc.Float(total, "subtotal", "subTotal"),
				Discount:      doc.Float(0, "discount", "totalDiscount"),
				Tax:           doc.Float(0, "tax"),
				Total:         total,
				PaymentMethod: strings.ToLower(doc.String("cash", "paymentMethod", "payment_method")),
				AmountPaid:    doc.Float(total, "amountPaid", "cashAmount"),
				Change:        doc.Float(0, "change", "changeAmount"),
				Status:        strings.ToLower(doc.String("completed", "status")),
				CreatedAt:     createdAt(doc),
			})
		},
	}
}

func purchaseOrdersMapper() Mapper {
	return &entityMapper{
		entity: "purchase_orders",
		table:  "purchase_orders",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}
			return Emit(&models.PurchaseOrder{
				ID:           mc.IDs.Translate(doc.ID),
				StoreID:      storeID,
				SupplierID:   mc.RefID(doc, "supplierId", "supplier_id"),
				Items:        models.NewJSON(doc.Raw("items")),
				TotalAmount:  doc.Float(0, "totalAmount", "total"),
				Status:       strings.ToLower(doc.String("draft", "status")),
				OrderDate:    ts(doc, "orderDate", "date"),
				ReceivedDate: ts(doc, "receivedDate", "received_at"),
				Notes:        doc.OptString("notes", "note"),
				CreatedAt:    createdAt(doc),
			})
		},
	}
}

func expensesMapper() Mapper {
	return &entityMapper{
		entity: "expenses",
		table:  "expenses",
		scope:  ScopeStrict,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			storeID, ok, reason := mc.ResolveStore(doc, ScopeStrict)
			if !ok {
				return Skip("%s", reason)
			}
			return Emit(&models.Expense{
				ID:          mc.IDs.Translate(doc.ID),
				StoreID:     storeID,
				Category:    doc.String("other", "category", "type"),
				Description: doc.OptString("description", "note"),
				Amount:      doc.Float(0, "amount"),
				Date:        ts(doc, "date", "expenseDate"),
				CreatedBy:   mc.Actor(doc, []string{"createdByEmail", "userEmail"}, []string{"createdBy", "userId"}),
				CreatedAt:   ts(doc, "createdAt", "created_at"),
			})
		},
	}
}
