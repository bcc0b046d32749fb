package mapping

import (
	"strings"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
)

func storesMapper() Mapper {
	return &entityMapper{
		entity: "stores",
		table:  "stores",
		scope:  ScopeNone,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			return Emit(&models.Store{
				ID:        mc.IDs.Translate(doc.ID),
				Name:      doc.String("Toko", "name", "storeName"),
				Address:   doc.OptString("address", "alamat"),
				Phone:     doc.OptString("phone", "telp"),
				OwnerID:   mc.Actor(doc, []string{"ownerEmail", "email"}, []string{"ownerId", "owner_id"}),
				Plan:      doc.String("free", "plan", "subscriptionPlan"),
				CreatedAt: createdAt(doc),
				UpdatedAt: ts(doc, "updatedAt", "updated_at"),
			})
		},
		afterWrite: func(row models.Row, _ source.Document, mc *MigrationContext) {
			createdAt := ""
			if st, ok := row.(*models.Store); ok && st.CreatedAt != nil {
				createdAt = *st.CreatedAt
			}
			mc.Index.AddStore(row.PrimaryKey(), createdAt)
		},
	}
}

// usersMapper keys each profile by the target identity holding the same
// email. Source user ids come from a different identity scheme and are never
// used as keys; they are remembered after the write for actor resolution.
func usersMapper() Mapper {
	return &entityMapper{
		entity: "users",
		table:  "profiles",
		scope:  ScopeRehome,
		mapFn: func(doc source.Document, mc *MigrationContext) Outcome {
			email := strings.TrimSpace(doc.String("", "email"))
			if email == "" {
				return Skip("no email")
			}
			identityID, ok := mc.Index.IdentityByEmail(email)
			if !ok {
				return Skip("no target identity for %s", email)
			}

			storeID, ok, reason := mc.ResolveStore(doc, ScopeRehome)
			if !ok {
				return Skip("%s", reason)
			}

			return Emit(&models.Profile{
				ID:          identityID,
				Email:       email,
				Name:        doc.String(email, "name", "displayName", "fullName"),
				Role:        strings.ToLower(doc.String("staff", "role")),
				StoreID:     &storeID,
				Phone:       doc.OptString("phone", "phoneNumber"),
				Permissions: models.NewJSON(doc.Raw("permissions")),
				CreatedAt:   createdAt(doc),
			})
		},
		afterWrite: func(row models.Row, doc source.Document, mc *MigrationContext) {
			mc.Index.AddSourceUID(doc.ID, row.PrimaryKey())
			if uid := doc.String("", "uid"); uid != "" {
				mc.Index.AddSourceUID(uid, row.PrimaryKey())
			}
		},
	}
}
