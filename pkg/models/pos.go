package models

// Target tables of the point-of-sale schema. Timestamps are ISO-8601 strings
// produced by the timestamp normalizer; nil pointers are written as NULL.

type Store struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	Address   *string `db:"address"`
	Phone     *string `db:"phone"`
	OwnerID   *string `db:"owner_id"`
	Plan      string  `db:"plan"`
	CreatedAt *string `db:"created_at"`
	UpdatedAt *string `db:"updated_at"`
}

func (r *Store) TableName() string  { return "stores" }
func (r *Store) PrimaryKey() string { return r.ID }

// Profile is keyed by the target identity id, not by the source user id.
type Profile struct {
	ID          string  `db:"id"`
	Email       string  `db:"email"`
	Name        string  `db:"name"`
	Role        string  `db:"role"`
	StoreID     *string `db:"store_id"`
	Phone       *string `db:"phone"`
	Permissions JSON    `db:"permissions"`
	CreatedAt   *string `db:"created_at"`
}

func (r *Profile) TableName() string  { return "profiles" }
func (r *Profile) PrimaryKey() string { return r.ID }

type Category struct {
	ID        string  `db:"id"`
	StoreID   string  `db:"store_id"`
	Name      string  `db:"name"`
	CreatedAt *string `db:"created_at"`
}

func (r *Category) TableName() string  { return "categories" }
func (r *Category) PrimaryKey() string { return r.ID }

type Supplier struct {
	ID            string  `db:"id"`
	StoreID       string  `db:"store_id"`
	Name          string  `db:"name"`
	ContactPerson *string `db:"contact_person"`
	Phone         *string `db:"phone"`
	Email         *string `db:"email"`
	Address       *string `db:"address"`
	CreatedAt     *string `db:"created_at"`
}

func (r *Supplier) TableName() string  { return "suppliers" }
func (r *Supplier) PrimaryKey() string { return r.ID }

type Customer struct {
	ID            string  `db:"id"`
	StoreID       string  `db:"store_id"`
	Name          string  `db:"name"`
	Phone         *string `db:"phone"`
	Email         *string `db:"email"`
	Address       *string `db:"address"`
	LoyaltyPoints int64   `db:"loyalty_points"`
	TotalSpent    float64 `db:"total_spent"`
	CreatedAt     *string `db:"created_at"`
}

func (r *Customer) TableName() string  { return "customers" }
func (r *Customer) PrimaryKey() string { return r.ID }

type Product struct {
	ID         string  `db:"id"`
	StoreID    string  `db:"store_id"`
	CategoryID *string `db:"category_id"`
	Name       string  `db:"name"`
	Barcode    *string `db:"barcode"`
	SellPrice  float64 `db:"sell_price"`
	BuyPrice   float64 `db:"buy_price"`
	Stock      float64 `db:"stock"`
	MinStock   float64 `db:"min_stock"`
	Unit       string  `db:"unit"`
	IsActive   bool    `db:"is_active"`
	CreatedAt  *string `db:"created_at"`
	UpdatedAt  *string `db:"updated_at"`
}

func (r *Product) TableName() string  { return "products" }
func (r *Product) PrimaryKey() string { return r.ID }

type Promotion struct {
	ID        string  `db:"id"`
	StoreID   string  `db:"store_id"`
	ProductID *string `db:"product_id"`
	Name      string  `db:"name"`
	Type      string  `db:"type"`
	Value     float64 `db:"value"`
	StartDate *string `db:"start_date"`
	EndDate   *string `db:"end_date"`
	IsActive  bool    `db:"is_active"`
	CreatedAt *string `db:"created_at"`
}

func (r *Promotion) TableName() string  { return "promotions" }
func (r *Promotion) PrimaryKey() string { return r.ID }

type Shift struct {
	ID        string   `db:"id"`
	StoreID   string   `db:"store_id"`
	CashierID *string  `db:"cashier_id"`
	StartTime *string  `db:"start_time"`
	EndTime   *string  `db:"end_time"`
	StartCash float64  `db:"start_cash"`
	EndCash   *float64 `db:"end_cash"`
	Status    string   `db:"status"`
	CreatedAt *string  `db:"created_at"`
}

func (r *Shift) TableName() string  { return "shifts" }
func (r *Shift) PrimaryKey() string { return r.ID }

// Transaction keeps the source-native id as its primary key; receipts and
// detail records refer to it by that value.
type Transaction struct {
	ID            string  `db:"id"`
	StoreID       string  `db:"store_id"`
	CustomerID    *string `db:"customer_id"`
	ShiftID       *string `db:"shift_id"`
	CashierID     *string `db:"cashier_id"`
	Items         JSON    `db:"items"`
	Subtotal      float64 `db:"subtotal"`
	Discount      float64 `db:"discount"`
	Tax           float64 `db:"tax"`
	Total         float64 `db:"total"`
	PaymentMethod string  `db:"payment_method"`
	AmountPaid    float64 `db:"amount_paid"`
	Change        float64 `db:"change_amount"`
	Status        string  `db:"status"`
	CreatedAt     *string `db:"created_at"`
}

func (r *Transaction) TableName() string  { return "transactions" }
func (r *Transaction) PrimaryKey() string { return r.ID }

type PurchaseOrder struct {
	ID           string  `db:"id"`
	StoreID      string  `db:"store_id"`
	SupplierID   *string `db:"supplier_id"`
	Items        JSON    `db:"items"`
	TotalAmount  float64 `db:"total_amount"`
	Status       string  `db:"status"`
	OrderDate    *string `db:"order_date"`
	ReceivedDate *string `db:"received_date"`
	Notes        *string `db:"notes"`
	CreatedAt    *string `db:"created_at"`
}

func (r *PurchaseOrder) TableName() string  { return "purchase_orders" }
func (r *PurchaseOrder) PrimaryKey() string { return r.ID }

type Expense struct {
	ID          string  `db:"id"`
	StoreID     string  `db:"store_id"`
	Category    string  `db:"category"`
	Description *string `db:"description"`
	Amount      float64 `db:"amount"`
	Date        *string `db:"date"`
	CreatedBy   *string `db:"created_by"`
	CreatedAt   *string `db:"created_at"`
}

func (r *Expense) TableName() string  { return "expenses" }
func (r *Expense) PrimaryKey() string { return r.ID }

// StockMovement.ReferenceID holds the raw transaction id, matching
// Transaction's untranslated key.
type StockMovement struct {
	ID          string  `db:"id"`
	StoreID     string  `db:"store_id"`
	ProductID   *string `db:"product_id"`
	Type        string  `db:"type"`
	Quantity    float64 `db:"quantity"`
	ReferenceID *string `db:"reference_id"`
	Note        *string `db:"note"`
	CreatedBy   *string `db:"created_by"`
	CreatedAt   *string `db:"created_at"`
}

func (r *StockMovement) TableName() string  { return "stock_movements" }
func (r *StockMovement) PrimaryKey() string { return r.ID }

type ShiftMovement struct {
	ID        string  `db:"id"`
	StoreID   string  `db:"store_id"`
	ShiftID   string  `db:"shift_id"`
	Type      string  `db:"type"`
	Amount    float64 `db:"amount"`
	Note      *string `db:"note"`
	CreatedBy *string `db:"created_by"`
	CreatedAt *string `db:"created_at"`
}

func (r *ShiftMovement) TableName() string  { return "shift_movements" }
func (r *ShiftMovement) PrimaryKey() string { return r.ID }

type PointHistory struct {
	ID            string  `db:"id"`
	StoreID       string  `db:"store_id"`
	CustomerID    string  `db:"customer_id"`
	TransactionID *string `db:"transaction_id"`
	Points        int64   `db:"points"`
	Type          string  `db:"type"`
	Description   *string `db:"description"`
	CreatedAt     *string `db:"created_at"`
}

func (r *PointHistory) TableName() string  { return "point_history" }
func (r *PointHistory) PrimaryKey() string { return r.ID }

type AuditLog struct {
	ID        string  `db:"id"`
	StoreID   string  `db:"store_id"`
	UserID    *string `db:"user_id"`
	Action    string  `db:"action"`
	Details   JSON    `db:"details"`
	CreatedAt *string `db:"created_at"`
}

func (r *AuditLog) TableName() string  { return "audit_logs" }
func (r *AuditLog) PrimaryKey() string { return r.ID }
