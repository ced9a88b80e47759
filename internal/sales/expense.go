package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/schema"
	"gorm.io/gorm"
)

var expenseSchema = schema.Entity{
	Name: "expense",
	Fields: []schema.Field{
		{Name: "category", Kind: schema.String, Required: true, MaxLen: 50},
		{Name: "amount", Kind: schema.Decimal, Required: true, NonNeg: true, Places: 2},
		{Name: "date", Kind: schema.Time, Required: true},
		{Name: "receipt_number", Kind: schema.String, MaxLen: 50},
		{Name: "paid_to", Kind: schema.String, MaxLen: 100},
		{Name: "payment_method", Kind: schema.String, MaxLen: 20},
		{Name: "farm_id", Kind: schema.Ref},
	},
}

// ExpenseOpts holds parameters for recording an expense.
type ExpenseOpts struct {
	FarmID        *uint
	Category      string
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
	ReceiptNumber string
	PaidTo        string
	PaymentMethod string
	RecordedByID  *uint
}

// ExpenseFilters narrows ListExpenses. From is inclusive, To exclusive.
type ExpenseFilters struct {
	FarmID   *uint
	Category string
	From, To *time.Time
}

// RecordExpense stores an expense.
func RecordExpense(db *gorm.DB, opts ExpenseOpts) (*models.Expense, error) {
	if err := expenseSchema.Validate(schema.Values{
		"category":       opts.Category,
		"amount":         opts.Amount,
		"date":           opts.Date,
		"receipt_number": opts.ReceiptNumber,
		"paid_to":        opts.PaidTo,
		"payment_method": opts.PaymentMethod,
		"farm_id":        opts.FarmID,
	}); err != nil {
		return nil, fmt.Errorf("sales: record expense: %w", err)
	}
	if opts.FarmID != nil {
		if err := requireFarm(db, *opts.FarmID); err != nil {
			return nil, fmt.Errorf("sales: record expense: %w", err)
		}
	}
	e := models.Expense{
		FarmID:        opts.FarmID,
		Category:      strings.TrimSpace(opts.Category),
		Amount:        opts.Amount,
		Description:   opts.Description,
		Date:          opts.Date,
		ReceiptNumber: opts.ReceiptNumber,
		PaidTo:        opts.PaidTo,
		PaymentMethod: opts.PaymentMethod,
		RecordedByID:  opts.RecordedByID,
	}
	if err := db.Create(&e).Error; err != nil {
		return nil, fmt.Errorf("sales: record expense: %w", apperr.Persistence("expense create", err))
	}
	return &e, nil
}

func ListExpenses(db *gorm.DB, filters ExpenseFilters) ([]models.Expense, error) {
	q := db.Model(&models.Expense{})
	if filters.FarmID != nil {
		q = q.Where("farm_id = ?", *filters.FarmID)
	}
	if filters.Category != "" {
		q = q.Where("category = ?", filters.Category)
	}
	if filters.From != nil {
		q = q.Where("date >= ?", *filters.From)
	}
	if filters.To != nil {
		q = q.Where("date < ?", *filters.To)
	}
	var out []models.Expense
	if err := q.Order("date ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("sales: list expenses: %w", apperr.Persistence("expense list", err))
	}
	return out, nil
}

// TotalExpenses sums the amounts of the expenses matching filters.
func TotalExpenses(db *gorm.DB, filters ExpenseFilters) (decimal.Decimal, error) {
	list, err := ListExpenses(db, filters)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range list {
		total = total.Add(e.Amount)
	}
	return total, nil
}
