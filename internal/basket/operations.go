package basket

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

// MergePolicy decides the quantity of a line present in both merged baskets.
type MergePolicy int

const (
	// MergeSum adds both quantities.
	MergeSum MergePolicy = iota
	// MergeKeepMax keeps the larger quantity.
	MergeKeepMax
)

func (p MergePolicy) String() string {
	switch p {
	case MergeSum:
		return "sum"
	case MergeKeepMax:
		return "keep_max"
	default:
		return fmt.Sprintf("MergePolicy(%d)", int(p))
	}
}

func (p MergePolicy) combine(master, slave int) int {
	if p == MergeKeepMax {
		return max(master, slave)
	}
	return master + slave
}

// AddProduct adds quantity of (productID, stockRecordID) to basket, persisting
// a transient basket first. An existing line takes the delta clamped at zero;
// a new line takes quantity as given.
func AddProduct(ctx context.Context, repo *Repository, basket *models.Basket, productID, stockRecordID uint64, quantity int) (*models.BasketLine, bool, error) {
	if !basket.CanBeEdited() {
		return nil, false, ErrNotEditable()
	}
	if !basket.IsPersisted() {
		if err := repo.Create(ctx, basket); err != nil {
			return nil, false, translateWrite(err, "create basket")
		}
	}

	line, err := repo.FindLine(ctx, basket.ID, productID, &stockRecordID)
	if err != nil {
		return nil, false, translateRead(err, "load basket line")
	}
	if line == nil {
		line = &models.BasketLine{
			BasketID:      basket.ID,
			ProductID:     productID,
			StockRecordID: &stockRecordID,
			Quantity:      quantity,
		}
		if err := repo.CreateLine(ctx, line); err != nil {
			return nil, false, translateWrite(err, "create basket line")
		}
		return line, true, nil
	}

	line.Quantity = max(0, line.Quantity+quantity)
	if err := repo.SaveLine(ctx, line); err != nil {
		return nil, false, translateWrite(err, "update basket line")
	}
	return line, false, nil
}

// NumItems sums line quantities.
func NumItems(lines []models.BasketLine) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

// LinePrice is quantity times the current stock record price. A line whose stock
// record is gone has no price.
func LinePrice(line models.BasketLine) (decimal.Decimal, bool) {
	if line.StockRecord == nil {
		return decimal.Zero, false
	}
	return line.StockRecord.Price.Mul(decimal.NewFromInt(int64(line.Quantity))), true
}

// TotalPrice sums priced lines, rounded to cents. Lines with a deleted stock record are skipped.
func TotalPrice(lines []models.BasketLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if price, ok := LinePrice(line); ok {
			total = total.Add(price)
		}
	}
	return total.Round(2)
}

// Freeze moves basket out of the editable states for good.
func Freeze(ctx context.Context, repo *Repository, basket *models.Basket) error {
	if !basket.IsPersisted() {
		return fmt.Errorf("cannot freeze an unsaved basket")
	}
	if err := repo.UpdateStatus(ctx, basket.ID, enums.BasketStatusFrozen); err != nil {
		return translateWrite(err, "freeze basket")
	}
	basket.Status = enums.BasketStatusFrozen
	return nil
}

// Merge moves every line of slave into master. Lines present in both are
// reconciled with policy and the slave copy is deleted; the rest are re-parented.
// The emptied slave is saved as is and stays Open.
func Merge(ctx context.Context, repo *Repository, master, slave *models.Basket, policy MergePolicy) error {
	if !master.IsPersisted() || !slave.IsPersisted() || master.ID == slave.ID {
		return nil
	}
	if !master.CanBeEdited() {
		return ErrNotEditable()
	}

	lines, err := repo.Lines(ctx, slave.ID)
	if err != nil {
		return translateRead(err, "load slave lines")
	}
	for i := range lines {
		line := lines[i]
		line.StockRecord = nil

		existing, err := repo.FindLine(ctx, master.ID, line.ProductID, line.StockRecordID)
		if err != nil {
			return translateRead(err, "load master line")
		}
		if existing != nil {
			existing.Quantity = policy.combine(existing.Quantity, line.Quantity)
			if err := repo.SaveLine(ctx, existing); err != nil {
				return translateWrite(err, "merge basket line")
			}
			if err := repo.DeleteLine(ctx, line.ID); err != nil {
				return translateWrite(err, "delete merged line")
			}
			continue
		}

		line.BasketID = master.ID
		if err := repo.SaveLine(ctx, &line); err != nil {
			return translateWrite(err, "move basket line")
		}
	}

	if err := repo.Touch(ctx, slave); err != nil {
		return translateWrite(err, "save merged basket")
	}
	return nil
}
