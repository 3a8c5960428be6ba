package repository

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/kirillm/thesis-desk/internal/domain"
)

// numericColumn scans a NUMERIC value the driver hands back as text. The
// decimal parse keeps the boundary strict: a value that is not a clean
// number is a storage error, not a zero.
type numericColumn struct {
	value decimal.Decimal
	valid bool
}

func (n *numericColumn) Scan(src interface{}) error {
	var ns sql.NullString
	if err := ns.Scan(src); err != nil {
		return err
	}

	if !ns.Valid {
		n.valid = false
		n.value = decimal.Zero
		return nil
	}

	value, err := decimal.NewFromString(ns.String)
	if err != nil {
		return domain.WrapError(domain.KindStorage, "numeric column holds a non-numeric value", err)
	}

	n.value = value
	n.valid = true
	return nil
}

// Float returns the coerced value; NULL coerces to zero.
func (n *numericColumn) Float() float64 {
	if !n.valid {
		return 0
	}
	return n.value.InexactFloat64()
}
