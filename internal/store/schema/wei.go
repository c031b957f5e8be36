package schema

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strconv"

	"gorm.io/gorm"
	gormschema "gorm.io/gorm/schema"
)

// Wei is a non-negative integer amount of the native currency's smallest unit.
// It is kept as a decimal string in Go and as numeric(78,0) in PostgreSQL.
type Wei string

// NewWei converts a big integer into a Wei amount; nil is zero
func NewWei(v *big.Int) Wei {
	if v == nil {
		return "0"
	}
	return Wei(v.String())
}

// Int returns the amount as a big integer, zero when unset or malformed
func (w Wei) Int() *big.Int {
	v, ok := new(big.Int).SetString(string(w), 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

func (w Wei) String() string {
	if w == "" {
		return "0"
	}
	return string(w)
}

// GormDBDataType picks an exact column type per dialect
func (Wei) GormDBDataType(db *gorm.DB, _ *gormschema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "numeric(78,0)"
	default:
		return "text"
	}
}

// Value implements driver.Valuer
func (w Wei) Value() (driver.Value, error) {
	return w.String(), nil
}

// Scan implements sql.Scanner
func (w *Wei) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*w = "0"
	case string:
		*w = Wei(v)
	case []byte:
		*w = Wei(string(v))
	case int64:
		*w = Wei(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("unsupported wei value type %T", value)
	}
	return nil
}
