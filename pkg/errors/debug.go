package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// constraintRecords names the shop record each storage constraint protects.
var constraintRecords = map[string]string{
	"ux_orders_number":                         "order_number",
	"ux_basket_lines_basket_product_stock":     "basket_line",
	"ux_users_email":                           "user_email",
	"ux_product_classes_slug":                  "product_class",
	"ux_product_attributes_class_code":         "product_attribute",
	"ux_product_attribute_values_attr_product": "product_attribute_value",
	"orders.number":                            "order_number",
	"basket_lines.basket_id":                   "basket_line",
	"users.email":                              "user_email",
	"product_classes.slug":                     "product_class",
	"product_attributes.product_class_id":      "product_attribute",
	"product_attribute_values.attribute_id":    "product_attribute_value",
	"baskets_status_check":                     "basket_status",
	"basket_lines_quantity_check":              "basket_line_quantity",
}

// checkRecords maps the leading column of a sqlite CHECK expression.
var checkRecords = map[string]string{
	"status":   "basket_status",
	"quantity": "basket_line_quantity",
}

// contextKeys are the detail keys copied into a dump so rejected basket and
// checkout requests can be traced without the response body.
var contextKeys = []string{"basket_id", "line_id", "order_id", "order_number", "stock_record_id", "product_id"}

// ErrorDump flattens an error chain for request logs.
type ErrorDump struct {
	TopMessage string         `json:"top_message"`
	Code       Code           `json:"code,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
	Chain      []string       `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	// Record is the shop record behind the violated constraint, when known.
	Record string `json:"record,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error(), Reason: Reason(err)}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Context = detailContext(te.Details())
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGDetail = pgxErr.Detail
		d.Record = constraintRecords[d.PGConstraint]
	case errors.As(err, &pqErr):
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGDetail = pqErr.Detail
		d.Record = constraintRecords[d.PGConstraint]
	default:
		d.Record = sqliteRecord(d.TopMessage)
	}
	return d
}

func detailContext(details any) map[string]any {
	fields, ok := details.(map[string]any)
	if !ok {
		return nil
	}
	var out map[string]any
	for _, key := range contextKeys {
		if v, ok := fields[key]; ok {
			if out == nil {
				out = make(map[string]any, len(contextKeys))
			}
			out[key] = v
		}
	}
	return out
}

// sqliteRecord reads "UNIQUE constraint failed: orders.number" and
// "CHECK constraint failed: quantity >= 0" style messages.
func sqliteRecord(msg string) string {
	if _, rest, ok := strings.Cut(msg, "UNIQUE constraint failed: "); ok {
		column, _, _ := strings.Cut(rest, ",")
		return constraintRecords[strings.TrimSpace(column)]
	}
	if _, rest, ok := strings.Cut(msg, "CHECK constraint failed: "); ok {
		fields := strings.Fields(rest)
		if len(fields) > 0 {
			return checkRecords[fields[0]]
		}
	}
	return ""
}
