// Package dbtest opens throwaway in-memory sqlite databases carrying the same
// tables as the Postgres migrations.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  username TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  is_staff INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE product_classes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  track_stock INTEGER NOT NULL DEFAULT 1
);`,
	`CREATE TABLE product_categories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL
);`,
	`CREATE TABLE products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  structure TEXT NOT NULL DEFAULT 'standalone',
  title TEXT NOT NULL,
  article TEXT NOT NULL DEFAULT '',
  product_class_id INTEGER REFERENCES product_classes(id) ON DELETE SET NULL,
  category_id INTEGER REFERENCES product_categories(id) ON DELETE SET NULL,
  parent_id INTEGER REFERENCES products(id) ON DELETE CASCADE,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE product_attributes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_class_id INTEGER NOT NULL REFERENCES product_classes(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  code TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'text',
  required INTEGER NOT NULL DEFAULT 0,
  UNIQUE (product_class_id, code)
);`,
	`CREATE TABLE product_attribute_values (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  attribute_id INTEGER NOT NULL REFERENCES product_attributes(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  value_text TEXT,
  value_integer INTEGER,
  UNIQUE (attribute_id, product_id)
);`,
	`CREATE TABLE stock_records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  partner_sku TEXT NOT NULL,
  price TEXT NOT NULL,
  num_in_stock INTEGER NOT NULL DEFAULT 0,
  low_stock_threshold INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE baskets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  owner_id TEXT,
  status TEXT NOT NULL DEFAULT 'Open'
    CHECK (status IN ('Open', 'Merged', 'Saved', 'Frozen', 'Submitted')),
  date_submitted DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE basket_lines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  basket_id INTEGER NOT NULL REFERENCES baskets(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL,
  stock_record_id INTEGER,
  quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0),
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (basket_id, product_id, stock_record_id)
);`,
	`CREATE TABLE shipping_addresses (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  line1 TEXT NOT NULL,
  line2 TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT ''
);`,
	`CREATE TABLE orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  number TEXT NOT NULL,
  total TEXT NOT NULL,
  guest_email TEXT NOT NULL DEFAULT '',
  basket_id INTEGER,
  user_id TEXT,
  shipping_address_id INTEGER,
  date_placed DATETIME,
  CONSTRAINT ux_orders_number UNIQUE (number)
);`,
	`CREATE TABLE order_lines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id INTEGER,
  stock_record_id INTEGER,
  quantity INTEGER NOT NULL DEFAULT 1
);`,
	`CREATE TABLE order_line_attributes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  line_id INTEGER NOT NULL REFERENCES order_lines(id) ON DELETE CASCADE,
  type TEXT NOT NULL,
  value TEXT NOT NULL
);`,
	`CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload BLOB NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
}

// Open returns a fresh, isolated database with every table created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:homeshop_%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
