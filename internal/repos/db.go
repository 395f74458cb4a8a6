package repos

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"shopvision/internal/config"
	applog "shopvision/internal/log"
)

//go:embed migrations
var migrations embed.FS

// OpenDB connects, migrates and (optionally) seeds the demo catalog.
func OpenDB(cfg config.DBConfig) (*sqlx.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// One connection keeps ":memory:" databases shared and serialises
		// writers instead of surfacing SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return nil, err
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := migrateUp(db.DB, driver); err != nil {
		return nil, err
	}
	if cfg.Seed {
		if err := seedIfEmpty(db); err != nil {
			return nil, err
		}
		if err := seedUsers(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func migrateUp(db *sql.DB, driver string) error {
	sub, err := fs.Sub(migrations, "migrations/"+driver)
	if err != nil {
		return err
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	var dbDriver database.Driver
	switch driver {
	case "postgres":
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		dbDriver, err = sqlite.WithInstance(db, &sqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}
	// m.Close would also close db, so only the source is released.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Logger().Info().Str("action", "seed").Msg("inserting demo products, clients and settings")

	now := time.Now().UTC().Truncate(time.Second)
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	products := []struct {
		id, name, desc, category string
		cost                     int64
		stock                    int
	}{
		{"beauty-001", "Plancha de Pelo Oryx", "Plancha de cerámica con control de temperatura", "BEAUTY", 15000, 2},
		{"home-001", "Freidora de Aire 3.5L", "Freidora sin aceite, 1500W", "HOME", 45000, 1},
		{"tecno-001", "Auricular M25", "Auriculares inalámbricos bluetooth", "TECNO", 8000, 3},
		{"home-002", "Cafetera Express", "Cafetera espresso 15 bar", "HOME", 75000, 8},
		{"tecno-002", "Smartwatch Pro", "Reloj inteligente con monitor cardíaco", "TECNO", 25000, 12},
	}
	for _, p := range products {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO products(id,name,description,cost_price,stock,category,image_url,active,created_at,updated_at)
			VALUES(?,?,?,?,?,?,'',?,?,?)`),
			p.id, p.name, p.desc, decimal.NewFromInt(p.cost), p.stock, p.category, true, now, now); err != nil {
			return err
		}
	}

	clients := []struct {
		name   string
		markup int64
	}{
		{"Distribuidora Norte", 20},
		{"Comercial Sur", 25},
		{"Mayorista Centro", 15},
	}
	for _, c := range clients {
		if _, err := tx.Exec(tx.Rebind(`INSERT INTO wholesale_clients(id,name,markup,created_at) VALUES(?,?,?,?)`),
			uuid.NewString(), c.name, decimal.NewFromInt(c.markup), now); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(tx.Rebind(`
		INSERT INTO settings(key,value,updated_at) VALUES(?,?,?)
		ON CONFLICT(key) DO NOTHING`), SettingGlobalMargin, "0", now); err != nil {
		return err
	}

	return tx.Commit()
}

// seedUsers ensures one seller and one customer exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Username, Email, Role, Hash string
	}
	mk := func(id, username, email, role, raw string) (u, error) {
		h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		if err != nil {
			return u{}, err
		}
		return u{ID: id, Username: username, Email: email, Role: role, Hash: string(h)}, nil
	}

	seller, err := mk("u-seller", "vendedora", "vendedora@shopvision.test", "SELLER", "Passw0rd!")
	if err != nil {
		return err
	}
	customer, err := mk("u-customer", "cliente", "cliente@shopvision.test", "CUSTOMER", "Passw0rd!")
	if err != nil {
		return err
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Truncate(time.Second)
	for _, x := range []u{seller, customer} {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO users(id,username,email,password_hash,role,created_at)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT DO NOTHING
		`), x.ID, x.Username, x.Email, x.Hash, x.Role, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}
