package store

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client holds the database client
type Client struct {
	DB *gorm.DB
}

// NewClient opens a Postgres connection and runs migrations
func NewClient(databaseURL string) (*Client, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to postgres: %w", err)
	}

	client := &Client{DB: db}
	if err := client.Migrate(); err != nil {
		return nil, err
	}

	log.Println("✅ Database connected and migrations applied")

	return client, nil
}

// NewClientWithDialector opens a connection against an arbitrary GORM
// dialector. Tests use this with in-memory SQLite.
func NewClientWithDialector(dialector gorm.Dialector) (*Client, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed opening connection: %w", err)
	}

	client := &Client{DB: db}
	if err := client.Migrate(); err != nil {
		return nil, err
	}

	return client, nil
}

// Migrate creates or updates the schema for all persisted shapes
func (c *Client) Migrate() error {
	err := c.DB.AutoMigrate(
		&User{},
		&Product{},
		&Order{},
		&Payout{},
		&FraudFlag{},
		&AffiliateLink{},
		&Tournament{},
	)
	if err != nil {
		return fmt.Errorf("failed creating schema resources: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
