// Package models maps the ledger tables for GORM. Each model converts to and
// from its domain type with ToDomain and FromDomain; AllModels lists every
// table for sqlite AutoMigrate in tests, while PostgreSQL gets its schema
// from migrations/.
package models
