// Package models contains GORM persistence models for the rental tables.
// Domain entities carry no ORM tags; each model maps to and from its domain
// type through ToDomain and FromDomain.
//
//   - base.go: shared columns (id, timestamps, version, tenant)
//   - asset.go: assets and asset_status_history
//   - contract.go: contracts and contract_items
//   - invoice.go: invoices, invoice_items and invoice_payments
//   - measurement.go: measurements and measurement_items
package models
