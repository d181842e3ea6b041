// Package catalog reads products and categories from the storefront API.
//
// Fetched product snapshots are kept in a small LRU so a detail view followed
// by an add-to-cart does not refetch. Prices are shopspring/decimal values;
// the backend sends them as JSON strings, older deployments as numbers, and
// both decode.
package catalog
