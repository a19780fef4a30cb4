// Package analytics derives market, asset, portfolio and holder views from explorer rows.
//
// Every function is pure over its inputs except EnrichHolders, which fans balance lookups
// out over the supplied worker pool. The PostgreSQL store pushes the same aggregations into
// SQL; the in-memory store computes them here, so both paths honour one set of rules.
package analytics
