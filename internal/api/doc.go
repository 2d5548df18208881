// Package api hosts the read-only HTTP surface over the product catalog.
// Notable routes:
//   - GET / for a static info message.
//   - GET /all_products and /products/{product_name} for catalog reads.
//   - GET /products/{product_name}/field/{product_field} for single fields.
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
package api
