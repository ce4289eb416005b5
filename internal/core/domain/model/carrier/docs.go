// Package carrier keeps per-carrier delivery statistics: completed deliveries
// and the running average of vendor ratings.
package carrier
