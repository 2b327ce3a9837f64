// File: models/reconcile.go
package models

// ReconcileReport lists tickets whose state was corrected.
type ReconcileReport struct {
	Promoted []string `json:"promoted"`
	Released []string `json:"released"`
}
