package service

import "github.com/prometheus/client_golang/prometheus"

var (
	attachmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_attachments_total",
			Help: "Referral edges created, by level",
		},
		[]string{"level"},
	)
	commissionsAwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_commissions_awarded_total",
			Help: "Commission payouts recorded, by level",
		},
		[]string{"level"},
	)
	commissionsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_commissions_skipped_total",
			Help: "Commission payouts skipped, by reason",
		},
		[]string{"reason"},
	)
	duplicateInvoicesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_duplicate_invoices_total",
			Help: "Invoice-paid events ignored because the invoice was already processed",
		},
	)
)

func init() {
	prometheus.MustRegister(attachmentsTotal)
	prometheus.MustRegister(commissionsAwardedTotal)
	prometheus.MustRegister(commissionsSkippedTotal)
	prometheus.MustRegister(duplicateInvoicesTotal)
}
