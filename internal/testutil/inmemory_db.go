// Package testutil provides in-memory repositories and fakes for service tests.
package testutil

import (
	"sync"

	"killbill-service/internal/domain/admin"
	"killbill-service/internal/domain/client"
	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/notification"
	"killbill-service/internal/domain/payment"
	"killbill-service/internal/domain/settings"
	"killbill-service/internal/domain/subscription"
)

// InMemoryDB backs every in-memory store so reads can join across tables
// the way the SQL repositories do.
type InMemoryDB struct {
	mu  sync.RWMutex
	seq map[string]int64

	clients       map[int64]client.Client
	plans         map[int64]subscription.SubscriptionPlan
	subscriptions map[int64]subscription.Subscription
	invoices      map[int64]invoice.Invoice
	payments      map[int64]payment.Payment
	emailLogs     []notification.EmailLog
	site          *settings.SiteConfiguration
	invoiceConfig *settings.InvoiceConfiguration
	admins        map[int64]admin.Admin

	// Err, when set, is returned by every store call.
	Err error
}

func NewInMemoryDB() *InMemoryDB {
	return &InMemoryDB{
		seq:           make(map[string]int64),
		clients:       make(map[int64]client.Client),
		plans:         make(map[int64]subscription.SubscriptionPlan),
		subscriptions: make(map[int64]subscription.Subscription),
		invoices:      make(map[int64]invoice.Invoice),
		payments:      make(map[int64]payment.Payment),
		admins:        make(map[int64]admin.Admin),
	}
}

func (db *InMemoryDB) nextID(table string) int64 {
	db.seq[table]++
	return db.seq[table]
}

// Stores bundles one of each repository over a shared InMemoryDB.
type Stores struct {
	DB            *InMemoryDB
	Clients       *InMemoryClientStore
	Plans         *InMemoryPlanStore
	Subscriptions *InMemorySubscriptionStore
	Invoices      *InMemoryInvoiceStore
	Payments      *InMemoryPaymentStore
	EmailLogs     *InMemoryEmailLogStore
	Settings      *InMemorySettingsStore
	Admins        *InMemoryAdminStore
}

func NewStores() *Stores {
	db := NewInMemoryDB()
	return &Stores{
		DB:            db,
		Clients:       &InMemoryClientStore{db: db},
		Plans:         &InMemoryPlanStore{db: db},
		Subscriptions: &InMemorySubscriptionStore{db: db},
		Invoices:      &InMemoryInvoiceStore{db: db},
		Payments:      &InMemoryPaymentStore{db: db},
		EmailLogs:     &InMemoryEmailLogStore{db: db},
		Settings:      &InMemorySettingsStore{db: db},
		Admins:        &InMemoryAdminStore{db: db},
	}
}
