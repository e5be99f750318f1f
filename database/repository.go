package database

// Repository is everything the daemon persists.
//
//go:generate go tool mockgen -destination=mock.go -package=database . Repository
type Repository interface {
	InvoiceRepository
	PaymentRepository
	FlagRepository
}

var _ Repository = (*Database)(nil)
