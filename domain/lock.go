package domain

// Lock is a held per-ref lease. Release never fails the caller and may be
// called more than once; only the first call has an effect.
type Lock interface {
	Release()
}
