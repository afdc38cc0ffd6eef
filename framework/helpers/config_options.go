package helpers

// ConfigOption represents one configuration change in the vararg options pattern.
type ConfigOption[T any] interface {
	// Configure applies the change the option represents to the target.
	Configure(*T) error
}

// ApplyOptions applies each option to the target in order, stopping at the
// first error.
func ApplyOptions[T any, U ConfigOption[T]](target *T, options ...U) error {
	// The U type parameter duck-types the interface, so callers can pass a
	// slice of their own concrete option type.
	for _, o := range options {
		if err := o.Configure(target); err != nil {
			return err
		}
	}
	return nil
}
