package nmea

// Opt holds a field that NMEA senders may leave empty.
type Opt[T any] struct {
	Value T
	Valid bool
}

func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Valid: true}
}

func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Or returns the value when present, def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.Valid {
		return o.Value
	}
	return def
}

// mapOpt converts a present value and keeps absence as is.
func mapOpt[T, U any](o Opt[T], f func(T) U) Opt[U] {
	if !o.Valid {
		return Opt[U]{}
	}
	return Some(f(o.Value))
}
