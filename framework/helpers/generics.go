package helpers

// IfElse returns valueIfTrue when isTrue is set, valueIfFalse otherwise.
func IfElse[V any](isTrue bool, valueIfTrue, valueIfFalse V) V {
	if isTrue {
		return valueIfTrue
	}
	return valueIfFalse
}

// SliceContains reports whether the slice has an element equal to the value.
func SliceContains[V comparable](value V, slice []V) bool {
	for _, element := range slice {
		if element == value {
			return true
		}
	}
	return false
}
