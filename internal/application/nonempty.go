package application

// requireNonEmpty turns an empty listing into the given NotFound error.
func requireNonEmpty[T any](items []T, notFound error) ([]T, error) {
	if len(items) == 0 {
		return nil, notFound
	}
	return items, nil
}
