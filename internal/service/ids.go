package service

import (
	"acumenus/startpage-api/internal/apperr"
	"strconv"
)

// parseID turns a path id into a primary key. Ids that can't be a key
// can't match a row either, so they are reported as not found.
func parseID(raw, notFound string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound(notFound)
	}

	return uint(id), nil
}
