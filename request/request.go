package request

import (
	"fmt"
	"gorm.io/gorm"
)

type PaginationConditions struct {
	Limit         *int    `json:"limit"`         // Pagination limit
	Offset        *int    `json:"offset"`        // Pagination offset (optional when using ID-based)
	SortBy        *string `json:"sortBy"`        // Field to sort by
	Order         *string `json:"order"`         // ASC or DESC
	GreaterThanID *uint   `json:"greaterThanID"` // For ID-based pagination
	LessThanID    *uint   `json:"lessThanID"`    // For reverse ID-based pagination
}

func ApplyPaginationConditions(query *gorm.DB, conditions PaginationConditions) *gorm.DB {
	if conditions.Offset != nil && *conditions.Offset > 0 {
		query = query.Offset(*conditions.Offset)
	}

	// ID-based pagination
	if conditions.GreaterThanID != nil {
		query = query.Where("id > ?", *conditions.GreaterThanID)
	}
	if conditions.LessThanID != nil {
		query = query.Where("id < ?", *conditions.LessThanID)
	}

	sortBy := "id"
	if conditions.SortBy != nil {
		sortBy = *conditions.SortBy
	}
	order := "DESC"
	if conditions.Order != nil {
		order = *conditions.Order
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, order))

	if conditions.Limit != nil && *conditions.Limit > 0 {
		query = query.Limit(*conditions.Limit)
	}

	return query
}
