package repository

import (
	"gorm.io/gorm"
)

// Paginate applies an offset/limit window to a query.
func Paginate(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}

// SearchAny matches records where any of the given columns contains the
// search term as a case-insensitive substring. An empty term leaves the
// query unfiltered, so the scope composes with other conditions.
func SearchAny(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + term + "%"
		cond := db.Session(&gorm.Session{NewDB: true})
		for i, column := range columns {
			if i == 0 {
				cond = cond.Where(column+" LIKE ?", pattern)
			} else {
				cond = cond.Or(column+" LIKE ?", pattern)
			}
		}
		return db.Where(cond)
	}
}
