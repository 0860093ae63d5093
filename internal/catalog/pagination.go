package catalog

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	StorefrontPageSize int64 = 18
	AdminPageSize      int64 = 20
	MaxPageSize        int64 = 100
)

var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

// Page is a normalized 1-based page request.
type Page struct {
	Number int64
	Limit  int64
}

// ParsePage never fails. Only the leading integer of a value is read, so
// "2.5" is page 2. Missing, non-numeric or zero values fall back to the
// defaults and negative values are floored at 1. Limit is capped at
// MaxPageSize.
func ParsePage(pageStr, limitStr string, defaultLimit int64) Page {
	limit := parsePositive(limitStr, defaultLimit)
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Page{
		Number: parsePositive(pageStr, 1),
		Limit:  limit,
	}
}

func parsePositive(raw string, fallback int64) int64 {
	digits := leadingInt.FindString(strings.TrimSpace(raw))
	if digits == "" {
		return fallback
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(digits, "-") {
			return 1
		}
		return math.MaxInt64
	}
	if err != nil || n == 0 {
		return fallback
	}
	if n < 1 {
		return 1
	}
	return n
}

// Skip saturates at math.MaxInt64 instead of wrapping for huge pages.
func (p Page) Skip() int64 {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt64/p.Limit {
		return math.MaxInt64
	}
	return (p.Number - 1) * p.Limit
}

func TotalPages(total, limit int64) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

type StorefrontPagination struct {
	CurrentPage     int64 `json:"currentPage"`
	TotalPages      int64 `json:"totalPages"`
	TotalProducts   int64 `json:"totalProducts"`
	ProductsPerPage int64 `json:"productsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPrevPage     bool  `json:"hasPrevPage"`
}

func (p Page) Storefront(total int64) StorefrontPagination {
	return StorefrontPagination{
		CurrentPage:     p.Number,
		TotalPages:      TotalPages(total, p.Limit),
		TotalProducts:   total,
		ProductsPerPage: p.Limit,
		HasNextPage:     p.Number < TotalPages(total, p.Limit),
		HasPrevPage:     p.Number > 1,
	}
}

type AdminPagination struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	PerPage     int64 `json:"perPage"`
}

func (p Page) Admin(total int64) AdminPagination {
	return AdminPagination{
		CurrentPage: p.Number,
		TotalPages:  TotalPages(total, p.Limit),
		TotalItems:  total,
		PerPage:     p.Limit,
	}
}
