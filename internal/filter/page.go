package filter

import (
	"net/url"
	"strconv"
)

// Page selects one page of a list. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// ParsePage reads the page parameter; anything that is not a positive integer means page 1.
func ParsePage(params url.Values, size int) Page {
	number, err := strconv.Atoi(params.Get("page"))
	if err != nil || number < 1 {
		number = 1
	}
	if size < 1 {
		size = 10
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() uint64 {
	return uint64(p.Number-1) * uint64(p.Size)
}

func (p Page) Limit() uint64 {
	return uint64(p.Size)
}

// TotalPages reports how many pages total items span; at least 1.
func (p Page) TotalPages(total int) int {
	if total <= 0 || p.Size <= 0 {
		return 1
	}
	return (total + p.Size - 1) / p.Size
}
