package normalize

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// CachedStreet memoizes the results of a StreetNormalizer. Extracts
// repeat the same street names on many elements.
type CachedStreet struct {
	normalizer StreetNormalizer
	cache      *lru.Cache[string, StreetResult]
}

func NewCachedStreet(n StreetNormalizer, size int) (*CachedStreet, error) {
	c, err := lru.New[string, StreetResult](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating street cache")
	}
	return &CachedStreet{normalizer: n, cache: c}, nil
}

func (c *CachedStreet) Normalize(name string) StreetResult {
	if r, ok := c.cache.Get(name); ok {
		return r
	}
	r := c.normalizer.Normalize(name)
	c.cache.Add(name, r)
	return r
}

type CachedPostcode struct {
	normalizer PostcodeNormalizer
	cache      *lru.Cache[string, PostcodeResult]
}

func NewCachedPostcode(n PostcodeNormalizer, size int) (*CachedPostcode, error) {
	c, err := lru.New[string, PostcodeResult](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating postcode cache")
	}
	return &CachedPostcode{normalizer: n, cache: c}, nil
}

func (c *CachedPostcode) Normalize(code string) PostcodeResult {
	if r, ok := c.cache.Get(code); ok {
		return r
	}
	r := c.normalizer.Normalize(code)
	c.cache.Add(code, r)
	return r
}
