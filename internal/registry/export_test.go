package registry

// CacheKeyPrefix exposes cacheKeyPrefix to the external registry_test package.
const CacheKeyPrefix = cacheKeyPrefix
