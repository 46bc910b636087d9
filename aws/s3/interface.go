package s3

// Lister lists the object keys found under a given key prefix.
type Lister interface {
	List(key string) (keys []string, err error)
}
