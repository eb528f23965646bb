package badtag

type Item struct {
	Name *string `nullable:"maybe"`
}
