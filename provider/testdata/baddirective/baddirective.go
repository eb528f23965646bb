package baddirective

//nullinfo:optional
type Item struct {
	Name *string
}
